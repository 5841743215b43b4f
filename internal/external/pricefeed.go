package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kjannette/trahn-swap/internal/httputil"
	"github.com/kjannette/trahn-swap/internal/models"
)

const DefaultPriceFeedURL = "https://interview.switcheo.com/prices.json"

type PriceFeedClient struct {
	url        string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

type PriceFeedOptions struct {
	URL         string
	Timeout     time.Duration
	MaxAttempts int
	// Logger receives retry warnings. Nil disables them.
	Logger *zap.Logger
}

// NewPriceFeedClient builds a feed client. MaxAttempts defaults to 1: a
// failed fetch is reported, not retried.
func NewPriceFeedClient(opts PriceFeedOptions) *PriceFeedClient {
	if opts.URL == "" {
		opts.URL = DefaultPriceFeedURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &PriceFeedClient{
		url:        opts.URL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		retry: httputil.RetryConfig{
			MaxAttempts: opts.MaxAttempts,
			BaseDelay:   1 * time.Second,
			MaxDelay:    10 * time.Second,
			Logger:      opts.Logger,
		},
	}
}

type feedRecord struct {
	Currency string  `json:"currency"`
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
}

// FetchPrices returns the raw feed in its original order, duplicates
// included. Deduplication is the catalog's job.
func (c *PriceFeedClient) FetchPrices(ctx context.Context) ([]models.PriceRecord, error) {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "price feed fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}

	var raw []feedRecord
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode price feed")
	}

	out := make([]models.PriceRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.PriceRecord{
			Symbol: r.Currency,
			AsOf:   parseFeedTime(r.Date),
			Price:  r.Price,
		})
	}
	return out, nil
}

// parseFeedTime accepts RFC 3339 timestamps with or without fractional
// seconds. Unparseable dates become the zero time.
func parseFeedTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}
