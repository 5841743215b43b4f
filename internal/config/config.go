package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	// API
	APIPort         int     `env:"API_PORT" envDefault:"3001"`
	APIKey          string  `env:"API_KEY"`
	CORSAllowOrigin string  `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`
	RateLimitRPS    float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst  int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Price feed
	PriceFeedURL         string        `env:"PRICE_FEED_URL" envDefault:"https://interview.switcheo.com/prices.json"`
	PriceFeedMaxAttempts int           `env:"PRICE_FEED_MAX_ATTEMPTS" envDefault:"1"`
	PriceFeedTimeout     time.Duration `env:"PRICE_FEED_TIMEOUT" envDefault:"10s"`
	PriceRefreshInterval time.Duration `env:"PRICE_REFRESH_INTERVAL" envDefault:"0s"`

	// Presentation
	IconURLTemplate   string        `env:"ICON_URL_TEMPLATE" envDefault:"https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens/%s.svg"`
	PriorityTableFile string        `env:"PRIORITY_TABLE_FILE"`
	SearchDebounce    time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"500ms"`

	// Paper swaps
	PaperSwapLatency time.Duration      `env:"PAPER_SWAP_LATENCY" envDefault:"3s"`
	PaperBalances    map[string]float64 `env:"PAPER_BALANCES" envDefault:"ETH:10"`
	MaxSwapSizeUSD   float64            `env:"MAX_SWAP_SIZE_USD" envDefault:"0"`
	MaxDailySwaps    int                `env:"MAX_DAILY_SWAPS" envDefault:"0"`

	// Notifications
	WebhookURL string `env:"WEBHOOK_URL"`
	BotName    string `env:"BOT_NAME" envDefault:"TrahnSwap"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Sprintf("API_PORT %d out of range", c.APIPort))
	}
	if c.PriceFeedURL == "" {
		errs = append(errs, "PRICE_FEED_URL is required")
	}
	if c.PriceFeedMaxAttempts < 1 {
		errs = append(errs, "PRICE_FEED_MAX_ATTEMPTS must be at least 1")
	}
	if c.PriceRefreshInterval < 0 {
		errs = append(errs, "PRICE_REFRESH_INTERVAL must not be negative")
	}
	if strings.Count(c.IconURLTemplate, "%s") != 1 {
		errs = append(errs, "ICON_URL_TEMPLATE must contain exactly one %s")
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, "SEARCH_DEBOUNCE must not be negative")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	for sym, amt := range c.PaperBalances {
		if amt < 0 {
			errs = append(errs, fmt.Sprintf("PAPER_BALANCES: %s has negative balance", sym))
		}
	}
	if c.MaxSwapSizeUSD < 0 || c.MaxDailySwaps < 0 {
		errs = append(errs, "MAX_SWAP_SIZE_USD and MAX_DAILY_SWAPS must not be negative")
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Warnings lists settings that are legal but probably unintended.
func (c *Config) Warnings() []string {
	var w []string
	if c.APIKey == "" {
		w = append(w, "API_KEY not set: REST API has no authentication")
	}
	if c.RateLimitRPS == 0 {
		w = append(w, "RATE_LIMIT_RPS is 0: API rate limiting disabled")
	}
	if len(c.PaperBalances) == 0 {
		w = append(w, "PAPER_BALANCES empty: every swap will fail for insufficient balance")
	}
	return w
}

func (c *Config) Print(logger *zap.Logger) {
	logger.Info("configuration",
		zap.Int("apiPort", c.APIPort),
		zap.Bool("auth", c.APIKey != ""),
		zap.String("corsAllowOrigin", c.CORSAllowOrigin),
		zap.String("priceFeedURL", c.PriceFeedURL),
		zap.Int("priceFeedMaxAttempts", c.PriceFeedMaxAttempts),
		zap.Duration("priceRefreshInterval", c.PriceRefreshInterval),
		zap.String("priorityTable", boolLabel(c.PriorityTableFile != "", c.PriorityTableFile, "built-in")),
		zap.Duration("searchDebounce", c.SearchDebounce),
		zap.Duration("paperSwapLatency", c.PaperSwapLatency),
		zap.Any("paperBalances", c.PaperBalances),
		zap.Float64("maxSwapSizeUSD", c.MaxSwapSizeUSD),
		zap.Int("maxDailySwaps", c.MaxDailySwaps),
		zap.Bool("webhook", c.WebhookURL != ""),
	)
	for _, w := range c.Warnings() {
		logger.Warn(w)
	}
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
