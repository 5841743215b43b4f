package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjannette/trahn-swap/internal/catalog"
	"github.com/kjannette/trahn-swap/internal/pricestore"
	swaprate "github.com/kjannette/trahn-swap/internal/rate"
	"github.com/kjannette/trahn-swap/internal/swap"
	"github.com/kjannette/trahn-swap/internal/wallet"
)

const maxBodyBytes = 1 << 20

// Refresher triggers an out-of-schedule price reload.
type Refresher interface {
	RefreshNow(ctx context.Context) error
}

// Deps are the components the handlers drive.
type Deps struct {
	Store     *pricestore.Store
	Refresher Refresher
	Session   *swap.Session
	Pipeline  *wallet.Pipeline
	Memo      *swaprate.Memo
	Searcher  *catalog.Searcher
	// SwapContext bounds submitted swaps; it must outlive requests.
	SwapContext  context.Context
	IconTemplate string
}

type Options struct {
	Port           int
	APIKey         string
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	deps       Deps
	logger     *zap.Logger
	httpServer *http.Server
	apiKey     string
	limiter    *rate.Limiter
}

func NewServer(deps Deps, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.SwapContext == nil {
		deps.SwapContext = context.Background()
	}
	if deps.Searcher == nil {
		deps.Searcher = catalog.NewSearcher(time.Minute)
	}
	if deps.IconTemplate == "" {
		deps.IconTemplate = catalog.DefaultIconTemplate
	}

	s := &Server{
		deps:   deps,
		logger: logger,
		apiKey: opts.APIKey,
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.Handler(opts.CORSOrigin),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped route tree.
func (s *Server) Handler(corsOrigin string) http.Handler {
	mux := http.NewServeMux()

	// Token and price routes
	mux.HandleFunc("GET /v1/tokens", s.handleTokens)
	mux.HandleFunc("GET /v1/quote", s.handleQuote)
	mux.HandleFunc("GET /v1/prices/status", s.handlePriceStatus)
	mux.HandleFunc("POST /v1/prices/refresh", s.handlePriceRefresh)

	// Swap routes
	mux.HandleFunc("POST /v1/swap/validate", s.handleValidate)
	mux.HandleFunc("GET /v1/session", s.handleSessionGet)
	mux.HandleFunc("POST /v1/session", s.handleSessionEvent)
	mux.HandleFunc("POST /v1/session/submit", s.handleSessionSubmit)

	// Wallet routes
	mux.HandleFunc("POST /v1/wallet/balances", s.handleBalances)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.rateLimitMiddleware(s.authMiddleware(corsMiddleware(mux, corsOrigin)))
}

func (s *Server) Start() error {
	s.logger.Info("REST API server started",
		zap.String("addr", "http://localhost"+s.httpServer.Addr),
		zap.Bool("auth", s.apiKey != ""),
		zap.Bool("rateLimit", s.limiter != nil),
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- request helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, swap.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, swap.ErrNoTokenSelected),
		errors.Is(err, swap.ErrNoAmount),
		errors.Is(err, swap.ErrInsufficientBalance),
		errors.Is(err, swaprate.ErrMissingQuote),
		errors.Is(err, swaprate.ErrDivisionByZero),
		errors.Is(err, swaprate.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError reports err with its user-facing message.
func writeDomainError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{
		"error":  swap.Message(err),
		"detail": err.Error(),
	})
}
