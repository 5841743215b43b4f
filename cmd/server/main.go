package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kjannette/trahn-swap/internal/api"
	"github.com/kjannette/trahn-swap/internal/config"
	"github.com/kjannette/trahn-swap/internal/external"
	"github.com/kjannette/trahn-swap/internal/logging"
	"github.com/kjannette/trahn-swap/internal/notifications"
	"github.com/kjannette/trahn-swap/internal/service"
)

const banner = `
╔══════════════════════════════════════╗
║       TRAHN Token Swap v0.1          ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg.Print(logger)

	feed := external.NewPriceFeedClient(external.PriceFeedOptions{
		URL:         cfg.PriceFeedURL,
		Timeout:     cfg.PriceFeedTimeout,
		MaxAttempts: cfg.PriceFeedMaxAttempts,
		Logger:      logger,
	})

	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName, logger)

	svc, err := service.New(cfg, feed, notify, logger)
	if err != nil {
		logger.Fatal("service init failed", zap.Error(err))
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Swaps in flight get their own context so a client hanging up does not
	// abort them; shutdown still does.
	swapCtx, cancelSwaps := context.WithCancel(context.Background())
	defer cancelSwaps()

	// 1. Prices and swap session
	svc.Start()

	// 2. API server
	srv := api.NewServer(api.Deps{
		Store:        svc.Store,
		Refresher:    svc.Scheduler,
		Session:      svc.Session,
		Pipeline:     svc.Pipeline,
		Memo:         svc.Memo,
		Searcher:     svc.Searcher,
		SwapContext:  swapCtx,
		IconTemplate: cfg.IconURLTemplate,
	}, api.Options{
		Port:           cfg.APIPort,
		APIKey:         cfg.APIKey,
		CORSOrigin:     cfg.CORSAllowOrigin,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("API server error", zap.Error(err))
		}
	}()

	logger.Info("all services started")

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("API shutdown error", zap.Error(err))
	}
	logger.Info("API server closed")

	cancelSwaps()
	svc.Stop()
	logger.Info("shutdown complete")
}
