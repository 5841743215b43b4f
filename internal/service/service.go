// Package service assembles the price store, refresh scheduler and swap
// session into one runnable unit.
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"

	"github.com/kjannette/trahn-swap/internal/catalog"
	"github.com/kjannette/trahn-swap/internal/config"
	"github.com/kjannette/trahn-swap/internal/models"
	"github.com/kjannette/trahn-swap/internal/pricestore"
	"github.com/kjannette/trahn-swap/internal/rate"
	"github.com/kjannette/trahn-swap/internal/risk"
	"github.com/kjannette/trahn-swap/internal/scheduler"
	"github.com/kjannette/trahn-swap/internal/swap"
	"github.com/kjannette/trahn-swap/internal/wallet"
)

const (
	memoEntries = 10_000
	memoTTL     = 10 * time.Minute
	searchTTL   = 5 * time.Minute
)

type Service struct {
	Store     *pricestore.Store
	Scheduler *scheduler.RefreshScheduler
	Executor  *swap.PaperExecutor
	Guardian  *risk.Guardian
	Session   *swap.Session
	Pipeline  *wallet.Pipeline
	Memo      *rate.Memo
	Searcher  *catalog.Searcher

	logger *zap.Logger
	notify swap.Notifier

	mu      sync.Mutex
	running bool
	sub     event.Subscription
	done    chan struct{}
}

// New builds every component from cfg. Nothing runs until Start.
func New(cfg *config.Config, fetcher pricestore.Fetcher, notify swap.Notifier, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	table := wallet.DefaultPriorityTable()
	if cfg.PriorityTableFile != "" {
		t, err := wallet.LoadPriorityTable(cfg.PriorityTableFile)
		if err != nil {
			return nil, fmt.Errorf("priority table: %w", err)
		}
		table = t
	}

	memo, err := rate.NewMemo(memoEntries, memoTTL)
	if err != nil {
		return nil, fmt.Errorf("quote memo: %w", err)
	}

	store := pricestore.New(fetcher, logger)
	guardian := risk.NewGuardian(risk.Limits{
		MaxDailySwaps:  cfg.MaxDailySwaps,
		MaxSwapSizeUSD: cfg.MaxSwapSizeUSD,
	}, nil)
	exec := swap.NewPaperExecutor(swap.PaperOptions{
		Latency:  cfg.PaperSwapLatency,
		Balances: cfg.PaperBalances,
		Notify:   notify,
		Guard:    guardian,
		USDPrice: func(symbol string) (float64, bool) { return store.Current().Lookup(symbol) },
	}, logger)
	guardian.SetCounter(exec)

	sess := swap.NewSession(store.Current(), cfg.PaperBalances, exec, logger)
	sess.OnComplete(func(r models.SwapReceipt, err error) {
		if err != nil {
			logger.Warn("swap finished with error", zap.Error(err))
			return
		}
		logger.Info("swap finished", zap.String("id", r.ID), zap.Duration("took", r.CompletedAt.Sub(r.StartedAt)))
	})

	return &Service{
		Store: store,
		Scheduler: scheduler.NewRefreshScheduler(store, scheduler.RefreshSchedulerConfig{
			Interval: cfg.PriceRefreshInterval,
			Timeout:  cfg.PriceFeedTimeout,
		}, logger),
		Executor: exec,
		Guardian: guardian,
		Session:  sess,
		Pipeline: wallet.NewPipeline(table),
		Memo:     memo,
		Searcher: catalog.NewSearcher(searchTTL),
		logger:   logger,
		notify:   notify,
	}, nil
}

// Start forwards every new catalog to the session and starts price
// refreshes. The forwarder runs until Stop; it must keep draining while a
// refresh is publishing.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("swap service already running")
		return
	}
	s.running = true

	ch := make(chan *catalog.Catalog, 1)
	s.sub = s.Store.Subscribe(ch)
	s.done = make(chan struct{})
	go s.forward(ch, s.sub, s.done)

	// Catch any snapshot installed before the subscription.
	s.Session.SetCatalog(s.Store.Current())
	s.Scheduler.Start()

	if s.notify != nil {
		s.notify.Send("Starting token swap service (paper swaps)")
	}
	s.logger.Info("swap service started")
}

func (s *Service) forward(ch <-chan *catalog.Catalog, sub event.Subscription, done chan struct{}) {
	defer close(done)
	for {
		select {
		case cat := <-ch:
			s.Session.SetCatalog(cat)
		case err := <-sub.Err():
			if err != nil {
				s.logger.Warn("catalog subscription ended", zap.Error(err))
			}
			return
		}
	}
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.Scheduler.Stop()
	s.sub.Unsubscribe()
	<-s.done
	s.Memo.Close()
	s.logger.Info("swap service stopped")
}
