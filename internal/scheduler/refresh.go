package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Refresher is the subset of the price store the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type RefreshSchedulerConfig struct {
	// Interval between refreshes. Zero means load once at start only.
	Interval time.Duration
	// Timeout bounds a single refresh.
	Timeout time.Duration
}

type RefreshScheduler struct {
	store  Refresher
	cfg    RefreshSchedulerConfig
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewRefreshScheduler(store Refresher, cfg RefreshSchedulerConfig, logger *zap.Logger) *RefreshScheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshScheduler{store: store, cfg: cfg, logger: logger}
}

func (s *RefreshScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("refresh scheduler already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	// Initial load on startup (fire-and-forget)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refresh(stopCh)
	}()

	if s.cfg.Interval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ticker := time.NewTicker(s.cfg.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-stopCh:
					return
				case <-ticker.C:
					s.refresh(stopCh)
				}
			}
		}()
		s.logger.Info("refresh scheduler started", zap.Duration("interval", s.cfg.Interval))
	} else {
		s.logger.Info("refresh scheduler started (load once)")
	}
}

func (s *RefreshScheduler) refresh(stopCh <-chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	// Store logs failures itself; the previous catalog stays in place.
	_ = s.store.Refresh(ctx)
}

// Stop halts the ticker and waits for an in-flight refresh to return.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("refresh scheduler stopped")
}

func (s *RefreshScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RefreshNow triggers a refresh outside the normal schedule.
func (s *RefreshScheduler) RefreshNow(ctx context.Context) error {
	s.logger.Info("manual price refresh triggered")
	return s.store.Refresh(ctx)
}
