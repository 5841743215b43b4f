package swap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjannette/trahn-swap/internal/models"
)

// Executor carries out a swap. Execute may block until the swap completes.
type Executor interface {
	Execute(ctx context.Context, id string, order models.SwapOrder) (models.SwapReceipt, error)
}

type Notifier interface {
	Send(msg string)
}

// PreSwapChecker vetoes a swap before it executes.
type PreSwapChecker interface {
	PreSwapCheck(ctx context.Context, usdValue float64) error
}

// PaperExecutor simulates swaps against an in-memory wallet. Nothing leaves
// the process.
type PaperExecutor struct {
	latency time.Duration
	notify  Notifier
	guard   PreSwapChecker
	usd     func(symbol string) (float64, bool)
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	balances map[string]float64
	receipts []models.SwapReceipt
}

type PaperOptions struct {
	Latency  time.Duration
	Balances map[string]float64
	Notify   Notifier
	Guard    PreSwapChecker
	// USDPrice values the source leg for Guard. Without it the guard sees 0.
	USDPrice func(symbol string) (float64, bool)
}

func NewPaperExecutor(opts PaperOptions, logger *zap.Logger) *PaperExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	bal := make(map[string]float64, len(opts.Balances))
	for k, v := range opts.Balances {
		bal[k] = v
	}
	return &PaperExecutor{
		latency:  opts.Latency,
		notify:   opts.Notify,
		guard:    opts.Guard,
		usd:      opts.USDPrice,
		logger:   logger,
		now:      time.Now,
		balances: bal,
	}
}

func (p *PaperExecutor) Execute(ctx context.Context, id string, order models.SwapOrder) (models.SwapReceipt, error) {
	started := p.now()

	if p.guard != nil {
		usdValue := 0.0
		if p.usd != nil {
			if price, ok := p.usd(order.Source); ok {
				usdValue = price * order.SourceAmount
			}
		}
		if err := p.guard.PreSwapCheck(ctx, usdValue); err != nil {
			return models.SwapReceipt{}, err
		}
	}

	if p.latency > 0 {
		select {
		case <-ctx.Done():
			return models.SwapReceipt{}, ctx.Err()
		case <-time.After(p.latency):
		}
	}

	p.mu.Lock()
	held := p.balances[order.Source]
	if held < order.SourceAmount {
		p.mu.Unlock()
		return models.SwapReceipt{}, fmt.Errorf("%w: have %g %s, need %g",
			ErrInsufficientBalance, held, order.Source, order.SourceAmount)
	}
	p.balances[order.Source] = held - order.SourceAmount
	p.balances[order.Destination] += order.DestinationAmount

	receipt := models.SwapReceipt{
		ID:           id,
		Order:        order,
		StartedAt:    started,
		CompletedAt:  p.now(),
		BalanceAfter: p.snapshotLocked(),
	}
	p.receipts = append(p.receipts, receipt)
	p.mu.Unlock()

	p.logger.Info("paper swap executed",
		zap.String("id", id),
		zap.String("source", order.Source),
		zap.String("destination", order.Destination),
		zap.Float64("sourceAmount", order.SourceAmount),
		zap.Float64("destinationAmount", order.DestinationAmount),
	)
	if p.notify != nil {
		p.notify.Send(fmt.Sprintf("Paper swap %s: %g %s -> %g %s",
			id, order.SourceAmount, order.Source, order.DestinationAmount, order.Destination))
	}
	return receipt, nil
}

func (p *PaperExecutor) snapshotLocked() map[string]float64 {
	out := make(map[string]float64, len(p.balances))
	for k, v := range p.balances {
		out[k] = v
	}
	return out
}

func (p *PaperExecutor) Balances() map[string]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *PaperExecutor) Receipts() []models.SwapReceipt {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.SwapReceipt, len(p.receipts))
	copy(out, p.receipts)
	return out
}

// CountToday counts swaps completed since midnight UTC.
func (p *PaperExecutor) CountToday(_ context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	y, m, d := p.now().UTC().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	n := 0
	for _, r := range p.receipts {
		if !r.CompletedAt.Before(midnight) {
			n++
		}
	}
	return n, nil
}
