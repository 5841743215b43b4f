package risk

import (
	"context"
	"fmt"
)

// DailySwapCounter abstracts swap counting so Guardian can be tested
// without an executor.
type DailySwapCounter interface {
	CountToday(ctx context.Context) (int, error)
}

// Limits holds the swap thresholds from config.
// A zero value for any field means that check is disabled.
type Limits struct {
	MaxDailySwaps  int
	MaxSwapSizeUSD float64
}

type Guardian struct {
	limits  Limits
	counter DailySwapCounter
}

func NewGuardian(limits Limits, counter DailySwapCounter) *Guardian {
	return &Guardian{limits: limits, counter: counter}
}

// SetCounter attaches the counter after construction, for executors that
// are themselves guarded by g.
func (g *Guardian) SetCounter(counter DailySwapCounter) {
	g.counter = counter
}

// PreSwapCheck validates per-swap constraints before execution.
// Returns nil if the swap is allowed, a descriptive error if blocked.
func (g *Guardian) PreSwapCheck(ctx context.Context, swapUSDValue float64) error {
	if g.limits.MaxSwapSizeUSD > 0 && swapUSDValue > g.limits.MaxSwapSizeUSD {
		return fmt.Errorf("swap blocked: size $%.2f exceeds max $%.2f",
			swapUSDValue, g.limits.MaxSwapSizeUSD)
	}

	if g.limits.MaxDailySwaps > 0 && g.counter != nil {
		count, err := g.counter.CountToday(ctx)
		if err != nil {
			return fmt.Errorf("swap blocked: unable to verify daily swap count: %w", err)
		}
		if count >= g.limits.MaxDailySwaps {
			return fmt.Errorf("swap blocked: daily limit of %d swaps reached (%d executed today)",
				g.limits.MaxDailySwaps, count)
		}
	}

	return nil
}

// Enabled reports whether any limit is active.
func (g *Guardian) Enabled() bool {
	return g.limits.MaxDailySwaps > 0 || g.limits.MaxSwapSizeUSD > 0
}
