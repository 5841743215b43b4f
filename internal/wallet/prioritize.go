// Package wallet derives display-ready wallet balances: supported chains
// only, ordered by chain priority, valued in USD.
package wallet

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/kjannette/trahn-swap/internal/models"
)

// Prioritize runs annotate, filter, sort and format in that order. The
// result depends only on balances and table.
func Prioritize(balances []models.BalanceRecord, table PriorityTable) []models.FormattedBalance {
	return Format(SortByPriority(Filter(Annotate(balances, table))))
}

// Annotate attaches a priority to every record. The table is consulted
// exactly once per record.
func Annotate(balances []models.BalanceRecord, table PriorityTable) []models.PrioritizedBalance {
	out := make([]models.PrioritizedBalance, len(balances))
	for i, b := range balances {
		out[i] = models.PrioritizedBalance{BalanceRecord: b, Priority: table.Priority(b.Chain)}
	}
	return out
}

// Filter keeps balances on known chains with a positive amount.
func Filter(in []models.PrioritizedBalance) []models.PrioritizedBalance {
	out := make([]models.PrioritizedBalance, 0, len(in))
	for _, b := range in {
		if b.Priority > models.UnknownPriority && b.Amount > 0 {
			out = append(out, b)
		}
	}
	return out
}

// SortByPriority orders by descending priority. Equal priorities keep their
// input order.
func SortByPriority(in []models.PrioritizedBalance) []models.PrioritizedBalance {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b models.PrioritizedBalance) int {
		return b.Priority - a.Priority
	})
	return out
}

func Format(in []models.PrioritizedBalance) []models.FormattedBalance {
	out := make([]models.FormattedBalance, len(in))
	for i, b := range in {
		out[i] = models.FormattedBalance{PrioritizedBalance: b, DisplayAmount: DisplayAmount(b.Amount)}
	}
	return out
}

// DisplayAmount rounds to a whole number, half away from zero.
func DisplayAmount(amount float64) string {
	return decimal.NewFromFloat(amount).Round(0).String()
}
