package wallet

import (
	"reflect"
	"sync"

	"github.com/kjannette/trahn-swap/internal/models"
)

// RowKey identifies a balance across re-derivations.
func RowKey(b models.BalanceRecord) string {
	return b.Chain + "/" + b.Symbol
}

// Rows values prioritized balances in USD. A symbol missing from prices is
// left unpriced rather than valued at zero.
func Rows(formatted []models.FormattedBalance, prices map[string]float64) []models.BalanceRow {
	out := make([]models.BalanceRow, len(formatted))
	for i, b := range formatted {
		row := models.BalanceRow{FormattedBalance: b, Key: RowKey(b.BalanceRecord)}
		if p, ok := prices[b.Symbol]; ok {
			row.USDValue = p * b.Amount
			row.Priced = true
		}
		out[i] = row
	}
	return out
}

// Pipeline keeps the last prioritized result and reruns Prioritize only
// when the balances change. Valuation never triggers a rerun.
type Pipeline struct {
	table PriorityTable

	mu       sync.Mutex
	last     []models.BalanceRecord
	result   []models.FormattedBalance
	computed bool
	runs     int
}

func NewPipeline(table PriorityTable) *Pipeline {
	return &Pipeline{table: table}
}

// Prioritized returns the prioritized balances for balances.
func (p *Pipeline) Prioritized(balances []models.BalanceRecord) []models.FormattedBalance {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.computed && reflect.DeepEqual(p.last, balances) {
		return p.result
	}
	p.last = append([]models.BalanceRecord(nil), balances...)
	p.result = Prioritize(balances, p.table)
	p.computed = true
	p.runs++
	return p.result
}

// Rows prioritizes balances (reusing the last result when unchanged) and
// values them with prices.
func (p *Pipeline) Rows(balances []models.BalanceRecord, prices map[string]float64) []models.BalanceRow {
	return Rows(p.Prioritized(balances), prices)
}

func (p *Pipeline) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}
