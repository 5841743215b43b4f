package wallet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kjannette/trahn-swap/internal/models"
)

// PriorityTable maps a chain name to its display priority. A table is built
// once and only read afterwards; it is safe to share between goroutines.
type PriorityTable struct {
	m map[string]int
}

func NewPriorityTable(m map[string]int) PriorityTable {
	cp := make(map[string]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return PriorityTable{m: cp}
}

var defaultPriorities = NewPriorityTable(map[string]int{
	"Osmosis":  100,
	"Ethereum": 50,
	"Arbitrum": 30,
	"Zilliqa":  20,
	"Neo":      20,
})

func DefaultPriorityTable() PriorityTable {
	return defaultPriorities
}

// Priority returns the chain's priority, or models.UnknownPriority.
func (t PriorityTable) Priority(chain string) int {
	if p, ok := t.m[chain]; ok {
		return p
	}
	return models.UnknownPriority
}

func (t PriorityTable) Len() int { return len(t.m) }

// LoadPriorityTable reads a YAML mapping of chain name to priority.
func LoadPriorityTable(path string) (PriorityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PriorityTable{}, fmt.Errorf("read priority table: %w", err)
	}
	var m map[string]int
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return PriorityTable{}, fmt.Errorf("parse priority table %s: %w", path, err)
	}
	if len(m) == 0 {
		return PriorityTable{}, fmt.Errorf("priority table %s is empty", path)
	}
	return NewPriorityTable(m), nil
}
