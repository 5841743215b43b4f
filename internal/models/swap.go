package models

import "time"

// SwapForm is the state of a swap form as the user sees it. Amounts are kept
// as entered text; parsing happens in validation.
type SwapForm struct {
	SourceSymbol      string             `json:"sourceSymbol"`
	DestinationSymbol string             `json:"destinationSymbol"`
	SourceAmount      string             `json:"sourceAmount"`
	DestinationAmount string             `json:"destinationAmount"`
	ErrorMessage      string             `json:"errorMessage,omitempty"`
	Balances          map[string]float64 `json:"balances"`
}

// Balance returns the held balance for symbol, zero when none is held.
func (f SwapForm) Balance(symbol string) float64 {
	if f.Balances == nil {
		return 0
	}
	return f.Balances[symbol]
}

type SwapOrder struct {
	Source            string  `json:"source"`
	Destination       string  `json:"destination"`
	SourceAmount      float64 `json:"sourceAmount"`
	DestinationAmount float64 `json:"destinationAmount"`
}

type SwapReceipt struct {
	ID           string             `json:"id"`
	Order        SwapOrder          `json:"order"`
	StartedAt    time.Time          `json:"startedAt"`
	CompletedAt  time.Time          `json:"completedAt"`
	BalanceAfter map[string]float64 `json:"balanceAfter"`
}
