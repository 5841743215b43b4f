package models

// UnknownPriority is assigned to balances on chains missing from the
// priority table. Such balances never survive the filter step.
const UnknownPriority = -99

type BalanceRecord struct {
	Chain  string  `json:"chain"`
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
}

type PrioritizedBalance struct {
	BalanceRecord
	Priority int `json:"priority"`
}

type FormattedBalance struct {
	PrioritizedBalance
	DisplayAmount string `json:"displayAmount"`
}

// BalanceRow is a formatted balance valued in USD. Key is stable across
// re-derivations and is what renderers should key list items on.
type BalanceRow struct {
	FormattedBalance
	Key      string  `json:"key"`
	USDValue float64 `json:"usdValue"`
	Priced   bool    `json:"priced"`
}
