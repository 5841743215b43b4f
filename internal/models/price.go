package models

import "time"

// PriceRecord is one row of the price feed. Several records may share a
// symbol; the feed is a time series.
type PriceRecord struct {
	Symbol string    `json:"currency"`
	AsOf   time.Time `json:"date"`
	Price  float64   `json:"price"`
}

type TokenListing struct {
	Symbol  string    `json:"symbol"`
	Price   float64   `json:"price"`
	AsOf    time.Time `json:"asOf"`
	IconURL string    `json:"iconUrl"`
}
