package api

import (
	"net/http"

	"github.com/kjannette/trahn-swap/internal/models"
)

type balancesRequest struct {
	Balances []models.BalanceRecord `json:"balances"`
	// Prices overrides the catalog's USD prices when set.
	Prices map[string]float64 `json:"prices,omitempty"`
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if s.deps.Pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "wallet pipeline not configured")
		return
	}
	var req balancesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prices := req.Prices
	if prices == nil {
		prices = catalogPrices(s)
	}
	rows := s.deps.Pipeline.Rows(req.Balances, prices)
	if rows == nil {
		rows = []models.BalanceRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func catalogPrices(s *Server) map[string]float64 {
	cat := s.catalog()
	out := make(map[string]float64, cat.Len())
	for _, sym := range cat.Symbols() {
		if p, ok := cat.Lookup(sym); ok {
			out[sym] = p
		}
	}
	return out
}
