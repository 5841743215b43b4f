package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kjannette/trahn-swap/internal/catalog"
	"github.com/kjannette/trahn-swap/internal/models"
	swaprate "github.com/kjannette/trahn-swap/internal/rate"
)

type quoteJSON struct {
	From           string  `json:"from"`
	To             string  `json:"to"`
	Amount         float64 `json:"amount"`
	Result         string  `json:"result"`
	Value          float64 `json:"value"`
	CatalogVersion uint64  `json:"catalogVersion"`
}

func (s *Server) catalog() *catalog.Catalog {
	if s.deps.Store == nil {
		return nil
	}
	return s.deps.Store.Current()
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	cat := s.catalog()
	records := s.deps.Searcher.Search(cat, r.URL.Query().Get("search"))
	out := catalog.Listings(records, s.deps.IconTemplate)
	if out == nil {
		out = []models.TokenListing{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := strings.TrimSpace(q.Get("from"))
	to := strings.TrimSpace(q.Get("to"))
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	amount, err := swaprate.ParseAmount(q.Get("amount"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	cat := s.catalog()
	var value float64
	if s.deps.Memo != nil {
		value, err = s.deps.Memo.Convert(cat, from, to, amount)
	} else {
		value, err = swaprate.Convert(cat, from, to, amount)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteJSON{
		From:           from,
		To:             to,
		Amount:         amount,
		Result:         swaprate.FormatAmount(value),
		Value:          value,
		CatalogVersion: cat.Version(),
	})
}

func (s *Server) handlePriceStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "price store not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Store.Status())
}

func (s *Server) handlePriceRefresh(w http.ResponseWriter, r *http.Request) {
	if s.deps.Refresher == nil || s.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "price refresh not configured")
		return
	}
	if err := s.deps.Refresher.RefreshNow(r.Context()); err != nil {
		s.logger.Warn("manual price refresh failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "price feed unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Store.Status())
}
