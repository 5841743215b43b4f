package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Prices         string `json:"prices"`
	CatalogVersion uint64 `json:"catalogVersion"`
	SwapBusy       bool   `json:"swapBusy"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	svc := healthServices{Prices: "unavailable"}
	if s.deps.Store != nil {
		st := s.deps.Store.Status()
		svc.CatalogVersion = st.Version
		switch {
		case st.Symbols > 0 && st.LastError == "":
			svc.Prices = "loaded"
		case st.Symbols > 0:
			svc.Prices = "stale"
		default:
			svc.Prices = "empty"
		}
	}
	if s.deps.Session != nil {
		svc.SwapBusy = s.deps.Session.Busy()
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  svc,
	})
}
