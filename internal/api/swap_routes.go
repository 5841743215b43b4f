package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kjannette/trahn-swap/internal/models"
	"github.com/kjannette/trahn-swap/internal/swap"
)

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type sessionResponse struct {
	Form      models.SwapForm     `json:"form"`
	CanSubmit bool                `json:"canSubmit"`
	Busy      bool                `json:"busy"`
	Last      *models.SwapReceipt `json:"last,omitempty"`
	LastError string              `json:"lastError,omitempty"`
}

type sessionEvent struct {
	Action   string             `json:"action"`
	Value    string             `json:"value,omitempty"`
	Balances map[string]float64 `json:"balances,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var form models.SwapForm
	if err := decodeBody(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := swap.Validate(form); err != nil {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Message: swap.Message(err)})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true})
}

func (s *Server) sessionState() sessionResponse {
	sess := s.deps.Session
	out := sessionResponse{
		Form:      sess.State(),
		CanSubmit: sess.CanSubmit(),
		Busy:      sess.Busy(),
	}
	last, err := sess.LastResult()
	out.Last = last
	if err != nil {
		out.LastError = err.Error()
	}
	return out
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	if s.deps.Session == nil {
		writeError(w, http.StatusServiceUnavailable, "swap session not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.sessionState())
}

func (s *Server) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Session == nil {
		writeError(w, http.StatusServiceUnavailable, "swap session not configured")
		return
	}
	var ev sessionEvent
	if err := decodeBody(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.applyEvent(ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.sessionState())
}

func (s *Server) applyEvent(ev sessionEvent) error {
	sess := s.deps.Session
	switch strings.ToLower(ev.Action) {
	case "source":
		sess.SetSource(strings.TrimSpace(ev.Value))
	case "destination":
		sess.SetDestination(strings.TrimSpace(ev.Value))
	case "amount":
		sess.SetAmount(ev.Value)
	case "direction":
		sess.SwapDirection()
	case "percent":
		pct, err := strconv.ParseFloat(strings.TrimSpace(ev.Value), 64)
		if err != nil || pct < 0 || pct > 100 {
			return fmt.Errorf("percent must be a number between 0 and 100")
		}
		sess.SelectPercent(pct)
	case "max":
		sess.SelectMax()
	case "balances":
		sess.SetBalances(ev.Balances)
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
	return nil
}

func (s *Server) handleSessionSubmit(w http.ResponseWriter, r *http.Request) {
	if s.deps.Session == nil {
		writeError(w, http.StatusServiceUnavailable, "swap session not configured")
		return
	}
	id, err := s.deps.Session.Submit(s.deps.SwapContext)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}
