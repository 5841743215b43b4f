package swap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kjannette/trahn-swap/internal/catalog"
	"github.com/kjannette/trahn-swap/internal/models"
	"github.com/kjannette/trahn-swap/internal/rate"
)

// Session owns one swap form. Every input event re-derives the destination
// amount and the error message, so neither can go stale. Methods are safe
// for concurrent use; events are applied one at a time.
type Session struct {
	exec   Executor
	logger *zap.Logger

	mu        sync.Mutex
	form      models.SwapForm
	cat       *catalog.Catalog
	tracker   rate.Tracker
	convErr   error
	submitErr error
	busy      bool
	last      *models.SwapReceipt
	lastErr   error
	onDone    func(models.SwapReceipt, error)
}

func NewSession(cat *catalog.Catalog, balances map[string]float64, exec Executor, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		exec:   exec,
		logger: logger,
		cat:    cat,
	}
	s.form.Balances = copyBalances(balances)
	s.refreshLocked()
	return s
}

// OnComplete registers a callback run after each submitted swap finishes.
func (s *Session) OnComplete(fn func(models.SwapReceipt, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDone = fn
}

// SetCatalog installs c. A versioned catalog older than the current one is
// ignored, so out-of-order deliveries cannot roll the form back.
func (s *Session) SetCatalog(c *catalog.Catalog) {
	s.apply(func() {
		if c.Version() != 0 && c.Version() < s.cat.Version() {
			s.logger.Debug("ignoring stale catalog",
				zap.Uint64("version", c.Version()),
				zap.Uint64("current", s.cat.Version()),
			)
			return
		}
		s.cat = c
	})
}

// CatalogVersion is the version of the catalog the form converts with.
func (s *Session) CatalogVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.Version()
}

func (s *Session) SetSource(symbol string) {
	s.apply(func() { s.form.SourceSymbol = symbol })
}

func (s *Session) SetDestination(symbol string) {
	s.apply(func() { s.form.DestinationSymbol = symbol })
}

func (s *Session) SetAmount(text string) {
	s.apply(func() { s.form.SourceAmount = text })
}

func (s *Session) SetBalances(balances map[string]float64) {
	s.apply(func() { s.form.Balances = copyBalances(balances) })
}

// SwapDirection exchanges the source and destination tokens.
func (s *Session) SwapDirection() {
	s.apply(func() {
		s.form.SourceSymbol, s.form.DestinationSymbol = s.form.DestinationSymbol, s.form.SourceSymbol
	})
}

// SelectPercent sets the amount to percent of the source balance.
func (s *Session) SelectPercent(percent float64) {
	s.apply(func() {
		held := decimal.NewFromFloat(s.form.Balance(s.form.SourceSymbol))
		amount := held.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100))
		s.form.SourceAmount = amount.String()
	})
}

// SelectMax sets the amount to the whole source balance.
func (s *Session) SelectMax() {
	s.SelectPercent(100)
}

func (s *Session) apply(event func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event()
	s.submitErr = nil
	s.refreshLocked()
}

// refreshLocked recomputes the destination amount through the tracker and
// rebuilds the error message.
func (s *Session) refreshLocked() {
	s.convErr = nil
	if s.form.SourceSymbol == "" || s.form.DestinationSymbol == "" {
		s.form.DestinationAmount = ""
	} else if amount, err := rate.ParseAmount(s.form.SourceAmount); err != nil {
		s.form.DestinationAmount = ""
	} else {
		res, _ := s.tracker.Update(rate.Inputs{
			Catalog:     s.cat,
			Source:      s.form.SourceSymbol,
			Destination: s.form.DestinationSymbol,
			Amount:      amount,
		})
		if res.Err != nil {
			s.convErr = res.Err
			s.form.DestinationAmount = ""
		} else {
			s.form.DestinationAmount = rate.FormatAmount(res.Value)
		}
	}
	s.form.ErrorMessage = Message(s.currentErrLocked())
}

// currentErrLocked picks the single error shown to the user.
func (s *Session) currentErrLocked() error {
	if err := CheckBalance(s.form); err != nil {
		return err
	}
	if s.submitErr != nil {
		return s.submitErr
	}
	return s.convErr
}

// State returns a copy of the form.
func (s *Session) State() models.SwapForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.form
	f.Balances = copyBalances(s.form.Balances)
	return f
}

// Err returns the error behind the current message, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentErrLocked()
}

// CanSubmit reports whether Submit would start a swap.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked() == nil
}

func (s *Session) canSubmitLocked() error {
	if s.busy {
		return ErrBusy
	}
	if err := Validate(s.form); err != nil {
		return err
	}
	if err := CheckBalance(s.form); err != nil {
		return err
	}
	return s.convErr
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// LastResult returns the outcome of the most recently finished swap.
func (s *Session) LastResult() (*models.SwapReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastErr
}

// Submit validates the form and starts the swap in the background. It
// returns the swap id without waiting for completion; ctx bounds the
// background swap, so it must outlive the caller when the caller is a
// request handler.
func (s *Session) Submit(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.canSubmitLocked(); err != nil {
		if !errors.Is(err, ErrBusy) {
			s.submitErr = err
			s.form.ErrorMessage = Message(s.currentErrLocked())
		}
		return "", err
	}
	if s.exec == nil {
		return "", fmt.Errorf("no executor configured")
	}

	src, _ := rate.ParseAmount(s.form.SourceAmount)
	dst, _ := rate.ParseAmount(s.form.DestinationAmount)
	order := models.SwapOrder{
		Source:            s.form.SourceSymbol,
		Destination:       s.form.DestinationSymbol,
		SourceAmount:      src,
		DestinationAmount: dst,
	}
	id := uuid.NewString()
	s.busy = true

	s.logger.Info("swap submitted",
		zap.String("id", id),
		zap.String("source", order.Source),
		zap.String("destination", order.Destination),
		zap.Float64("sourceAmount", order.SourceAmount),
	)

	go s.run(ctx, id, order)
	return id, nil
}

func (s *Session) run(ctx context.Context, id string, order models.SwapOrder) {
	receipt, err := s.exec.Execute(ctx, id, order)
	if err != nil {
		s.logger.Warn("swap failed", zap.String("id", id), zap.Error(err))
	}

	s.mu.Lock()
	s.busy = false
	s.lastErr = err
	if err == nil {
		s.last = &receipt
		if receipt.BalanceAfter != nil {
			s.form.Balances = copyBalances(receipt.BalanceAfter)
		}
	}
	s.refreshLocked()
	done := s.onDone
	s.mu.Unlock()

	if done != nil {
		done(receipt, err)
	}
}

func copyBalances(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
