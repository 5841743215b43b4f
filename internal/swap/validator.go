// Package swap owns the swap form: validation, live conversion and
// simulated execution.
package swap

import (
	"errors"
	"fmt"

	"github.com/kjannette/trahn-swap/internal/models"
	"github.com/kjannette/trahn-swap/internal/rate"
)

var (
	ErrNoTokenSelected     = errors.New("no token selected")
	ErrNoAmount            = errors.New("no amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBusy                = errors.New("swap already in progress")
)

// Validate checks a form before submission. The balance check runs first
// because it is the condition flagged continuously while the user types; it
// needs only a source token and a parseable amount.
func Validate(form models.SwapForm) error {
	if err := CheckBalance(form); err != nil {
		return err
	}
	if form.SourceSymbol == "" || form.DestinationSymbol == "" {
		return ErrNoTokenSelected
	}
	if _, err := parsePositive(form.SourceAmount); err != nil {
		return err
	}
	return nil
}

// CheckBalance reports ErrInsufficientBalance when the entered amount
// exceeds the held balance of the source token. A missing balance counts as
// zero. Forms without a source token or a numeric amount pass.
func CheckBalance(form models.SwapForm) error {
	if form.SourceSymbol == "" {
		return nil
	}
	amount, err := rate.ParseAmount(form.SourceAmount)
	if err != nil {
		return nil
	}
	held := form.Balance(form.SourceSymbol)
	if amount > held {
		return fmt.Errorf("%w: have %g %s, need %g", ErrInsufficientBalance, held, form.SourceSymbol, amount)
	}
	return nil
}

func parsePositive(s string) (float64, error) {
	amount, err := rate.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoAmount, err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrNoAmount)
	}
	return amount, nil
}

// Message is the user-facing text for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoTokenSelected):
		return "Select token to swap"
	case errors.Is(err, ErrNoAmount):
		return "Select value to swap"
	case errors.Is(err, ErrInsufficientBalance):
		return "Insufficient balance"
	case errors.Is(err, ErrBusy):
		return "Swap in progress"
	case errors.Is(err, rate.ErrMissingQuote):
		return "No quote available for the selected tokens"
	case errors.Is(err, rate.ErrDivisionByZero):
		return "Destination token has no price"
	case errors.Is(err, rate.ErrInvalidAmount):
		return "Enter a valid amount"
	default:
		return err.Error()
	}
}
