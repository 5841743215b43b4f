// Package rate converts token amounts through a price catalog.
package rate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kjannette/trahn-swap/internal/catalog"
)

var (
	ErrMissingQuote   = errors.New("missing quote")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrDivisionByZero = errors.New("division by zero")
)

// Convert returns the amount of destination tokens worth amount source
// tokens, using amount * (price(source) / price(destination)).
func Convert(c *catalog.Catalog, source, destination string, amount float64) (float64, error) {
	srcPrice, ok := c.Lookup(source)
	if !ok {
		return 0, fmt.Errorf("%w for %q", ErrMissingQuote, source)
	}
	dstPrice, ok := c.Lookup(destination)
	if !ok {
		return 0, fmt.Errorf("%w for %q", ErrMissingQuote, destination)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	if dstPrice == 0 {
		return 0, fmt.Errorf("%w: %s is priced at zero", ErrDivisionByZero, destination)
	}

	out := amount * (srcPrice / dstPrice)
	if math.IsInf(out, 0) || math.IsNaN(out) {
		return 0, fmt.Errorf("%w: result out of range", ErrInvalidAmount)
	}
	return out, nil
}

// ParseAmount parses user-entered amount text.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// FormatAmount renders a converted amount with the shortest exact
// representation.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
