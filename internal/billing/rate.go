package billing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidRate = errors.New("hourly rate must be a finite number >= 0")

// NewHourlyRate validates a rate supplied as a float, e.g. from a flag or
// environment variable. Zero is allowed and bills zero-amount items.
func NewHourlyRate(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero, fmt.Errorf("%w: got %v", ErrInvalidRate, f)
	}
	return decimal.NewFromFloat(f), nil
}

// CheckHourlyRate rejects negative decimal rates.
func CheckHourlyRate(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrInvalidRate, d.String())
	}
	return nil
}
