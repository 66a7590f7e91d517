// Package invoice holds the authoritative invoice arithmetic and the service
// that assembles draft invoices from line items and imported time.
package invoice

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gigster-garage/timebilling/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTaxRate  = errors.New("tax rate must be between 0 and 100")
	ErrInvalidDiscount = errors.New("discount amount must be >= 0")
	ErrNegativeTotal   = errors.New("calculated total is negative")
)

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.New(1, -2)
)

// LineItemAmount is quantity*rate rounded to cents.
func LineItemAmount(quantity int64, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(quantity).Mul(rate).Round(2)
}

// CalculateTotals computes subtotal, tax and total for items. Amounts carried
// on the items are not trusted: each is recomputed from quantity and rate, and
// a disagreement of more than a cent is logged on log (which may be nil).
func CalculateTotals(log *slog.Logger, items []models.LineItem, taxRate, discount decimal.Decimal) (models.Totals, error) {
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return models.Totals{}, fmt.Errorf("%w: got %s", ErrInvalidTaxRate, taxRate)
	}
	if discount.IsNegative() {
		return models.Totals{}, fmt.Errorf("%w: got %s", ErrInvalidDiscount, discount)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		amount := LineItemAmount(item.Quantity, item.Rate)
		if log != nil && item.Amount.Sub(amount).Abs().GreaterThan(tolerance) {
			log.Warn("line item amount disagrees with quantity*rate; using computed value",
				slog.Int("line_item_id", item.ID),
				slog.String("description", item.Description),
				slog.String("sent", item.Amount.String()),
				slog.String("computed", amount.String()),
			)
		}
		subtotal = subtotal.Add(amount)
	}

	tax := subtotal.Mul(taxRate).Div(hundred).Round(2)
	total := subtotal.Add(tax).Sub(discount).Round(2)
	if total.IsNegative() {
		return models.Totals{}, fmt.Errorf("%w: %s, check the discount", ErrNegativeTotal, total.StringFixed(2))
	}

	return models.Totals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: discount,
		TotalAmount:    total,
	}, nil
}

// ValidateTotals recomputes the totals and lists every figure in claimed that
// is off by more than a cent. An empty result means claimed is consistent.
func ValidateTotals(items []models.LineItem, taxRate, discount decimal.Decimal, claimed models.Totals) []string {
	calc, err := CalculateTotals(nil, items, taxRate, discount)
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	check := func(name string, want, got decimal.Decimal) {
		if want.Sub(got).Abs().GreaterThan(tolerance) {
			problems = append(problems, fmt.Sprintf("%s mismatch: expected %s, got %s", name, want.StringFixed(2), got.StringFixed(2)))
		}
	}
	check("subtotal", calc.Subtotal, claimed.Subtotal)
	check("tax amount", calc.TaxAmount, claimed.TaxAmount)
	check("total amount", calc.TotalAmount, claimed.TotalAmount)
	return problems
}

// BalanceDue is what is left to pay, never below zero.
func BalanceDue(total, paid decimal.Decimal) decimal.Decimal {
	balance := total.Sub(paid).Round(2)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}
