package invoice

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gigster-garage/timebilling/internal/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals(t *testing.T) {
	items := []models.LineItem{
		{ID: 1, Description: "Design (3 min)", Quantity: 3, Rate: dec("1.5"), Amount: dec("4.5")},
		{ID: 2, Description: "Hosting", Quantity: 2, Rate: dec("19.99"), Amount: dec("39.98")},
	}

	tests := []struct {
		name         string
		taxRate      string
		discount     string
		wantSubtotal string
		wantTax      string
		wantTotal    string
		wantErr      error
	}{
		{name: "no adjustments", taxRate: "0", discount: "0", wantSubtotal: "44.48", wantTax: "0.00", wantTotal: "44.48"},
		{name: "tax rounds to cents", taxRate: "8.25", discount: "0", wantSubtotal: "44.48", wantTax: "3.67", wantTotal: "48.15"},
		{name: "tax and discount", taxRate: "10", discount: "5", wantSubtotal: "44.48", wantTax: "4.45", wantTotal: "43.93"},
		{name: "full tax", taxRate: "100", discount: "0", wantSubtotal: "44.48", wantTax: "44.48", wantTotal: "88.96"},
		{name: "tax above 100", taxRate: "100.01", discount: "0", wantErr: ErrInvalidTaxRate},
		{name: "negative tax", taxRate: "-1", discount: "0", wantErr: ErrInvalidTaxRate},
		{name: "negative discount", taxRate: "0", discount: "-0.01", wantErr: ErrInvalidDiscount},
		{name: "discount beyond total", taxRate: "0", discount: "50", wantErr: ErrNegativeTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateTotals(nil, items, dec(tt.taxRate), dec(tt.discount))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Subtotal.StringFixed(2) != tt.wantSubtotal {
				t.Errorf("Subtotal: want %s, got %s", tt.wantSubtotal, got.Subtotal.StringFixed(2))
			}
			if got.TaxAmount.StringFixed(2) != tt.wantTax {
				t.Errorf("TaxAmount: want %s, got %s", tt.wantTax, got.TaxAmount.StringFixed(2))
			}
			if got.TotalAmount.StringFixed(2) != tt.wantTotal {
				t.Errorf("TotalAmount: want %s, got %s", tt.wantTotal, got.TotalAmount.StringFixed(2))
			}
		})
	}
}

func TestCalculateTotals_IgnoresTamperedAmount(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	items := []models.LineItem{
		{ID: 7, Description: "Consulting", Quantity: 10, Rate: dec("2"), Amount: dec("2000")},
	}
	got, err := CalculateTotals(log, items, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Subtotal.Equal(dec("20")) {
		t.Errorf("Subtotal: want 20, got %s", got.Subtotal)
	}
	if !strings.Contains(buf.String(), "line_item_id=7") {
		t.Errorf("expected a warning naming the line item, got %q", buf.String())
	}
}

func TestCalculateTotals_Empty(t *testing.T) {
	got, err := CalculateTotals(nil, nil, dec("20"), decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.TotalAmount.IsZero() {
		t.Errorf("expected zero total, got %s", got.TotalAmount)
	}
}

func TestValidateTotals(t *testing.T) {
	items := []models.LineItem{{ID: 1, Quantity: 3, Rate: dec("10")}}

	ok := ValidateTotals(items, dec("10"), decimal.Zero, models.Totals{
		Subtotal: dec("30"), TaxAmount: dec("3"), TotalAmount: dec("33.01"),
	})
	if len(ok) != 0 {
		t.Errorf("a one-cent difference is tolerated, got %v", ok)
	}

	bad := ValidateTotals(items, dec("10"), decimal.Zero, models.Totals{
		Subtotal: dec("30"), TaxAmount: dec("2"), TotalAmount: dec("40"),
	})
	if len(bad) != 2 {
		t.Fatalf("expected 2 problems, got %v", bad)
	}
	if !strings.HasPrefix(bad[0], "tax amount mismatch") || !strings.HasPrefix(bad[1], "total amount mismatch") {
		t.Errorf("unexpected problems: %v", bad)
	}

	invalid := ValidateTotals(items, dec("150"), decimal.Zero, models.Totals{})
	if len(invalid) != 1 {
		t.Errorf("invalid tax rate should be reported once, got %v", invalid)
	}
}

func TestBalanceDue(t *testing.T) {
	tests := []struct {
		total, paid, want string
	}{
		{"100", "40", "60"},
		{"100", "100", "0"},
		{"100", "120", "0"},
		{"10.005", "0", "10.01"},
	}
	for _, tt := range tests {
		got := BalanceDue(dec(tt.total), dec(tt.paid))
		if !got.Equal(dec(tt.want)) {
			t.Errorf("BalanceDue(%s, %s): want %s, got %s", tt.total, tt.paid, tt.want, got)
		}
	}
}

func TestLineItemAmount(t *testing.T) {
	if got := LineItemAmount(3, dec("1.6667")); !got.Equal(dec("5")) {
		t.Errorf("want 5.00, got %s", got)
	}
	if got := LineItemAmount(7, dec("0.0025")); !got.Equal(dec("0.02")) {
		t.Errorf("want 0.02, got %s", got)
	}
}
