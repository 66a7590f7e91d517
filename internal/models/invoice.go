package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Totals are the authoritative money figures of an invoice. JSON renders
// them as fixed two-decimal strings.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal       string `json:"subtotal"`
		TaxAmount      string `json:"taxAmount"`
		DiscountAmount string `json:"discountAmount"`
		TotalAmount    string `json:"totalAmount"`
	}{
		Subtotal:       t.Subtotal.StringFixed(2),
		TaxAmount:      t.TaxAmount.StringFixed(2),
		DiscountAmount: t.DiscountAmount.StringFixed(2),
		TotalAmount:    t.TotalAmount.StringFixed(2),
	})
}

// Draft is an invoice being assembled: its editable line items, the time
// entries already pulled into it, and the adjustments applied to its total.
type Draft struct {
	ID               string          `json:"id"`
	LineItems        []LineItem      `json:"lineItems"`
	ConsumedEntryIDs []string        `json:"consumedEntryIds"`
	TaxRate          decimal.Decimal `json:"taxRate"` // percent
	Discount         decimal.Decimal `json:"discountAmount"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (d Draft) Clone() Draft {
	out := d
	out.LineItems = append([]LineItem(nil), d.LineItems...)
	out.ConsumedEntryIDs = append([]string(nil), d.ConsumedEntryIDs...)
	return out
}
