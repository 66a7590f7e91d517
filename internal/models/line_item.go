package models

import "github.com/shopspring/decimal"

// LineItem is one billable row on an invoice.
type LineItem struct {
	ID          int             `json:"id"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"` // billed minutes for imported time
	Rate        decimal.Decimal `json:"rate"`     // per unit, 4 decimal places for time
	Amount      decimal.Decimal `json:"amount"`   // 2 decimal places
}

// IsBlank reports whether the item is the untouched placeholder a new invoice
// starts with.
func (li LineItem) IsBlank() bool {
	return li.Description == "" && li.Rate.IsZero()
}

// NextLineItemID returns an id that collides with none of items.
func NextLineItemID(items []LineItem) int {
	maxID := 0
	for _, it := range items {
		if it.ID > maxID {
			maxID = it.ID
		}
	}
	return maxID + 1
}
