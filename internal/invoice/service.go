package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gigster-garage/timebilling/internal/billing"
	interfaces "github.com/gigster-garage/timebilling/internal/interfaces"
	"github.com/gigster-garage/timebilling/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLineItemNotFound = errors.New("line item not found")
	ErrLastLineItem     = errors.New("an invoice keeps at least one line item")
)

// Service assembles draft invoices. It holds a reference to the draft store
// and one mutex per draft so edits to the same draft never interleave.
type Service struct {
	store interfaces.DraftStore
	log   *slog.Logger
	now   func() time.Time

	muMap map[string]*draftMutex // per-draft locks, dropped when unused
	mapMu sync.Mutex             // protects muMap
}

type draftMutex struct {
	mu   sync.Mutex
	refs int // holders plus waiters
}

func NewService(store interfaces.DraftStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
		muMap: make(map[string]*draftMutex),
	}
}

// lockDraft takes the draft's lock and returns its release func. The map
// entry lives only while someone holds or waits for it.
func (s *Service) lockDraft(id string) func() {
	s.mapMu.Lock()
	dm, exists := s.muMap[id]
	if !exists {
		dm = &draftMutex{}
		s.muMap[id] = dm
	}
	dm.refs++
	s.mapMu.Unlock()

	dm.mu.Lock()
	return func() {
		dm.mu.Unlock()

		s.mapMu.Lock()
		dm.refs--
		if dm.refs == 0 {
			delete(s.muMap, id)
		}
		s.mapMu.Unlock()
	}
}

// NewDraft starts an invoice holding the single blank line a fresh invoice
// form shows.
func (s *Service) NewDraft(ctx context.Context) (models.Draft, error) {
	now := s.now().UTC()
	d := models.Draft{
		ID:               uuid.New().String(),
		LineItems:        []models.LineItem{blankLineItem(1)},
		ConsumedEntryIDs: []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.SaveDraft(ctx, d); err != nil {
		return models.Draft{}, fmt.Errorf("save draft: %w", err)
	}
	s.log.Debug("draft created", slog.String("draft_id", d.ID))
	return d, nil
}

func (s *Service) GetDraft(ctx context.Context, id string) (models.Draft, error) {
	return s.store.GetDraft(ctx, id)
}

// DiscardDraft drops a draft. Edits already waiting on it fail with
// interfaces.ErrDraftNotFound.
func (s *Service) DiscardDraft(ctx context.Context, id string) error {
	unlock := s.lockDraft(id)
	defer unlock()

	return s.store.DeleteDraft(ctx, id)
}

// ListDrafts returns every open draft, oldest first.
func (s *Service) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	return s.store.ListDrafts(ctx)
}

// ImportResult reports what a time import did to a draft.
type ImportResult struct {
	Draft   models.Draft           `json:"draft"`
	Added   []models.LineItem      `json:"added"`
	Skipped []billing.SkippedEntry `json:"skipped"`
}

// ImportTime bills entries at hourlyRate and merges the line items into the
// draft. A draft that still holds only its blank placeholder has it replaced;
// otherwise the new items are appended. Ids of billed entries are recorded on
// the draft so the caller can mark them invoiced once the invoice is saved.
func (s *Service) ImportTime(ctx context.Context, draftID string, entries []models.TimeEntry, hourlyRate decimal.Decimal) (ImportResult, error) {
	if err := billing.CheckHourlyRate(hourlyRate); err != nil {
		return ImportResult{}, err
	}

	var res billing.Result
	draft, err := s.update(ctx, draftID, func(d *models.Draft) error {
		// Only an untouched draft has its blank line swapped out.
		replacePlaceholder := len(d.LineItems) == 1 && d.LineItems[0].IsBlank()

		existing := d.LineItems
		if replacePlaceholder {
			existing = nil
		}
		res = billing.Convert(entries, hourlyRate, existing)

		// Keep the placeholder when every entry was skipped.
		if replacePlaceholder && len(res.LineItems) > 0 {
			d.LineItems = res.LineItems
		} else {
			d.LineItems = append(d.LineItems, res.LineItems...)
		}
		// Re-importing an entry must not list it twice.
		d.ConsumedEntryIDs = appendUnique(d.ConsumedEntryIDs, res.ConsumedEntryIDs)
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	for _, sk := range res.Skipped {
		s.log.Debug("time entry skipped",
			slog.String("draft_id", draftID),
			slog.String("entry_id", sk.EntryID),
			slog.String("reason", string(sk.Reason)),
		)
	}
	s.log.Info("time imported",
		slog.String("draft_id", draftID),
		slog.Int("entries", len(entries)),
		slog.Int("line_items", len(res.LineItems)),
		slog.Int("skipped", len(res.Skipped)),
	)

	return ImportResult{Draft: draft, Added: res.LineItems, Skipped: res.Skipped}, nil
}

// AddLineItem appends a blank line item and returns it.
func (s *Service) AddLineItem(ctx context.Context, draftID string) (models.LineItem, error) {
	var item models.LineItem
	_, err := s.update(ctx, draftID, func(d *models.Draft) error {
		item = blankLineItem(models.NextLineItemID(d.LineItems))
		d.LineItems = append(d.LineItems, item)
		return nil
	})
	return item, err
}

// RemoveLineItem deletes a line item, refusing to remove the last one.
func (s *Service) RemoveLineItem(ctx context.Context, draftID string, itemID int) error {
	_, err := s.update(ctx, draftID, func(d *models.Draft) error {
		idx := indexOf(d.LineItems, itemID)
		if idx < 0 {
			return fmt.Errorf("%w: %d", ErrLineItemNotFound, itemID)
		}
		if len(d.LineItems) == 1 {
			return ErrLastLineItem
		}
		d.LineItems = append(d.LineItems[:idx], d.LineItems[idx+1:]...)
		return nil
	})
	return err
}

// SetLineItems replaces every line item of a draft. Amounts are recomputed
// from quantity and rate.
func (s *Service) SetLineItems(ctx context.Context, draftID string, items []models.LineItem) error {
	if len(items) == 0 {
		return ErrLastLineItem
	}
	_, err := s.update(ctx, draftID, func(d *models.Draft) error {
		d.LineItems = make([]models.LineItem, len(items))
		for i, it := range items {
			it.Amount = LineItemAmount(it.Quantity, it.Rate)
			d.LineItems[i] = it
		}
		return nil
	})
	return err
}

// LineItemPatch lists the fields to change; nil fields are left alone.
type LineItemPatch struct {
	Description *string
	Quantity    *int64
	Rate        *decimal.Decimal
}

// UpdateLineItem applies patch and recomputes the amount when quantity or
// rate changed.
func (s *Service) UpdateLineItem(ctx context.Context, draftID string, itemID int, patch LineItemPatch) (models.LineItem, error) {
	var item models.LineItem
	_, err := s.update(ctx, draftID, func(d *models.Draft) error {
		idx := indexOf(d.LineItems, itemID)
		if idx < 0 {
			return fmt.Errorf("%w: %d", ErrLineItemNotFound, itemID)
		}
		it := &d.LineItems[idx]
		if patch.Description != nil {
			it.Description = *patch.Description
		}
		if patch.Quantity != nil {
			it.Quantity = *patch.Quantity
		}
		if patch.Rate != nil {
			it.Rate = *patch.Rate
		}
		if patch.Quantity != nil || patch.Rate != nil {
			it.Amount = LineItemAmount(it.Quantity, it.Rate)
		}
		item = *it
		return nil
	})
	return item, err
}

// SetAdjustments sets the tax percentage and flat discount of a draft.
func (s *Service) SetAdjustments(ctx context.Context, draftID string, taxRate, discount decimal.Decimal) error {
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidTaxRate, taxRate)
	}
	if discount.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrInvalidDiscount, discount)
	}
	_, err := s.update(ctx, draftID, func(d *models.Draft) error {
		d.TaxRate = taxRate
		d.Discount = discount
		return nil
	})
	return err
}

// Totals computes the draft's totals from its current line items.
func (s *Service) Totals(ctx context.Context, draftID string) (models.Totals, error) {
	d, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return models.Totals{}, err
	}
	return CalculateTotals(s.log, d.LineItems, d.TaxRate, d.Discount)
}

// update loads a draft under its lock, applies fn and saves the result.
// Nothing is saved when fn fails.
func (s *Service) update(ctx context.Context, draftID string, fn func(*models.Draft) error) (models.Draft, error) {
	unlock := s.lockDraft(draftID)
	defer unlock()

	// Re-read under the lock; the caller's copy may be stale.
	d, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return models.Draft{}, err
	}
	// fn works on a clone, so a failed edit leaves the stored draft as is.
	if err := fn(&d); err != nil {
		return models.Draft{}, err
	}
	d.UpdatedAt = s.now().UTC()
	if err := s.store.SaveDraft(ctx, d); err != nil {
		return models.Draft{}, fmt.Errorf("save draft: %w", err)
	}
	return d, nil
}

func blankLineItem(id int) models.LineItem {
	return models.LineItem{ID: id, Quantity: 1, Rate: decimal.Zero, Amount: decimal.Zero}
}

func indexOf(items []models.LineItem, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, id := range dst {
		seen[id] = struct{}{}
	}
	for _, id := range src {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		dst = append(dst, id)
	}
	return dst
}
