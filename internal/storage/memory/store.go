package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	interfaces "github.com/gigster-garage/timebilling/internal/interfaces"
	"github.com/gigster-garage/timebilling/internal/models"
)

// DraftStore is an in-process implementation of interfaces.DraftStore.
// Drafts live only as long as the process does.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]models.Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[string]models.Draft),
	}
}

// SaveDraft inserts or replaces the draft with the same ID.
func (m *DraftStore) SaveDraft(ctx context.Context, draft models.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if draft.ID == "" {
		return fmt.Errorf("memory: draft id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.drafts[draft.ID] = draft.Clone()
	return nil
}

func (m *DraftStore) GetDraft(ctx context.Context, id string) (models.Draft, error) {
	if err := ctx.Err(); err != nil {
		return models.Draft{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drafts[id]
	if !ok {
		return models.Draft{}, fmt.Errorf("%w: %s", interfaces.ErrDraftNotFound, id)
	}
	return d.Clone(), nil
}

// ListDrafts returns copies of all drafts, oldest first.
func (m *DraftStore) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *DraftStore) DeleteDraft(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drafts[id]; !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrDraftNotFound, id)
	}
	delete(m.drafts, id)
	return nil
}

// Compile-time check: ensure DraftStore implements the interface
var _ interfaces.DraftStore = (*DraftStore)(nil)
