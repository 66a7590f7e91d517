package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	interfaces "github.com/gigster-garage/timebilling/internal/interfaces"
	"github.com/gigster-garage/timebilling/internal/models"
)

func TestDraftStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	draft := models.Draft{
		ID:        "d1",
		LineItems: []models.LineItem{{ID: 1, Description: "Setup"}},
		CreatedAt: time.Now(),
	}
	if err := store.SaveDraft(ctx, draft); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	draft.LineItems[0].Description = "changed"

	got, err := store.GetDraft(ctx, "d1")
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if got.LineItems[0].Description != "Setup" {
		t.Errorf("stored draft was mutated: %q", got.LineItems[0].Description)
	}

	got.LineItems[0].Description = "changed again"
	again, _ := store.GetDraft(ctx, "d1")
	if again.LineItems[0].Description != "Setup" {
		t.Errorf("returned draft aliases stored state: %q", again.LineItems[0].Description)
	}
}

func TestDraftStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	if _, err := store.GetDraft(ctx, "missing"); !errors.Is(err, interfaces.ErrDraftNotFound) {
		t.Errorf("GetDraft: expected ErrDraftNotFound, got %v", err)
	}
	if err := store.DeleteDraft(ctx, "missing"); !errors.Is(err, interfaces.ErrDraftNotFound) {
		t.Errorf("DeleteDraft: expected ErrDraftNotFound, got %v", err)
	}
	if err := store.SaveDraft(ctx, models.Draft{}); err == nil {
		t.Error("SaveDraft without id should fail")
	}
}

func TestDraftStore_ListOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b"} {
		if err := store.SaveDraft(ctx, models.Draft{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("SaveDraft: %v", err)
		}
	}
	if err := store.DeleteDraft(ctx, "a"); err != nil {
		t.Fatalf("DeleteDraft: %v", err)
	}

	list, err := store.ListDrafts(ctx)
	if err != nil {
		t.Fatalf("ListDrafts: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Errorf("unexpected order: %+v", list)
	}
}

func TestDraftStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewDraftStore()
	if err := store.SaveDraft(ctx, models.Draft{ID: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDraftStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.SaveDraft(ctx, models.Draft{ID: string(rune('A' + n%26))})
		}(i)
	}
	wg.Wait()

	list, _ := store.ListDrafts(ctx)
	if len(list) != 26 {
		t.Errorf("expected 26 drafts, got %d", len(list))
	}
}
