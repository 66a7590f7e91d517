package interfaces

import (
	"context"
	"errors"

	"github.com/gigster-garage/timebilling/internal/models"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftStore keeps draft invoices between calls. Implementations return
// copies; mutating a returned Draft does not change stored state.
type DraftStore interface {
	SaveDraft(ctx context.Context, draft models.Draft) error
	GetDraft(ctx context.Context, id string) (models.Draft, error)
	ListDrafts(ctx context.Context) ([]models.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
}
