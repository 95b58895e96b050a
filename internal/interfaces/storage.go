// Package interfaces declares the storage contracts the rest of the
// application depends on, keeping the concrete backend swappable.
package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/vire-research/internal/models"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// StorageManager provides access to domain-specific storage interfaces.
// Implementations can be swapped (BadgerDB now, centralised DB later).
type StorageManager interface {
	NewsStorage() NewsStorage
	NoteStorage() NoteStorage
	Close() error
}

// NewsStorage persists editor-authored news events.
type NewsStorage interface {
	Get(ctx context.Context, id string) (*models.News, error)
	// List returns news newest-published-first. publishedOnly restricts to
	// published entries for the public surface.
	List(ctx context.Context, publishedOnly bool) ([]models.News, error)
	Save(ctx context.Context, n *models.News) error
	Delete(ctx context.Context, id string) error
}

// NoteStorage persists personal research notes.
type NoteStorage interface {
	Get(ctx context.Context, id string) (*models.ResearchNote, error)
	// List returns notes newest-first. activeOnly restricts to active
	// entries for the public surface.
	List(ctx context.Context, activeOnly bool) ([]models.ResearchNote, error)
	Save(ctx context.Context, n *models.ResearchNote) error
	Delete(ctx context.Context, id string) error
}
