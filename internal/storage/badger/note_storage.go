package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/interfaces"
	"github.com/bobmcallan/vire-research/internal/models"
	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"
)

// NoteStorage implements interfaces.NoteStorage using BadgerDB.
type NoteStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewNoteStorage creates research note storage backed by BadgerDB.
func NewNoteStorage(db *BadgerDB, logger *common.Logger) *NoteStorage {
	return &NoteStorage{
		db:     db,
		logger: logger,
	}
}

// Get retrieves one note by ID.
func (s *NoteStorage) Get(_ context.Context, id string) (*models.ResearchNote, error) {
	var n models.ResearchNote
	err := s.db.Store().Get(id, &n)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: note %s", interfaces.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get note %s: %w", id, err)
	}
	return &n, nil
}

// List returns notes newest-first.
func (s *NoteStorage) List(_ context.Context, activeOnly bool) ([]models.ResearchNote, error) {
	var entries []models.ResearchNote
	var query *badgerhold.Query
	if activeOnly {
		query = badgerhold.Where("IsActive").Eq(true)
	}
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Save upserts a note, assigning an ID on first save.
func (s *NoteStorage) Save(_ context.Context, n *models.ResearchNote) error {
	now := time.Now().UTC()
	if n.ID == "" {
		n.ID = uuid.New().String()
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	if err := s.db.Store().Upsert(n.ID, n); err != nil {
		return fmt.Errorf("failed to save note %s: %w", n.ID, err)
	}
	return nil
}

// Delete removes a note. Deleting an absent record is not an error.
func (s *NoteStorage) Delete(_ context.Context, id string) error {
	err := s.db.Store().Delete(id, models.ResearchNote{})
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	return nil
}
