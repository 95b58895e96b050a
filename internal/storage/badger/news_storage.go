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

// NewsStorage implements interfaces.NewsStorage using BadgerDB.
type NewsStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewNewsStorage creates news storage backed by BadgerDB.
func NewNewsStorage(db *BadgerDB, logger *common.Logger) *NewsStorage {
	return &NewsStorage{
		db:     db,
		logger: logger,
	}
}

// Get retrieves one news event by ID.
func (s *NewsStorage) Get(_ context.Context, id string) (*models.News, error) {
	var n models.News
	err := s.db.Store().Get(id, &n)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: news %s", interfaces.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get news %s: %w", id, err)
	}
	return &n, nil
}

// List returns news events, newest first by published (or created) time.
func (s *NewsStorage) List(_ context.Context, publishedOnly bool) ([]models.News, error) {
	var entries []models.News
	var query *badgerhold.Query
	if publishedOnly {
		query = badgerhold.Where("IsPublished").Eq(true)
	}
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return sortTime(entries[i]).After(sortTime(entries[j]))
	})
	return entries, nil
}

// sortTime orders a news event by publish time, falling back to creation.
func sortTime(n models.News) time.Time {
	if n.PublishedAt != nil {
		return *n.PublishedAt
	}
	return n.CreatedAt
}

// Save upserts a news event. A missing ID gets a new UUID; publishing for
// the first time stamps PublishedAt.
func (s *NewsStorage) Save(_ context.Context, n *models.News) error {
	now := time.Now().UTC()
	if n.ID == "" {
		n.ID = uuid.New().String()
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if n.IsPublished && n.PublishedAt == nil {
		n.PublishedAt = &now
	}

	if err := s.db.Store().Upsert(n.ID, n); err != nil {
		return fmt.Errorf("failed to save news %s: %w", n.ID, err)
	}
	return nil
}

// Delete removes a news event. Deleting an absent record is not an error.
func (s *NewsStorage) Delete(_ context.Context, id string) error {
	err := s.db.Store().Delete(id, models.News{})
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete news %s: %w", id, err)
	}
	return nil
}
