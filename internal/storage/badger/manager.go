package badger

import (
	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/config"
	"github.com/bobmcallan/vire-research/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger.
type Manager struct {
	db     *BadgerDB
	news   interfaces.NewsStorage
	notes  interfaces.NoteStorage
	logger *common.Logger
}

// NewManager creates a new Badger storage manager.
func NewManager(logger *common.Logger, cfg *config.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, cfg)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		news:   NewNewsStorage(db, logger),
		notes:  NewNoteStorage(db, logger),
		logger: logger,
	}

	logger.Debug().Msg("Badger storage manager initialized")

	return manager, nil
}

// NewsStorage returns the news storage interface.
func (m *Manager) NewsStorage() interfaces.NewsStorage {
	return m.news
}

// NoteStorage returns the research note storage interface.
func (m *Manager) NoteStorage() interfaces.NoteStorage {
	return m.notes
}

// Close closes the database connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
