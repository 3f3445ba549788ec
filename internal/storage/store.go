package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pders01/pequod/internal/config"
)

var ErrFeedNotFound = errors.New("feed not found")

// Store is the durable copy of the feed list. Every method runs in its own
// transaction; callers keep the in-memory state authoritative.
type Store interface {
	// SaveFeed upserts the feed row and every entry it holds.
	SaveFeed(feed *Feed) error
	// SaveEntry upserts one entry. The owning feed must already be stored.
	SaveEntry(feedID string, entry *Entry) error
	// SaveAll saves feeds one by one and stops at the first failure.
	SaveAll(feeds []*Feed) error
	// LoadAll returns every feed ordered by title, entries newest first.
	LoadAll() ([]*Feed, error)
	// DeleteFeed removes the feed and all of its entries.
	DeleteFeed(id string) error
	// ExpireUnreadOlderThan removes unread entries published before cutoff
	// and returns how many were removed.
	ExpireUnreadOlderThan(cutoff time.Time) (int, error)
	Close() error
}

const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Open creates the database directory if needed and opens the backend
// selected in the configuration.
func Open(cfg *config.Config) (Store, error) {
	path := cfg.Database.Path
	if dir := filepath.Dir(path); path != config.MemoryPath && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	switch cfg.Database.Backend {
	case "", BackendBolt:
		return NewBoltStore(path, cfg.Database.Timeout)
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}

func saveAll(s Store, feeds []*Feed) error {
	for _, feed := range feeds {
		if err := s.SaveFeed(feed); err != nil {
			return err
		}
	}
	return nil
}
