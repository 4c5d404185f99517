package waf

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/aridelmo/argus/internal/models"
)

// WhitelistStore holds request bodies manually exempted after review. Lookups
// are exact-match against an in-memory snapshot; the table is the source of
// truth.
type WhitelistStore struct {
	db *gorm.DB

	mu     sync.RWMutex
	bodies map[string]struct{}
}

// NewWhitelistStore creates a WhitelistStore and loads persisted entries.
func NewWhitelistStore(db *gorm.DB) (*WhitelistStore, error) {
	s := &WhitelistStore{db: db, bodies: make(map[string]struct{})}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory snapshot with the table contents.
func (s *WhitelistStore) Reload() error {
	var entries []models.WhitelistEntry
	if err := s.db.Find(&entries).Error; err != nil {
		return err
	}

	bodies := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		bodies[e.Body] = struct{}{}
	}

	s.mu.Lock()
	s.bodies = bodies
	s.mu.Unlock()
	return nil
}

// Add persists a whitelist entry sourced from an overridden audit record.
// Duplicate bodies are stored once in the snapshot but every override is
// persisted for traceability.
func (s *WhitelistStore) Add(sourceRecordUUID, body string) error {
	entry := models.WhitelistEntry{
		SourceRecordUUID: sourceRecordUUID,
		Body:             body,
		CreatedAt:        time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return err
	}

	s.mu.Lock()
	s.bodies[body] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Contains reports whether the exact body has been whitelisted.
func (s *WhitelistStore) Contains(body string) bool {
	if body == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bodies[body]
	return ok
}

// List returns all persisted entries, newest first.
func (s *WhitelistStore) List() ([]models.WhitelistEntry, error) {
	var entries []models.WhitelistEntry
	if err := s.db.Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
