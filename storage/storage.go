// Package storage provides the durable key-value substrate the page and link
// collections are serialized into. Each collection lives under a fixed key as
// one JSON blob, rewritten in full on every change.
package storage

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"bookmarket/models"
)

// Fixed storage keys for the persisted collections.
const (
	KeyPages       = "bookmarket_pages"
	KeyLinks       = "bookmarket_links"
	KeyDefaultLink = "bookmarket_default_link"
)

// KV is a minimal string key-value store. Get reports absence via the boolean
// rather than an error.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// GormKV persists entries in the kv_entries table.
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (s *GormKV) Get(key string) (string, bool) {
	var entry models.KVEntry
	if err := s.db.Where("key = ?", key).First(&entry).Error; err != nil {
		return "", false
	}
	return entry.Value, true
}

func (s *GormKV) Set(key, value string) error {
	var entry models.KVEntry
	err := s.db.Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = models.KVEntry{Key: key, Value: value}
		return s.db.Create(&entry).Error
	}
	if err != nil {
		return err
	}

	entry.Value = value
	return s.db.Save(&entry).Error
}

func (s *GormKV) Delete(key string) error {
	return s.db.Where("key = ?", key).Delete(&models.KVEntry{}).Error
}

// MemoryKV is an in-memory KV used in tests.
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]string

	// FailWrites makes Set return an error, for exercising the
	// caught-and-logged persistence failure path.
	FailWrites bool
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]string)}
}

func (s *MemoryKV) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	return value, ok
}

func (s *MemoryKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return errors.New("storage write refused")
	}
	s.entries[key] = value
	return nil
}

func (s *MemoryKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
