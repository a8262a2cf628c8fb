// Package store provides storage backends for completed contact records.
//
// This file implements the flat JSON file store: one human-readable array of
// record objects, rewritten in full on every save.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/formflow/FormFlow/internal/models"
)

// DefaultDirPermissions defines the default permissions for store directories.
const DefaultDirPermissions = 0755

// JSONStore persists records as a single pretty-printed JSON array. The
// load-append-rewrite cycle is serialized by a mutex so concurrent session
// completions cannot lose records.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates a JSON file store at the configured path, initializing
// an empty array file on first use.
func NewJSONStore(opts ...Option) (*JSONStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("JSONStore file path not set")
		return nil, fmt.Errorf("JSON store file path not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create JSON store directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("%w: failed to create directory %s: %v", models.ErrStorageIO, dir, err)
	}

	s := &JSONStore{path: cfg.DSN}
	if _, err := os.Stat(cfg.DSN); os.IsNotExist(err) {
		if err := s.write([]models.ContactRecord{}); err != nil {
			return nil, err
		}
		slog.Debug("JSONStore initialized empty store", "path", cfg.DSN)
	}

	slog.Debug("JSONStore ready", "path", cfg.DSN)
	return s, nil
}

// SaveRecord appends a record by loading the full array, appending, and
// rewriting the file.
func (s *JSONStore) SaveRecord(rec models.ContactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	records = append(records, rec)
	if err := s.write(records); err != nil {
		return err
	}

	slog.Debug("JSONStore SaveRecord succeeded", "path", s.path, "count", len(records))
	return nil
}

// LoadAllRecords returns every saved record in save order.
func (s *JSONStore) LoadAllRecords() ([]models.ContactRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// RecordsByDate returns records with an appointment on the given date.
func (s *JSONStore) RecordsByDate(date string) ([]models.ContactRecord, error) {
	all, err := s.LoadAllRecords()
	if err != nil {
		return nil, err
	}
	return filterByDate(all, date), nil
}

func (s *JSONStore) Close() error { return nil }

// read loads the full record array. Caller must hold s.mu.
func (s *JSONStore) read() ([]models.ContactRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.ContactRecord{}, nil
		}
		slog.Error("JSONStore read failed", "error", err, "path", s.path)
		return nil, fmt.Errorf("%w: failed to read %s: %v", models.ErrStorageIO, s.path, err)
	}

	var records []models.ContactRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Error("JSONStore unmarshal failed", "error", err, "path", s.path)
		return nil, fmt.Errorf("%w: corrupt record file %s: %v", models.ErrStorageIO, s.path, err)
	}
	if records == nil {
		records = []models.ContactRecord{}
	}
	return records, nil
}

// write rewrites the full record array atomically via a temp file rename.
// Caller must hold s.mu (or be constructing the store).
func (s *JSONStore) write(records []models.ContactRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal records: %v", models.ErrStorageIO, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		slog.Error("JSONStore write failed", "error", err, "path", tmp)
		return fmt.Errorf("%w: failed to write %s: %v", models.ErrStorageIO, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		slog.Error("JSONStore rename failed", "error", err, "path", s.path)
		return fmt.Errorf("%w: failed to replace %s: %v", models.ErrStorageIO, s.path, err)
	}
	return nil
}
