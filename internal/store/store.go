// Package store provides storage backends for completed contact records.
//
// The primary backend is a flat JSON file rewritten in full on every save;
// SQLite and PostgreSQL backends are available for deployments that already
// run a database. An in-memory store supports tests.
package store

import (
	"sync"

	"github.com/formflow/FormFlow/internal/models"
)

// RecordStore persists completed contact records in save order.
type RecordStore interface {
	// SaveRecord appends one record. It must be safe for concurrent use and
	// must never drop previously saved records.
	SaveRecord(rec models.ContactRecord) error

	// LoadAllRecords returns every saved record in save order. A fresh store
	// returns an empty slice.
	LoadAllRecords() ([]models.ContactRecord, error)

	// RecordsByDate returns records whose appointment date equals the given
	// YYYY-MM-DD date.
	RecordsByDate(date string) ([]models.ContactRecord, error)

	// Close releases any underlying resources.
	Close() error
}

// InMemoryStore is a simple in-memory record store for tests and ephemeral runs.
type InMemoryStore struct {
	mu      sync.Mutex
	records []models.ContactRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) SaveRecord(rec models.ContactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *InMemoryStore) LoadAllRecords() ([]models.ContactRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ContactRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *InMemoryStore) RecordsByDate(date string) ([]models.ContactRecord, error) {
	all, err := s.LoadAllRecords()
	if err != nil {
		return nil, err
	}
	return filterByDate(all, date), nil
}

func (s *InMemoryStore) Close() error { return nil }

// filterByDate selects records whose appointment date matches.
func filterByDate(records []models.ContactRecord, date string) []models.ContactRecord {
	matched := []models.ContactRecord{}
	for _, rec := range records {
		if rec.AppointmentDate != nil && *rec.AppointmentDate == date {
			matched = append(matched, rec)
		}
	}
	return matched
}
