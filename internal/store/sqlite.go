// Package store provides storage backends for completed contact records.
//
// This file implements the SQLite-backed record store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/formflow/FormFlow/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists records in an SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveRecord(rec models.ContactRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO records (name, email, phone, appointment_date) VALUES (?, ?, ?, ?)`,
		rec.Name, rec.Email, rec.Phone, nilIfNoDate(rec.AppointmentDate),
	)
	if err != nil {
		slog.Error("SQLiteStore SaveRecord failed", "error", err, "email", rec.Email)
		return fmt.Errorf("%w: failed to insert record: %v", models.ErrStorageIO, err)
	}
	slog.Debug("SQLiteStore SaveRecord succeeded", "email", rec.Email)
	return nil
}

func (s *SQLiteStore) LoadAllRecords() ([]models.ContactRecord, error) {
	rows, err := s.db.Query(`SELECT name, email, phone, appointment_date FROM records ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteStore LoadAllRecords query failed", "error", err)
		return nil, fmt.Errorf("%w: failed to query records: %v", models.ErrStorageIO, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *SQLiteStore) RecordsByDate(date string) ([]models.ContactRecord, error) {
	rows, err := s.db.Query(`SELECT name, email, phone, appointment_date FROM records WHERE appointment_date = ? ORDER BY id`, date)
	if err != nil {
		slog.Error("SQLiteStore RecordsByDate query failed", "error", err, "date", date)
		return nil, fmt.Errorf("%w: failed to query records by date: %v", models.ErrStorageIO, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
