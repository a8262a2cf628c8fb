// Package store provides storage backends for completed contact records.
//
// This file implements the PostgreSQL-backed record store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/formflow/FormFlow/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists records in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveRecord(rec models.ContactRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO records (name, email, phone, appointment_date) VALUES ($1, $2, $3, $4)`,
		rec.Name, rec.Email, rec.Phone, nilIfNoDate(rec.AppointmentDate),
	)
	if err != nil {
		slog.Error("PostgresStore SaveRecord failed", "error", err, "email", rec.Email)
		return fmt.Errorf("%w: failed to insert record: %v", models.ErrStorageIO, err)
	}
	slog.Debug("PostgresStore SaveRecord succeeded", "email", rec.Email)
	return nil
}

func (s *PostgresStore) LoadAllRecords() ([]models.ContactRecord, error) {
	rows, err := s.db.Query(`SELECT name, email, phone, appointment_date FROM records ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore LoadAllRecords query failed", "error", err)
		return nil, fmt.Errorf("%w: failed to query records: %v", models.ErrStorageIO, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) RecordsByDate(date string) ([]models.ContactRecord, error) {
	rows, err := s.db.Query(`SELECT name, email, phone, appointment_date FROM records WHERE appointment_date = $1 ORDER BY id`, date)
	if err != nil {
		slog.Error("PostgresStore RecordsByDate query failed", "error", err, "date", date)
		return nil, fmt.Errorf("%w: failed to query records by date: %v", models.ErrStorageIO, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
