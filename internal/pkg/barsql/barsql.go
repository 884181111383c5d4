// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package barsql persists OHLCV bar buckets as SQLite tables.
//
// One table per bucket, named by the bucket key. Tables are replaced
// wholesale inside a transaction (drop, create, insert), so an interrupted
// write never leaves a table that would pass a later existence check with
// partial content.
package barsql

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bufdev/twsctl/internal/twsctl/twsctlbar"
	_ "modernc.org/sqlite"
)

// Store is the interface for the SQLite bucket backend.
type Store interface {
	// TableNames returns the names of all bucket tables in the database.
	//
	// This is intended to be called once at startup to seed the bucket
	// registry; per-bucket existence checks are answered from the registry,
	// not from the database.
	TableNames() ([]string, error)
	// ReplaceBucket replaces the table for the bucket with the given bars.
	ReplaceBucket(bucketName string, bars []twsctlbar.Bar) error
	// EarliestBarTime returns the earliest bar timestamp in the bucket table.
	EarliestBarTime(bucketName string) (time.Time, error)
	// Close closes the database.
	Close() error
}

// NewStore opens (or creates) the SQLite database at dbFilePath.
func NewStore(logger *slog.Logger, dbFilePath string) (Store, error) {
	db, err := sql.Open("sqlite", dbFilePath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// WAL mode so external readers don't block bucket writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	logger.Debug("sqlite store opened", "path", dbFilePath)
	return &store{
		db:     db,
		logger: logger,
	}, nil
}

// *** PRIVATE ***

type store struct {
	db     *sql.DB
	logger *slog.Logger
}

func (s *store) TableNames() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *store) ReplaceBucket(bucketName string, bars []twsctlbar.Bar) (retErr error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			retErr = errors.Join(retErr, tx.Rollback())
		}
	}()
	// Bucket names contain "-" so they must always be quoted as identifiers.
	quoted := quoteIdentifier(bucketName)
	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoted); err != nil {
		return fmt.Errorf("dropping table %s: %w", bucketName, err)
	}
	if _, err := tx.Exec("CREATE TABLE " + quoted + ` (
		date   TEXT NOT NULL,
		open   REAL NOT NULL,
		high   REAL NOT NULL,
		low    REAL NOT NULL,
		close  REAL NOT NULL,
		volume REAL NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating table %s: %w", bucketName, err)
	}
	stmt, err := tx.Prepare("INSERT INTO " + quoted + " (date, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", bucketName, err)
	}
	defer stmt.Close()
	for _, bar := range bars {
		if _, err := stmt.Exec(
			bar.Time.UTC().Format(time.RFC3339),
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
		); err != nil {
			return fmt.Errorf("inserting into %s: %w", bucketName, err)
		}
	}
	return tx.Commit()
}

func (s *store) EarliestBarTime(bucketName string) (time.Time, error) {
	var dateStr sql.NullString
	if err := s.db.QueryRow("SELECT MIN(date) FROM " + quoteIdentifier(bucketName)).Scan(&dateStr); err != nil {
		return time.Time{}, fmt.Errorf("querying earliest bar in %s: %w", bucketName, err)
	}
	if !dateStr.Valid {
		return time.Time{}, fmt.Errorf("table %s is empty", bucketName)
	}
	barTime, err := time.Parse(time.RFC3339, dateStr.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing earliest bar date in %s: %w", bucketName, err)
	}
	return barTime, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

// quoteIdentifier quotes a SQLite identifier, escaping embedded quotes.
func quoteIdentifier(name string) string {
	quoted := `"`
	for _, r := range name {
		if r == '"' {
			quoted += `""`
			continue
		}
		quoted += string(r)
	}
	return quoted + `"`
}
