// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store closed")
)

// =============================================================================
// DEVICE STORE INTERFACE
// =============================================================================

// DeviceStore is the device's durable string key-value store. All session
// state persists through this interface; missing keys are reported via the
// ok boolean, not an error.
type DeviceStore interface {
	// Set writes a single key.
	Set(ctx context.Context, key, value string) error
	// Get reads a single key. ok is false when the key does not exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Remove deletes a single key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// Clear deletes every key.
	Clear(ctx context.Context) error
	// MultiSet writes all pairs in one transaction.
	MultiSet(ctx context.Context, pairs map[string]string) error
	// MultiGet reads the given keys; absent keys are simply missing from
	// the returned map.
	MultiGet(ctx context.Context, keys []string) (map[string]string, error)
	// Close releases the store.
	Close() error
}

// =============================================================================
// SQLITE DEVICE STORE
// =============================================================================

// SQLiteStore implements DeviceStore on a single-table SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ DeviceStore = (*SQLiteStore)(nil)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// OpenSQLite opens (creating if necessary) the key-value database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Set writes a single key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Get reads a single key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Remove deletes a single key.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Clear deletes every key.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// MultiSet writes all pairs in one transaction so the session fields land
// together or not at all.
func (s *SQLiteStore) MultiSet(ctx context.Context, pairs map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin multiSet: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return fmt.Errorf("prepare multiSet: %w", err)
	}
	defer stmt.Close()

	for key, value := range pairs {
		if _, err := stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("multiSet %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// MultiGet reads the given keys.
func (s *SQLiteStore) MultiGet(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		value, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			result[key] = value
		}
	}
	return result, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
