// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/neural-tui/internal/gateway"
)

// =============================================================================
// SCHEMA
// =============================================================================

// schema holds the cached sidebar listing. Position preserves the
// backend's ordering (newest first) across restarts.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id        TEXT PRIMARY KEY,
    title     TEXT NOT NULL,
    position  INTEGER NOT NULL,
    cached_at INTEGER NOT NULL
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_sessions_position ON sessions(position);
`

// =============================================================================
// SESSION INDEX
// =============================================================================

// SessionIndex is the on-disk sidebar cache.
type SessionIndex struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*SessionIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SessionIndex{db: db}, nil
}

// Close releases the database.
func (s *SessionIndex) Close() error {
	return s.db.Close()
}

// ReplaceAll overwrites the cache with a fresh listing from the backend.
func (s *SessionIndex) ReplaceAll(sessions []gateway.SessionInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO sessions (id, title, position, cached_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i, sess := range sessions {
		if _, err := stmt.Exec(sess.ID, sess.Title, i, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns the cached listing in backend order.
func (s *SessionIndex) List() ([]gateway.SessionInfo, error) {
	rows, err := s.db.Query(`SELECT id, title FROM sessions ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []gateway.SessionInfo
	for rows.Next() {
		var sess gateway.SessionInfo
		if err := rows.Scan(&sess.ID, &sess.Title); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// UpdateTitle records a backend-generated title without waiting for the
// next full listing.
func (s *SessionIndex) UpdateTitle(id, title string) error {
	_, err := s.db.Exec(`UPDATE sessions SET title = ? WHERE id = ?`, title, id)
	return err
}

// Remove drops one session from the cache after a confirmed deletion.
func (s *SessionIndex) Remove(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}
