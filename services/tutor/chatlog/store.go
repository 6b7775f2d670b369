// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package chatlog records chat interactions for offline analysis.
//
// Records are written asynchronously: handlers enqueue without blocking
// and a background writer drains the queue into SQLite. Delivery is
// at-most-once; a full queue drops the record.
package chatlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one logged chat interaction.
type Record struct {
	UserID      string
	RequestType string
	UserQuery   string
	AIResponse  string
	CreatedAt   time.Time
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS chat_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	request_type TEXT NOT NULL DEFAULT 'text',
	user_query TEXT,
	ai_response TEXT,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_logs_user_id ON chat_logs (user_id);
`

// Store is the SQLite-backed interaction log.
//
// # Thread Safety
//
// Safe for concurrent use; database/sql pools connections internally.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the interaction log database.
//
// # Inputs
//
//   - path: SQLite database file path. Created if missing.
//
// # Outputs
//
//   - *Store: Ready-to-use store.
//   - error: Non-nil if the database cannot be opened or migrated.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat log database: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate chat log schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert writes one record.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_logs (user_id, request_type, user_query, ai_response, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.UserID, rec.RequestType, rec.UserQuery, rec.AIResponse, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat log record: %w", err)
	}
	return nil
}

// CountForUser returns how many records exist for a user. Used by tests
// and offline tooling.
func (s *Store) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_logs WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chat log records: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
