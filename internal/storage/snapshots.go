// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists fetched audit chains locally.
//
// Each time the ledger view refreshes, the chain can be snapshotted into a
// local SQLite database. Auditors get an offline record of what the service
// reported, with the local verification verdict attached at fetch time.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jeranaias/qvault-tui/internal/ledger"
)

// ErrNotFound indicates no snapshot matched.
var ErrNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY,
	taken_at    INTEGER NOT NULL,
	block_count INTEGER NOT NULL,
	verified    INTEGER NOT NULL,
	chain_json  BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at DESC);
`

// Snapshot is one recorded ledger fetch.
type Snapshot struct {
	ID         string
	TakenAt    time.Time
	BlockCount int
	// Verified records the local chain verification verdict at fetch time.
	Verified bool
	Chain    []ledger.Block
}

// SnapshotStore is an append-only record of fetched audit chains.
type SnapshotStore struct {
	db *sql.DB
}

// OpenSnapshotStore opens (creating if needed) the snapshot database.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
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

	return &SnapshotStore{db: db}, nil
}

// Close releases the database.
func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a fetched chain with its local verification verdict and
// returns the snapshot ID. Snapshots are never updated or deleted.
func (s *SnapshotStore) Record(chain []ledger.Block, verified bool) (string, error) {
	payload, err := json.Marshal(chain)
	if err != nil {
		return "", fmt.Errorf("failed to encode chain: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		"INSERT INTO snapshots (id, taken_at, block_count, verified, chain_json) VALUES (?, ?, ?, ?, ?)",
		id, time.Now().Unix(), len(chain), boolToInt(verified), payload,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record snapshot: %w", err)
	}
	return id, nil
}

// Latest returns the most recent snapshot, or ErrNotFound.
func (s *SnapshotStore) Latest() (*Snapshot, error) {
	row := s.db.QueryRow(
		"SELECT id, taken_at, block_count, verified, chain_json FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT 1",
	)
	return scanSnapshot(row)
}

// Get returns the snapshot with the given ID, or ErrNotFound.
func (s *SnapshotStore) Get(id string) (*Snapshot, error) {
	row := s.db.QueryRow(
		"SELECT id, taken_at, block_count, verified, chain_json FROM snapshots WHERE id = ?", id,
	)
	return scanSnapshot(row)
}

// List returns snapshot metadata newest-first, without chain payloads.
func (s *SnapshotStore) List(limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		"SELECT id, taken_at, block_count, verified FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var takenAt int64
		var verified int
		if err := rows.Scan(&snap.ID, &takenAt, &snap.BlockCount, &verified); err != nil {
			return nil, err
		}
		snap.TakenAt = time.Unix(takenAt, 0)
		snap.Verified = verified != 0
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Count returns the number of recorded snapshots.
func (s *SnapshotStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n)
	return n, err
}

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var snap Snapshot
	var takenAt int64
	var verified int
	var payload []byte
	err := row.Scan(&snap.ID, &takenAt, &snap.BlockCount, &verified, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	snap.TakenAt = time.Unix(takenAt, 0)
	snap.Verified = verified != 0
	if err := json.Unmarshal(payload, &snap.Chain); err != nil {
		return nil, fmt.Errorf("corrupt snapshot %s: %w", snap.ID, err)
	}
	return &snap, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
