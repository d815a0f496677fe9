package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SnapshotStore persists world snapshots in a local sqlite database. Each
// save appends a new revision; loads read the most recent one and reject
// malformed documents without side effects.
type SnapshotStore struct {
	db *sql.DB
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	revision TEXT NOT NULL,
	tick INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	doc BLOB NOT NULL
);`

// OpenSnapshotStore opens (or creates) the snapshot database at path.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize snapshot schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save appends a snapshot revision and returns its identifier.
func (s *SnapshotStore) Save(doc SnapshotDocument) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("snapshot store is not open")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	revision := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO snapshots (revision, tick, created_at, doc) VALUES (?, ?, ?, ?)`,
		revision, int64(doc.Tick), time.Now().UTC().Format(time.RFC3339Nano), data,
	)
	if err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return revision, nil
}

// LoadLatest reads the most recent snapshot. It returns (nil, nil) when the
// store is empty; a stored document that fails to decode is an error and
// nothing is mutated.
func (s *SnapshotStore) LoadLatest() (*SnapshotDocument, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("snapshot store is not open")
	}
	var data []byte
	err := s.db.QueryRow(`SELECT doc FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	doc := SnapshotDocument{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &doc, nil
}

// Prune keeps the newest n revisions and drops the rest.
func (s *SnapshotStore) Prune(keep int) error {
	if s == nil || s.db == nil {
		return errors.New("snapshot store is not open")
	}
	if keep < 1 {
		keep = 1
	}
	_, err := s.db.Exec(
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	return err
}
