// Package sqlite provides a SQLite-backed report artifact store. Payloads are
// stored as revisioned CSV blobs, one row per save.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"feedstockcore/internal/reports"
	"feedstockcore/pkg/domain"
)

var _ reports.Artifacts = (*Artifacts)(nil)

// Artifacts persists report payloads in a single revision table. Saves insert
// a new revision; loads return the newest revision for the key.
type Artifacts struct {
	db *sql.DB
}

// NewArtifacts opens (creating if needed) a SQLite database at path and
// ensures the revision table exists.
func NewArtifacts(path string) (*Artifacts, error) {
	if path == "" {
		path = "feedstockcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS report_revisions (
		revision TEXT PRIMARY KEY,
		grower TEXT NOT NULL,
		growing_cycle INTEGER NOT NULL,
		report_type TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create report_revisions table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS report_revisions_key
		ON report_revisions (grower, growing_cycle, report_type, created_at)`); err != nil {
		return nil, fmt.Errorf("create report_revisions index: %w", err)
	}
	return &Artifacts{db: db}, nil
}

// Close releases the underlying database handle.
func (a *Artifacts) Close() error { return a.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (a *Artifacts) DB() *sql.DB { return a.db }

func (a *Artifacts) Save(ctx context.Context, key domain.ReportKey, data []byte) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO report_revisions(revision, grower, growing_cycle, report_type, payload, created_at)
		 VALUES(?,?,?,?,?,?)`,
		uuid.NewString(), key.Grower, key.GrowingCycle, string(key.Type), data,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert revision for %s: %w", key.Type, err)
	}
	return nil
}

func (a *Artifacts) Load(ctx context.Context, key domain.ReportKey) ([]byte, error) {
	var payload []byte
	err := a.db.QueryRowContext(ctx,
		`SELECT payload FROM report_revisions
		 WHERE grower = ? AND growing_cycle = ? AND report_type = ?
		 ORDER BY created_at DESC, revision DESC LIMIT 1`,
		key.Grower, key.GrowingCycle, string(key.Type)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select revision for %s: %w", key.Type, err)
	}
	return payload, nil
}
