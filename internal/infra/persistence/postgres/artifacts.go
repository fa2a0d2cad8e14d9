// Package postgres provides a Postgres-backed report artifact store with the
// same revisioned payload semantics as the sqlite backend.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"feedstockcore/internal/reports"
	"feedstockcore/pkg/domain"
)

var _ reports.Artifacts = (*Artifacts)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/feedstockcore?sslmode=disable"
)

// Artifacts persists report payloads in a revision table. Saves insert a new
// revision; loads return the newest revision for the key.
type Artifacts struct {
	db *sql.DB
}

// NewArtifacts opens a Postgres connection using the provided DSN (falls back
// to defaultDSN) and ensures the revision table exists.
func NewArtifacts(ctx context.Context, dsn string) (*Artifacts, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS report_revisions (
		revision UUID PRIMARY KEY,
		grower TEXT NOT NULL,
		growing_cycle INTEGER NOT NULL,
		report_type TEXT NOT NULL,
		payload BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return nil, fmt.Errorf("create report_revisions table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS report_revisions_key
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
		`INSERT INTO report_revisions(revision, grower, growing_cycle, report_type, payload)
		 VALUES($1,$2,$3,$4,$5)`,
		uuid.NewString(), key.Grower, key.GrowingCycle, string(key.Type), data)
	if err != nil {
		return fmt.Errorf("insert revision for %s: %w", key.Type, err)
	}
	return nil
}

func (a *Artifacts) Load(ctx context.Context, key domain.ReportKey) ([]byte, error) {
	var payload []byte
	err := a.db.QueryRowContext(ctx,
		`SELECT payload FROM report_revisions
		 WHERE grower = $1 AND growing_cycle = $2 AND report_type = $3
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
