// Package store persists appraisal runs: PostgreSQL when DATABASE_URL is
// set, a JSON file cache otherwise.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPoolNotInitialized is returned by repository calls made before InitDB.
var ErrPoolNotInitialized = errors.New("database pool not initialized")

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB opens the shared connection pool and creates the schema. Only the
// first call does any work.
func InitDB(ctx context.Context, databaseURL string) error {
	var err error
	once.Do(func() {
		if databaseURL == "" {
			err = errors.New("database url is empty")
			return
		}

		config, parseErr := pgxpool.ParseConfig(databaseURL)
		if parseErr != nil {
			err = fmt.Errorf("parse database config: %w", parseErr)
			return
		}

		p, connErr := pgxpool.NewWithConfig(ctx, config)
		if connErr != nil {
			err = fmt.Errorf("connect database: %w", connErr)
			return
		}
		if schemaErr := ensureSchema(ctx, p); schemaErr != nil {
			p.Close()
			err = schemaErr
			return
		}
		pool = p
	})
	return err
}

// GetPool returns the shared pool, or nil before InitDB succeeds.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the shared pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS appraisal_runs (
		id         UUID PRIMARY KEY,
		project_id TEXT NOT NULL,
		firr       NUMERIC(12,4),
		eirr       NUMERIC(12,4),
		track      TEXT NOT NULL,
		report     JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS appraisal_runs_project_idx
		ON appraisal_runs (project_id, created_at DESC)`,
}

func ensureSchema(ctx context.Context, p *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
