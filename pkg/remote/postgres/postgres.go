// Package postgres stores expenses and savings entries in a PostgreSQL
// database. It serves as the remote side of the fallback repositories
// and provisions its own tables on startup.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Provision creates the remote tables when they do not exist yet. It is
// safe to run on every startup.
func (s *Store) Provision(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			user_key TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			recurring BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_key, date)`,
		`CREATE TABLE IF NOT EXISTS savings (
			id TEXT PRIMARY KEY,
			user_key TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			is_auto_rollover BOOLEAN NOT NULL DEFAULT FALSE,
			from_month TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_savings_user_date ON savings (user_key, date)`,
	}
	for _, statement := range statements {
		if _, err := s.pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("could not provision remote schema: %w", err)
		}
	}
	log.Debug("remote postgres schema provisioned")
	return nil
}
