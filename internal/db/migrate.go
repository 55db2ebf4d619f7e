package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables and secondary indexes on startup so a
// fresh database works without a separate migration step. The composite
// indexes back the per-user completed/priority/due-date queries.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL CHECK (length(title) BETWEEN 1 AND 100),
			description TEXT NOT NULL DEFAULT '' CHECK (length(description) <= 500),
			due_date TIMESTAMPTZ,
			priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low','medium','high')),
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			user_id UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_completed ON tasks (user_id, completed)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_priority ON tasks (user_id, priority)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_due_date ON tasks (user_id, due_date)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
