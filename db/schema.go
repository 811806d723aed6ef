package db

import (
	"context"
	"database/sql"
	"fmt"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS bracket_states (
	tournament_id TEXT PRIMARY KEY,
	state         JSONB NOT NULL,
	version       INTEGER NOT NULL DEFAULT 1,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS competitors (
	tournament_id TEXT NOT NULL,
	id            TEXT NOT NULL,
	name          TEXT NOT NULL,
	skill         DOUBLE PRECISION NOT NULL DEFAULT 0,
	placement     INTEGER,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (tournament_id, id)
);`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS bracket_states (
	tournament_id TEXT PRIMARY KEY,
	state         TEXT NOT NULL,
	version       INTEGER NOT NULL DEFAULT 1,
	updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS competitors (
	tournament_id TEXT NOT NULL,
	id            TEXT NOT NULL,
	name          TEXT NOT NULL,
	skill         REAL NOT NULL DEFAULT 0,
	placement     INTEGER,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (tournament_id, id)
);`

// CreateSchema creates the tables used by the service if they do not exist.
func CreateSchema(ctx context.Context, db *sql.DB, driver string) error {
	schema := postgresSchema
	if driver == "sqlite" {
		schema = sqliteSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
