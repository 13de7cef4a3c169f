// Package schema holds the links table DDL for each supported store and
// applies it at startup.
package schema

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed postgres.sql
var Postgres string

//go:embed sqlite.sql
var SQLite string

// MigratePostgres creates the links table and its indexes if missing.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Postgres); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

// MigrateSQLite creates the links table and its indexes if missing.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, SQLite); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}
	return nil
}
