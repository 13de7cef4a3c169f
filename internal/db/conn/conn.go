// Package conn opens the link store connections named by the database config.
package conn

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libsql:// and wss:// DSNs
	_ "modernc.org/sqlite"                              // local files and :memory:

	"github.com/sundayezeilo/shortlink/internal/config"
)

const (
	driverSQLite = "sqlite"
	driverLibSQL = "libsql"
)

// OpenPostgres creates a pgx pool from cfg and verifies it with a ping.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	logger.Info("connecting to database",
		"driver", config.DriverPostgres,
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return pool, nil
}

// SQLiteDriver picks the database/sql driver for dsn: libsql for remote Turso
// URLs, the embedded sqlite driver for everything else.
func SQLiteDriver(dsn string) string {
	if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") {
		return driverLibSQL
	}
	return driverSQLite
}

// OpenSQLite opens dsn with the driver chosen by SQLiteDriver and verifies it
// with a ping.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	driver := SQLiteDriver(dsn)

	logger.Info("connecting to database", "driver", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == driverSQLite {
		// One writer at a time; also keeps :memory: to a single database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}
