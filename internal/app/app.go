package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sundayezeilo/shortlink/internal/config"
	"github.com/sundayezeilo/shortlink/internal/db/conn"
	"github.com/sundayezeilo/shortlink/internal/db/schema"
	"github.com/sundayezeilo/shortlink/internal/links"
	"github.com/sundayezeilo/shortlink/internal/metrics"
	"github.com/sundayezeilo/shortlink/internal/server"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *Store
	Metrics *metrics.Metrics
	Server  *server.Server
	Handler *links.Handler
}

// Store is the open link store: exactly one of DBPool and SQLDB is set.
type Store struct {
	Repository links.Repository
	DBPool     *pgxpool.Pool
	SQLDB      *sql.DB
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	if s.DBPool != nil {
		s.DBPool.Close()
	}
	if s.SQLDB != nil {
		return s.SQLDB.Close()
	}
	return nil
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	cfg, logger, err := Bootstrap()
	if err != nil {
		return nil, err
	}

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"service", cfg.Observability.ServiceName,
		"version", cfg.Observability.ServiceVersion,
	)

	store, err := OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var (
		m        *metrics.Metrics
		observer links.Observer
	)
	if cfg.Observability.MetricsEnabled {
		m = metrics.New(cfg.Observability.ServiceName, cfg.Observability.ServiceVersion)
		observer = m
	}

	svc := links.NewService(store.Repository, &links.ServiceConfig{
		CodeLength:    cfg.Links.CodeLength,
		ReservedCodes: ReservedCodes(cfg),
		Logger:        logger,
	})
	handler := links.NewHandler(links.HandlerConfig{
		Service:  svc,
		Logger:   logger,
		BaseURL:  cfg.Server.BaseURL,
		Observer: observer,
	})

	srv := server.New(cfg, logger, handler, store.Repository, m)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"driver", cfg.Database.Driver,
		"metrics", cfg.Observability.MetricsEnabled,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Metrics: m,
		Server:  srv,
		Handler: handler,
	}, nil
}

// Bootstrap loads the environment and configuration and builds the logger.
// Commands that only need the store start here instead of New.
func Bootstrap() (*config.Config, *slog.Logger, error) {
	if err := loadEnv(); err != nil {
		return nil, nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, setupLogger(cfg.App.LogLevel, cfg.Observability.ServiceName), nil
}

// OpenStore connects to the configured driver, applies the schema when
// AutoMigrate is set and returns the matching repository.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		sqlDB, err := conn.OpenSQLite(ctx, cfg.SQLiteDSN, logger)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := schema.MigrateSQLite(ctx, sqlDB); err != nil {
				sqlDB.Close()
				return nil, err
			}
			logger.Info("schema applied", "driver", cfg.Driver)
		}
		return &Store{Repository: links.NewSQLiteRepository(sqlDB, nil), SQLDB: sqlDB}, nil

	default:
		pool, err := conn.OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := schema.MigratePostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			logger.Info("schema applied", "driver", cfg.Driver)
		}
		return &Store{Repository: links.NewPostgresRepository(pool, nil), DBPool: pool}, nil
	}
}

// ReservedCodes lists the custom codes that would be shadowed by a fixed
// route: the /links and /healthz segments and, when enabled, the metrics path.
func ReservedCodes(cfg *config.Config) []string {
	reserved := []string{"links", "healthz"}
	if cfg.Observability.MetricsEnabled {
		first, _, _ := strings.Cut(strings.TrimPrefix(cfg.Observability.MetricsPath, "/"), "/")
		if first != "" {
			reserved = append(reserved, first)
		}
	}
	return reserved
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting",
		"port", a.Config.Server.Port,
		"base_url", a.Config.Server.BaseURL,
	)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.Logger.Info("database connection closed")
	}

	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// parseLevel maps a config log level to slog; unknown values fall back to info.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogger creates a structured JSON logger tagged with the service name.
func setupLogger(level, service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}
