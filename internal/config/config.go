package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	App           AppConfig
	Observability ObservabilityConfig
	Links         LinksConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" required:"true"`
	Host            string        `envconfig:"SERVER_HOST" required:"true"`
	BaseURL         string        `envconfig:"SERVER_BASE_URL" required:"true"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" required:"true"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" required:"true"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" required:"true"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" required:"true"`
	CORSOrigins     []string      `envconfig:"SERVER_CORS_ORIGINS"` // empty allows all
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if strings.HasSuffix(c.BaseURL, "/") {
		return fmt.Errorf("base URL must not end with a slash")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// DatabaseConfig holds link store configuration. The postgres fields are only
// required when Driver is postgres; SQLiteDSN is only required for sqlite.
type DatabaseConfig struct {
	Driver      string `envconfig:"DB_DRIVER" default:"postgres"`
	Host        string `envconfig:"DB_HOST"`
	Port        string `envconfig:"DB_PORT"`
	User        string `envconfig:"DB_USER"`
	Password    string `envconfig:"DB_PASSWORD"`
	Name        string `envconfig:"DB_NAME"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns    int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	SQLiteDSN   string `envconfig:"DB_SQLITE_DSN"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		return c.validatePostgres()
	case DriverSQLite:
		if c.SQLiteDSN == "" {
			return fmt.Errorf("sqlite DSN cannot be empty")
		}
		return nil
	default:
		return fmt.Errorf("invalid driver: %s (must be one of: postgres, sqlite)", c.Driver)
	}
}

func (c *DatabaseConfig) validatePostgres() error {
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.User == "" {
		return fmt.Errorf("user cannot be empty")
	}
	if c.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max connections must be positive")
	}
	if c.MinConns <= 0 {
		return fmt.Errorf("min connections must be positive")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min connections (%d) cannot be greater than max connections (%d)", c.MinConns, c.MaxConns)
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("invalid SSL mode: %s (must be one of: disable, require, verify-ca, verify-full)", c.SSLMode)
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" required:"true"`   // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" required:"true"` // debug, info, warn, error
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// ObservabilityConfig holds metrics and service identity configuration.
type ObservabilityConfig struct {
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	MetricsPath    string `envconfig:"METRICS_PATH" default:"/metrics"`
	ServiceName    string `envconfig:"SERVICE_NAME" default:"shortlink"`
	ServiceVersion string `envconfig:"SERVICE_VERSION" default:"dev"`
}

// Validate validates the observability configuration.
func (c *ObservabilityConfig) Validate() error {
	if c.MetricsEnabled {
		if !strings.HasPrefix(c.MetricsPath, "/") {
			return fmt.Errorf("metrics path must start with a slash, got %q", c.MetricsPath)
		}
		if c.MetricsPath == "/" {
			return fmt.Errorf("metrics path cannot be the root path")
		}
	}
	if c.ServiceName == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	return nil
}

// LinksConfig holds short-code issuance settings.
type LinksConfig struct {
	CodeLength int `envconfig:"LINKS_CODE_LENGTH" default:"6"`
}

// Validate validates the links configuration.
func (c *LinksConfig) Validate() error {
	if c.CodeLength < 4 || c.CodeLength > 12 {
		return fmt.Errorf("code length must be between 4 and 12, got %d", c.CodeLength)
	}
	return nil
}

// Load loads configuration from environment variables only.
// (Do .env loading in internal/app, not here.)
func Load() (*Config, error) {
	cfg := &Config{}

	sections := []struct {
		name string
		spec any
		run  func() error
	}{
		{"Server", &cfg.Server, cfg.Server.Validate},
		{"Database", &cfg.Database, cfg.Database.Validate},
		{"App", &cfg.App, cfg.App.Validate},
		{"Observability", &cfg.Observability, cfg.Observability.Validate},
		{"Links", &cfg.Links, cfg.Links.Validate},
	}

	for _, s := range sections {
		if err := envconfig.Process("", s.spec); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
		if err := s.run(); err != nil {
			return nil, fmt.Errorf("invalid %s config: %w", s.name, err)
		}
	}

	return cfg, nil
}
