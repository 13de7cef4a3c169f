package config

import (
	"os"
	"testing"
	"time"
)

func baseEnv() map[string]string {
	return map[string]string{
		"SERVER_PORT":             "8080",
		"SERVER_HOST":             "0.0.0.0",
		"SERVER_BASE_URL":         "http://localhost:8080",
		"SERVER_READ_TIMEOUT":     "10s",
		"SERVER_WRITE_TIMEOUT":    "10s",
		"SERVER_IDLE_TIMEOUT":     "120s",
		"SERVER_SHUTDOWN_TIMEOUT": "30s",

		"DB_DRIVER":    "postgres",
		"DB_HOST":      "localhost",
		"DB_PORT":      "5432",
		"DB_USER":      "testuser",
		"DB_PASSWORD":  "testpass",
		"DB_NAME":      "testdb",
		"DB_SSLMODE":   "disable",
		"DB_MAX_CONNS": "25",
		"DB_MIN_CONNS": "5",

		"APP_ENV":   "test",
		"LOG_LEVEL": "debug",

		"METRICS_ENABLED": "true",
		"SERVICE_NAME":    "shortlink-test",
		"SERVICE_VERSION": "1.0.0",
	}
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	os.Clearenv()
	for key, value := range env {
		t.Setenv(key, value)
	}
}

func TestLoad_Success(t *testing.T) {
	setEnv(t, baseEnv())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("Server.BaseURL = %s", cfg.Server.BaseURL)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 0 {
		t.Errorf("Server.CORSOrigins = %v, want empty", cfg.Server.CORSOrigins)
	}

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("Database.Driver = %s, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("Database.MaxConns = %d, want 25", cfg.Database.MaxConns)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("Database.AutoMigrate = false, want default true")
	}

	if cfg.App.Environment != "test" {
		t.Errorf("App.Environment = %s, want test", cfg.App.Environment)
	}
	if !cfg.Observability.MetricsEnabled {
		t.Error("Observability.MetricsEnabled = false, want true")
	}
	if cfg.Observability.MetricsPath != "/metrics" {
		t.Errorf("Observability.MetricsPath = %s, want /metrics", cfg.Observability.MetricsPath)
	}
	if cfg.Links.CodeLength != 6 {
		t.Errorf("Links.CodeLength = %d, want 6", cfg.Links.CodeLength)
	}
}

func TestLoad_SQLiteDriver(t *testing.T) {
	setEnv(t, map[string]string{
		"SERVER_PORT":             "8080",
		"SERVER_HOST":             "127.0.0.1",
		"SERVER_BASE_URL":         "http://localhost:8080",
		"SERVER_READ_TIMEOUT":     "5s",
		"SERVER_WRITE_TIMEOUT":    "5s",
		"SERVER_IDLE_TIMEOUT":     "60s",
		"SERVER_SHUTDOWN_TIMEOUT": "10s",
		"SERVER_CORS_ORIGINS":     "https://a.example,https://b.example",

		"DB_DRIVER":     "sqlite",
		"DB_SQLITE_DSN": "file:links.db",

		"APP_ENV":   "development",
		"LOG_LEVEL": "info",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.SQLiteDSN != "file:links.db" {
		t.Errorf("Database.SQLiteDSN = %s", cfg.Database.SQLiteDSN)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoad_MissingRequiredVariable(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "SERVER_BASE_URL", "DB_HOST", "DB_NAME", "APP_ENV", "LOG_LEVEL"} {
		t.Run("missing "+key, func(t *testing.T) {
			env := baseEnv()
			delete(env, key)
			setEnv(t, env)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail when %s is missing", key)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid duration", "SERVER_READ_TIMEOUT", "invalid"},
		{"invalid int", "DB_MAX_CONNS", "not-a-number"},
		{"invalid bool", "METRICS_ENABLED", "maybe"},
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"unknown env", "APP_ENV", "qa"},
		{"unknown log level", "LOG_LEVEL", "trace"},
		{"bad ssl mode", "DB_SSLMODE", "prefer"},
		{"trailing slash base url", "SERVER_BASE_URL", "http://localhost:8080/"},
		{"root metrics path", "METRICS_PATH", "/"},
		{"relative metrics path", "METRICS_PATH", "metrics"},
		{"code too short", "LINKS_CODE_LENGTH", "2"},
		{"code too long", "LINKS_CODE_LENGTH", "40"},
		{"min above max conns", "DB_MIN_CONNS", "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			env[tt.envVar] = tt.value
			setEnv(t, env)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail when %s=%q", tt.envVar, tt.value)
			}
		})
	}
}

func TestDatabaseConfig_Validate_SQLiteRequiresDSN(t *testing.T) {
	c := DatabaseConfig{Driver: DriverSQLite}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() expected error for empty sqlite DSN")
	}

	c.SQLiteDSN = ":memory:"
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host:     "testhost",
		Port:     "5432",
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		SSLMode:  "disable",
	}

	expected := "host=testhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if got := db.ConnectionString(); got != expected {
		t.Errorf("ConnectionString() = %s, want %s", got, expected)
	}
}
