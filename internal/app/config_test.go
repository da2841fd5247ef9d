package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, "edutrack", cfg.Database.Postgres.Database)

	require.Equal(t, "file-secret-with-at-least-32-bytes!", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.Equal(t, "admin@example.com", cfg.Admin.Email)
	require.Equal(t, "Bootstrap Admin", cfg.Admin.FullName)

	require.Equal(t, 14, cfg.Logs.RetentionDays)
	require.False(t, cfg.Logs.CaptureAPI)
	require.Equal(t, "@hourly", cfg.Logs.CleanupSchedule)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/edutrack.sqlite", cfg.Database.Path)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, 90, cfg.Logs.RetentionDays)
	require.True(t, cfg.Logs.CaptureAPI)
	require.Equal(t, "@daily", cfg.Logs.CleanupSchedule)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8000},
			Auth:   AuthConfig{JWT: JWTSettings{Secret: "validation-secret-with-32-bytes!!"}},
			Logs:   LogsConfig{RetentionDays: 30},
		}
	}

	require.NoError(t, base().Validate())

	missingSecret := base()
	missingSecret.Auth.JWT.Secret = "  "
	require.Error(t, missingSecret.Validate())

	shortSecret := base()
	shortSecret.Auth.JWT.Secret = "too-short"
	require.Error(t, shortSecret.Validate())

	badPort := base()
	badPort.Server.Port = 0
	require.Error(t, badPort.Validate())

	badRetention := base()
	badRetention.Logs.RetentionDays = 0
	require.Error(t, badRetention.Validate())
}

func TestDatabaseConfigStoreAdapter(t *testing.T) {
	cfg := DatabaseConfig{
		Driver: "PostgreSQL",
		Postgres: DBAuthConfig{
			Host:     "db.example.com",
			Port:     5433,
			Database: "edutrack",
			Username: "edutrack",
			Password: "s3cret",
		},
	}

	store := cfg.StoreConfig()
	require.Equal(t, "postgres", store.Driver)
	require.Equal(t, "db.example.com", store.Host)
	require.Equal(t, 5433, store.Port)
	require.Equal(t, "edutrack", store.Name)
	require.Equal(t, "edutrack", store.User)
	require.Equal(t, "s3cret", store.Password)

	sqlite := DatabaseConfig{Driver: "sqlite", Path: "./data/app.sqlite"}
	store = sqlite.StoreConfig()
	require.Equal(t, "sqlite", store.Driver)
	require.Equal(t, "./data/app.sqlite", store.Path)
}
