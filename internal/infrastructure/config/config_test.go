package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "agricred-intake", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Archive.Driver)
		assert.Equal(t, "intake.db", cfg.Archive.SQLitePath)
		assert.Equal(t, 2*time.Hour, cfg.Wizard.SessionTTL)
		assert.Equal(t, "sequence", cfg.Wizard.RecordIDs)
		assert.Equal(t, "en-IN", cfg.Wizard.Locale)
		assert.Equal(t, "#16a34a", cfg.Theme.PrimaryColor)
		assert.Equal(t, "agricred-intake", cfg.Telemetry.ServiceName)
		assert.False(t, cfg.Profiling.Enabled)
		assert.Equal(t, "agricred-intake", cfg.Profiling.ApplicationName)
		assert.Equal(t, []string{"cpu", "alloc_space", "inuse_space", "goroutines"}, cfg.Profiling.ProfileTypes)
		assert.False(t, cfg.HTTP.DisableSwagger)
	})

	t.Run("loads values from environment variables with INTAKE prefix", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("INTAKE_APP_PORT", "9000")
		t.Setenv("INTAKE_ARCHIVE_DRIVER", "postgres")
		t.Setenv("INTAKE_ARCHIVE_HOST", "db.local")
		t.Setenv("INTAKE_WIZARD_SESSION_TTL", "30m")
		t.Setenv("INTAKE_THEME_APP_TITLE", "Kisan Credit")
		t.Setenv("INTAKE_PROFILING_ENABLED", "true")
		t.Setenv("INTAKE_PROFILING_SERVER_ADDRESS", "http://pyroscope:4040")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Archive.Driver)
		assert.Equal(t, "db.local", cfg.Archive.Host)
		assert.Equal(t, 30*time.Minute, cfg.Wizard.SessionTTL)
		assert.Equal(t, "Kisan Credit", cfg.Theme.AppTitle)
		assert.True(t, cfg.Profiling.Enabled)
		assert.Equal(t, "http://pyroscope:4040", cfg.Profiling.ServerAddress)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intake.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
name = "intake-test"

[wizard]
record_ids = "uuid"
max_sessions = 5

[http]
cors_allow_origins = ["http://localhost:5173"]
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "intake-test", cfg.App.Name)
	assert.Equal(t, "uuid", cfg.Wizard.RecordIDs)
	assert.Equal(t, 5, cfg.Wizard.MaxSessions)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.CORSAllowOrigins)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Archive.Driver = "mysql" }, "archive.driver"},
		{"idle exceeds open", func(c *Config) { c.Archive.MaxIdleConns = 50 }, "max_idle_conns"},
		{"storage without bucket", func(c *Config) { c.Storage.Enabled = true }, "storage.bucket"},
		{"storage without keys", func(c *Config) {
			c.Storage.Enabled = true
			c.Storage.Bucket = "proofs"
		}, "access_key"},
		{"unknown record id scheme", func(c *Config) { c.Wizard.RecordIDs = "clock" }, "wizard.record_ids"},
		{"sampling out of range", func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, "sampling_ratio"},
		{"profiling without server", func(c *Config) { c.Profiling.Enabled = true }, "profiling.server_address"},
		{"span profiles without telemetry", func(c *Config) { c.Profiling.SpanProfiles = true }, "telemetry.enabled"},
		{"production postgres without password", func(c *Config) {
			c.App.Env = "production"
			c.Archive.Driver = "postgres"
		}, "archive.password"},
		{"production wildcard cors", func(c *Config) {
			c.App.Env = "production"
			c.HTTP.CORSAllowOrigins = []string{"*"}
		}, "cors_allow_origins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestArchiveConfig_DSN(t *testing.T) {
	a := ArchiveConfig{User: "intake", Password: "p@ss word", Host: "db", Port: 5432, DBName: "agricred", SSLMode: "require"}
	assert.Equal(t, "postgres://intake:p%40ss%20word@db:5432/agricred?sslmode=require", a.DSN())
}
