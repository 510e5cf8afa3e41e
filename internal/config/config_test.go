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
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
database:
  host: localhost
  name: putterbase
  user: putter
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "putterbase", cfg.Database.Name)
				assert.Equal(t, "putter", cfg.Database.User)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
database:
  host: localhost
  name: putterbase
  user: putter
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.Database.PoolSize)
				assert.Equal(t, []int{60, 90, 180}, cfg.Aggregate.WindowsDays)
				assert.Equal(t, 5, cfg.Aggregate.MinSamples)
				assert.InDelta(t, 0.05, cfg.Aggregate.TrimFraction, 1e-9)
				assert.Equal(t, 6*time.Hour, cfg.Schedule.AggregationInterval)
				assert.Equal(t, 30*time.Minute, cfg.Schedule.LockTTL)
				assert.Equal(t, "putter-observations", cfg.Stream.Topic)
				assert.Equal(t, "putterbase", cfg.Stream.GroupID)
				assert.Equal(t, 100, cfg.Stream.BatchSize)
				assert.Equal(t, 5*time.Second, cfg.Stream.MaxWait)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
database:
  host: localhost
  name: putterbase
  user: putter
  password: ${TEST_DB_PASSWORD}
`,
			envVars: map[string]string{"TEST_DB_PASSWORD": "hunter2"},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "hunter2", cfg.Database.Password)
			},
		},
		{
			name: "missing database host",
			yaml: `
database:
  name: putterbase
  user: putter
`,
			wantErr: "database.host is required",
		},
		{
			name: "stream enabled without brokers",
			yaml: `
database:
  host: localhost
  name: putterbase
  user: putter
stream:
  enabled: true
`,
			wantErr: "stream.brokers is required",
		},
		{
			name: "negative window",
			yaml: `
database:
  host: localhost
  name: putterbase
  user: putter
aggregate:
  windows_days: [60, -5]
`,
			wantErr: "windows_days entries must be positive",
		},
		{
			name: "trim fraction out of range",
			yaml: `
database:
  host: localhost
  name: putterbase
  user: putter
aggregate:
  trim_fraction: 0.5
`,
			wantErr: "trim_fraction must be in [0, 0.5)",
		},
		{
			name: "multiple validation errors joined",
			yaml: `
database:
  port: 5432
`,
			wantErr: "database.name is required",
		},
		{
			name:    "invalid yaml",
			yaml:    "database: [not a map",
			wantErr: "parsing config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	d := DatabaseConfig{
		Host: "db.internal", Port: 5432, Name: "putterbase",
		User: "putter", Password: "secret", SSLMode: "require",
	}
	assert.Equal(
		t,
		"host=db.internal port=5432 dbname=putterbase user=putter password=secret sslmode=require",
		d.DSN(),
	)
}
