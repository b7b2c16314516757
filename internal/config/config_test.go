package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "JourneyLens API", cfg.AppName)
	assert.Equal(t, "1.0.0", cfg.APIVersion)
	assert.Equal(t, "demo-token", cfg.AuthToken)
	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "backend_data/journeylens.db", cfg.Database.Path)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, filepath.Join("data", "demo_accounts.csv"), cfg.DemoData.AccountsPath())
	assert.Equal(t, filepath.Join("data", "demo_expected_insights.csv"), cfg.DemoData.ExpectedPath())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("JOURNEYLENS_AUTH_TOKEN", "s3cret")
	t.Setenv("JOURNEYLENS_HTTP_PORT", "9090")
	t.Setenv("JOURNEYLENS_DATABASE_DRIVER", "memory")
	t.Setenv("JOURNEYLENS_HTTP_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JOURNEYLENS_REDIS_TTL", "30s")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.AuthToken)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journeylens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_name: Staging Lens
database:
  driver: mongo
  mongo_db: staging
log:
  format: json
`), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "Staging Lens", cfg.AppName)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, "staging", cfg.Database.MongoDB)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.MongoURI)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty token", func(c *Config) { c.AuthToken = " " }, "auth_token"},
		{"bad driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(New(), "")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("shown", "account_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"account_id":7`)
}
