package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://imgur.com", cfg.Feed.BaseURL)
	assert.Equal(t, "https://i.imgur.com", cfg.Feed.ImageBaseURL)
	assert.Equal(t, 1300*time.Millisecond, cfg.Crawl.PageDelay)
	assert.Equal(t, 1300*time.Millisecond, cfg.Crawl.ImageDelay)
	assert.Equal(t, 5*time.Second, cfg.Crawl.RetryCooldown)
	assert.Equal(t, 3, cfg.Crawl.MaxPageAttempts)
	assert.False(t, cfg.Crawl.PreserveTimestamps)
	assert.Equal(t, ".", cfg.Output.Directory)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IMGURR_OUTPUT_DIR", "/tmp/imgurr")
	t.Setenv("IMGURR_MAX_PAGE_ATTEMPTS", "0")
	t.Setenv("IMGURR_PRESERVE_MTIME", "true")
	t.Setenv("IMGURR_LOG_LEVEL", "debug")
	t.Setenv("IMGURR_NOTIFICATIONS_ENABLED", "false")
	t.Setenv("IMGURR_FEED_URL", "http://localhost:8080")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "/tmp/imgurr", cfg.Output.Directory)
	assert.Equal(t, 0, cfg.Crawl.MaxPageAttempts)
	assert.True(t, cfg.Crawl.PreserveTimestamps)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, "http://localhost:8080", cfg.Feed.BaseURL)
}

func TestLoadFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("IMGURR_MAX_PAGE_ATTEMPTS", "three")
	t.Setenv("IMGURR_PRESERVE_MTIME", "maybe")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMGURR_MAX_PAGE_ATTEMPTS")
	assert.Contains(t, err.Error(), "IMGURR_PRESERVE_MTIME")
	assert.Equal(t, 3, cfg.Crawl.MaxPageAttempts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unbounded retries", func(c *Config) { c.Crawl.MaxPageAttempts = 0 }, false},
		{"negative attempts", func(c *Config) { c.Crawl.MaxPageAttempts = -1 }, true},
		{"negative delay", func(c *Config) { c.Crawl.ImageDelay = -time.Second }, true},
		{"relative feed url", func(c *Config) { c.Feed.BaseURL = "imgur.com" }, true},
		{"ftp image url", func(c *Config) { c.Feed.ImageBaseURL = "ftp://i.imgur.com" }, true},
		{"empty output", func(c *Config) { c.Output.Directory = "" }, true},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":         "/flag/output",
		"log-level":      "error",
		"max-attempts":   5,
		"preserve-mtime": true,
		"notifications":  false,
		"metrics-file":   "/var/lib/node_exporter/imgurr.prom",
	})

	assert.Equal(t, "/flag/output", cfg.Output.Directory)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Crawl.MaxPageAttempts)
	assert.True(t, cfg.Crawl.PreserveTimestamps)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, "/var/lib/node_exporter/imgurr.prom", cfg.Metrics.TextfilePath)
}

func TestSaveAndLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Output.Directory = "/data/imgur"
	cfg.Crawl.MaxPageAttempts = 7
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "/data/imgur", loaded.Output.Directory)
	assert.Equal(t, 7, loaded.Crawl.MaxPageAttempts)
	assert.Equal(t, cfg.Crawl.PageDelay, loaded.Crawl.PageDelay)
}

func TestLoadFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[crawl]
page_delay = "2s"
max_page_attempts = 4
preserve_timestamps = true

[output]
directory = "/srv/galleries"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))
	assert.Equal(t, 2*time.Second, cfg.Crawl.PageDelay)
	assert.Equal(t, 4, cfg.Crawl.MaxPageAttempts)
	assert.True(t, cfg.Crawl.PreserveTimestamps)
	assert.Equal(t, "/srv/galleries", cfg.Output.Directory)
	assert.Equal(t, 1300*time.Millisecond, cfg.Crawl.ImageDelay)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  directory: /from/file\nlogging:\n  level: warn\n"), 0644))

	t.Setenv("HOME", dir)
	t.Setenv("IMGURR_OUTPUT_DIR", "/from/env")

	cfg, err := Load(path, map[string]interface{}{"log-level": "debug"})
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Output.Directory)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
