package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/ontoimport/pkg/config/xconf"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, loader, err := loadConfig("")
	require.NoError(t, err)
	assert.Nil(t, loader)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "ontology", cfg.Mongo.Database)
	assert.Equal(t, 500, cfg.Import.BatchSize)
	assert.Equal(t, "shorten", cfg.Import.VocabMode)
	assert.True(t, cfg.Import.TypesToLabels)
	assert.Equal(t, "imports", cfg.Graph.Reports)
	assert.Equal(t, defaultSettle, cfg.Watch.Settle)
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	path := writeConfig(t, "ontoimport.yaml", `
log:
  level: debug
  format: json
mongo:
  uri: mongodb://db:27017/?replicaSet=rs0
  database: graph
  write_timeout: 30s
pool:
  max_workers: 8
  queue_capacity: 64
executor:
  timeout: 1m
import:
  batch_size: 1000
  vocab_mode: map
  types_to_labels: false
  prefixes:
    "http://example.org/onto#": ex
  retry:
    attempts: 5
watch:
  dir: /data/inbox
  rescan: "@every 5m"
`)
	cfg, loader, err := loadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, loader)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "graph", cfg.Mongo.Database)
	assert.Equal(t, 30*time.Second, cfg.Mongo.WriteTimeout)
	assert.Equal(t, "ontoimport", cfg.Mongo.AppName)
	assert.Equal(t, 8, cfg.Pool.MaxWorkers)
	assert.Equal(t, time.Minute, cfg.Executor.Timeout)
	assert.Equal(t, 1000, cfg.Import.BatchSize)
	assert.Equal(t, "map", cfg.Import.VocabMode)
	assert.False(t, cfg.Import.TypesToLabels)
	assert.Equal(t, map[string]string{"http://example.org/onto#": "ex"}, cfg.Import.Prefixes)
	assert.Equal(t, 5, cfg.Import.Retry.Attempts)
	// 未覆盖的字段保留默认值
	assert.Equal(t, 100*time.Millisecond, cfg.Import.Retry.Delay)
	assert.Equal(t, "/data/inbox", cfg.Watch.Dir)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = loadConfig(writeConfig(t, "c.toml", ""))
	assert.ErrorIs(t, err, xconf.ErrUnsupportedFormat)

	_, _, err = loadConfig(writeConfig(t, "c.yaml", "import:\n  vocab_mode: compact\n"))
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"empty uri", func(c *Config) { c.Mongo.URI = "" }},
		{"empty database", func(c *Config) { c.Mongo.Database = "" }},
		{"pool", func(c *Config) { c.Pool.MaxWorkers = -1 }},
		{"executor timeout", func(c *Config) { c.Executor.Timeout = -time.Second }},
		{"batch size", func(c *Config) { c.Import.BatchSize = 0 }},
		{"concurrency", func(c *Config) { c.Import.Concurrency = 0 }},
		{"vocab mode", func(c *Config) { c.Import.VocabMode = "x" }},
		{"retry attempts", func(c *Config) { c.Import.Retry.Attempts = 0 }},
		{"rescan", func(c *Config) { c.Watch.Rescan = "every now and then" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			require.NoError(t, cfg.Validate())
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), errInvalidConfig)
		})
	}
}

func TestRedactURI(t *testing.T) {
	tests := []struct{ in, want string }{
		{"mongodb://localhost:27017", "mongodb://localhost:27017"},
		{"mongodb://u:secret@h1:27017,h2:27017/db", "mongodb://u:xxxxx@h1:27017,h2:27017/db"},
		{"mongodb+srv://u@cluster/db", "mongodb+srv://u@cluster/db"},
		{"mongodb://h/db?x=a@b", "mongodb://h/db?x=a@b"},
		{"not a uri", "not a uri"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, redactURI(tt.in))
	}
}
