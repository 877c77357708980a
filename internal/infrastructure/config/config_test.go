package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 24, *cfg.Sync.RecheckBufferHours)
	assert.Equal(t, 90, cfg.Sync.FullSyncDays)
	assert.Equal(t, 200, cfg.Sync.PageSize)
	assert.Equal(t, 1200*time.Millisecond, cfg.Sync.PageInterval)
	assert.Empty(t, cfg.Sync.Channels)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "./data/slack-keeper.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "")

	content := `
slack:
  bot_token: xoxb-from-file
sync:
  recheck_buffer_hours: 48
  full_sync_days: 30
  page_size: 100
  channels:
    - general
    - C0123456789
storage:
  type: memory
logging:
  level: debug
  format: text
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "xoxb-from-file", cfg.Slack.BotToken)
	assert.Equal(t, 48, *cfg.Sync.RecheckBufferHours)
	assert.Equal(t, 30, cfg.Sync.FullSyncDays)
	assert.Equal(t, 100, cfg.Sync.PageSize)
	assert.Equal(t, []string{"general", "C0123456789"}, cfg.Sync.Channels)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	content := `
slack:
  bot_token: xoxb-from-file
sync:
  recheck_buffer_hours: 48
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("SLACK_BOT_TOKEN", "xoxb-from-env")
	t.Setenv("RECHECK_BUFFER_HOURS", "12")
	t.Setenv("FETCH_PAGE_INTERVAL", "500ms")
	t.Setenv("SYNC_CHANNELS", "general, random ,")
	t.Setenv("STORAGE_TYPE", "memory")
	t.Setenv("METRICS_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "xoxb-from-env", cfg.Slack.BotToken)
	assert.Equal(t, 12, *cfg.Sync.RecheckBufferHours)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.PageInterval)
	assert.Equal(t, []string{"general", "random"}, cfg.Sync.Channels)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoad_ZeroRecheckBufferFromEnv(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("RECHECK_BUFFER_HOURS", "0")

	cfg, err := Load("")
	require.NoError(t, err)

	// An explicit zero disables the recheck window instead of falling back
	// to the default width.
	assert.Equal(t, 0, *cfg.Sync.RecheckBufferHours)
	assert.Equal(t, time.Duration(0), cfg.RecheckBuffer())
}

func TestLoad_ZeroRecheckBufferFromFile(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")

	content := "sync:\n  recheck_buffer_hours: 0\nstorage:\n  type: memory\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, *cfg.Sync.RecheckBufferHours)
}

func TestLoad_NegativeRecheckBufferRejected(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("RECHECK_BUFFER_HOURS", "-1")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recheck_buffer_hours")
}

func TestLoad_ExpandsEnvInFile(t *testing.T) {
	t.Setenv("TEST_TOKEN_VALUE", "xoxb-expanded")

	content := "slack:\n  bot_token: ${TEST_TOKEN_VALUE}\nstorage:\n  type: memory\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "xoxb-expanded", cfg.Slack.BotToken)
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot_token")
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
}

func TestLoad_InvalidStorageType(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("STORAGE_TYPE", "cassandra")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage type")
}

func TestLoad_MySQLRequiresCredentials(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("STORAGE_TYPE", "mysql")
	t.Setenv("MYSQL_HOST", "localhost")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestDurationHelpers(t *testing.T) {
	hours := 24
	cfg := &Config{}
	cfg.Sync.RecheckBufferHours = &hours
	cfg.Sync.FullSyncDays = 90

	assert.Equal(t, 24*time.Hour, cfg.RecheckBuffer())
	assert.Equal(t, 90*24*time.Hour, cfg.FullSyncHorizon())
}
