package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TopstepSentinel/internal/topstep"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TOPSTEP_BASE", "TOPSTEP_USERNAME", "TOPSTEP_API_KEY", "TOPSTEP_SYMBOL", "TOPSTEP_LIVE",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "CRON_DAILY", "SQLITE_PATH",
		"HTTP_ADDR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, topstep.DefaultBaseURL, cfg.Topstep.BaseURL)
	assert.Equal(t, "MGC", cfg.Topstep.Symbol)
	assert.False(t, cfg.Topstep.Live)
	assert.Equal(t, "0 15 23 * * 1-5", cfg.Schedule.DailyCron)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)
	assert.Equal(t, "data/topstep_sentinel.db", cfg.Database.SQLitePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
topstep:
  username: file-user
  api_key: file-key
  symbol: gc
  live: true
telegram:
  bot_token: bot
  chat_id: "42"
http:
  addr: ":8080"
`), 0o644))

	t.Setenv("TOPSTEP_API_KEY", "env-key")
	t.Setenv("TOPSTEP_LIVE", "false")
	t.Setenv("SQLITE_PATH", "/tmp/bars.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-user", cfg.Topstep.UserName)
	assert.Equal(t, "env-key", cfg.Topstep.APIKey)
	assert.Equal(t, "GC", cfg.Topstep.Symbol)
	assert.False(t, cfg.Topstep.Live)
	assert.Equal(t, "/tmp/bars.db", cfg.Database.SQLitePath)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.TelegramEnabled())
	require.NoError(t, cfg.Validate())

	cc := cfg.ClientConfig()
	assert.Equal(t, "file-user", cc.UserName)
	assert.Equal(t, "env-key", cc.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topstep: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_MissingCredentials(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, topstep.IsConfigError(err))

	cfg.Topstep.UserName = "trader"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}
