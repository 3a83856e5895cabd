package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/oulpan/internal/mastery"
	"github.com/abhisek/oulpan/internal/queue"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OULPAN_DB", "OULPAN_DB_DRIVER", "OULPAN_POLICY", "OULPAN_WRONG_POLICY",
		"OULPAN_OPTIONS", "OULPAN_AUTO_ADVANCE", "OULPAN_RETRY_DELAY",
		"OULPAN_FLUSH_INTERVAL", "OULPAN_LOG_FILE", "OULPAN_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, queue.PolicyLevel, cfg.Policy)
	assert.Equal(t, mastery.WrongFreeze, cfg.WrongPolicy)
	assert.Equal(t, 4, cfg.OptionCount)
	assert.Equal(t, 900*time.Millisecond, cfg.RetryDelay)
	assert.Zero(t, cfg.AutoAdvance)
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OULPAN_POLICY", "coverage")
	t.Setenv("OULPAN_WRONG_POLICY", "reset")
	t.Setenv("OULPAN_OPTIONS", "6")
	t.Setenv("OULPAN_AUTO_ADVANCE", "1.5s")
	t.Setenv("OULPAN_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, queue.PolicyCoverage, cfg.Policy)
	assert.Equal(t, mastery.WrongReset, cfg.WrongPolicy)
	assert.Equal(t, 6, cfg.OptionCount)
	assert.Equal(t, 1500*time.Millisecond, cfg.AutoAdvance)
	assert.Equal(t, "debug", cfg.LogLevel)

	opts := cfg.SessionOptions()
	assert.Equal(t, 6, opts.OptionCount)
	assert.Equal(t, mastery.WrongReset, opts.WrongPolicy)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"OULPAN_POLICY":       "random",
		"OULPAN_WRONG_POLICY": "punish",
		"OULPAN_OPTIONS":      "four",
		"OULPAN_RETRY_DELAY":  "soon",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OptionCount = 1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DBDriver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DBDriver = "postgres"
	assert.Error(t, cfg.Validate(), "postgres needs an explicit DSN")
	cfg.DBPath = "postgres://localhost/oulpan?sslmode=disable"
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("OULPAN_OPTIONS=5\nOULPAN_LOG_LEVEL=warn\n"), 0o600))

	// Already-set variables win over the file.
	t.Setenv("OULPAN_LOG_LEVEL", "error")
	os.Unsetenv("OULPAN_OPTIONS")
	os.Unsetenv("OULPAN_LOG_LEVEL")
	t.Setenv("OULPAN_LOG_LEVEL", "error")

	require.NoError(t, LoadDotEnv(path))
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.OptionCount)
	assert.Equal(t, "error", cfg.LogLevel)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestResolveLogFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := DefaultConfig()
	p, err := cfg.ResolveLogFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "oulpan", "oulpan.log"), p)

	cfg.LogFile = "/tmp/x.log"
	p, _ = cfg.ResolveLogFile()
	assert.Equal(t, "/tmp/x.log", p)
}
