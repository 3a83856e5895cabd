// Package config gathers runtime settings from .env, the environment and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/oulpan/internal/choices"
	"github.com/abhisek/oulpan/internal/llm"
	"github.com/abhisek/oulpan/internal/mastery"
	"github.com/abhisek/oulpan/internal/queue"
	"github.com/abhisek/oulpan/internal/session"
	"github.com/abhisek/oulpan/internal/store"
)

// Config holds all application settings.
type Config struct {
	// DBPath is a file path for sqlite or a DSN for postgres/mysql.
	// Empty means store.DefaultDBPath.
	DBPath   string
	DBDriver string

	Policy      queue.Policy
	WrongPolicy mastery.WrongPolicy
	OptionCount int

	// AutoAdvance is the delay before moving past a correct answer.
	// Zero waits for the learner.
	AutoAdvance time.Duration
	RetryDelay  time.Duration

	// FlushInterval is how often parked writes are retried.
	FlushInterval time.Duration

	LogFile  string
	LogLevel string

	LLM llm.Config
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBDriver:      store.DriverSQLite,
		Policy:        queue.PolicyLevel,
		WrongPolicy:   mastery.WrongFreeze,
		OptionCount:   choices.DefaultK,
		RetryDelay:    session.DefaultRetryDelay,
		FlushInterval: 30 * time.Second,
		LogLevel:      "info",
		LLM:           llm.DefaultConfig(),
	}
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	var err error

	if v := os.Getenv("OULPAN_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("OULPAN_DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	if v := os.Getenv("OULPAN_POLICY"); v != "" {
		if cfg.Policy, err = queue.ParsePolicy(v); err != nil {
			return cfg, fmt.Errorf("OULPAN_POLICY: %w", err)
		}
	}
	if v := os.Getenv("OULPAN_WRONG_POLICY"); v != "" {
		if cfg.WrongPolicy, err = mastery.ParseWrongPolicy(v); err != nil {
			return cfg, fmt.Errorf("OULPAN_WRONG_POLICY: %w", err)
		}
	}
	if v := os.Getenv("OULPAN_OPTIONS"); v != "" {
		if cfg.OptionCount, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("OULPAN_OPTIONS: %w", err)
		}
	}
	if cfg.AutoAdvance, err = durationEnv("OULPAN_AUTO_ADVANCE", cfg.AutoAdvance); err != nil {
		return cfg, err
	}
	if cfg.RetryDelay, err = durationEnv("OULPAN_RETRY_DELAY", cfg.RetryDelay); err != nil {
		return cfg, err
	}
	if cfg.FlushInterval, err = durationEnv("OULPAN_FLUSH_INTERVAL", cfg.FlushInterval); err != nil {
		return cfg, err
	}
	if v := os.Getenv("OULPAN_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("OULPAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	cfg.LLM = llm.ConfigFromEnv()
	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Validate checks the scheduling and storage settings. LLM settings are
// validated only by the commands that need a provider.
func (c Config) Validate() error {
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverPostgres, store.DriverMySQL:
	default:
		return fmt.Errorf("unknown database driver %q", c.DBDriver)
	}
	if c.DBDriver != store.DriverSQLite && c.DBPath == "" {
		return fmt.Errorf("OULPAN_DB must hold a DSN for the %s driver", c.DBDriver)
	}
	if _, err := queue.ParsePolicy(string(c.Policy)); err != nil {
		return err
	}
	if _, err := mastery.ParseWrongPolicy(string(c.WrongPolicy)); err != nil {
		return err
	}
	if c.OptionCount < 2 {
		return fmt.Errorf("option count must be at least 2, got %d", c.OptionCount)
	}
	if c.AutoAdvance < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("observation delays must not be negative")
	}
	return nil
}

// ResolveDB returns the database DSN, defaulting to the sqlite file in
// the data directory.
func (c Config) ResolveDB() (string, error) {
	if c.DBPath != "" {
		if c.DBDriver == store.DriverSQLite {
			return c.DBPath, store.EnsureDir(c.DBPath)
		}
		return c.DBPath, nil
	}
	return store.DefaultDBPath()
}

// ResolveLogFile returns the log file path, defaulting to oulpan.log in
// the data directory.
func (c Config) ResolveLogFile() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	dir, err := store.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "oulpan.log"), nil
}

// SessionOptions maps the scheduling settings onto controller options.
func (c Config) SessionOptions() session.Options {
	return session.Options{
		Policy:      c.Policy,
		WrongPolicy: c.WrongPolicy,
		OptionCount: c.OptionCount,
		AutoAdvance: c.AutoAdvance,
		RetryDelay:  c.RetryDelay,
	}
}
