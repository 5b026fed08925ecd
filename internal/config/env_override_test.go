package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_Backend(t *testing.T) {
	t.Run("RECALL_BACKEND_URL overrides config", func(t *testing.T) {
		t.Setenv("RECALL_BACKEND_URL", "http://env-backend:3000")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://env-backend:3000", cfg.Backend.BaseURL)
	})

	t.Run("empty env leaves config value", func(t *testing.T) {
		t.Setenv("RECALL_BACKEND_URL", "")

		cfg := DefaultConfig()
		cfg.Backend.BaseURL = "http://from-file:3000"
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://from-file:3000", cfg.Backend.BaseURL)
	})
}

func TestEnvOverrides_Paths(t *testing.T) {
	t.Run("RECALL_DB overrides database path", func(t *testing.T) {
		t.Setenv("RECALL_DB", "/tmp/test.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/test.db", cfg.Storage.DatabasePath)
	})

	t.Run("RECALL_INBOX overrides inbox dir", func(t *testing.T) {
		t.Setenv("RECALL_INBOX", "/tmp/drop")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/drop", cfg.Inbox.Dir)
	})
}

func TestEnvOverrides_Debug(t *testing.T) {
	t.Run("RECALL_DEBUG=1 enables debug mode", func(t *testing.T) {
		t.Setenv("RECALL_DEBUG", "1")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("RECALL_DEBUG=true enables debug mode", func(t *testing.T) {
		t.Setenv("RECALL_DEBUG", "true")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("debug env does not downgrade explicit level", func(t *testing.T) {
		t.Setenv("RECALL_DEBUG", "1")

		cfg := DefaultConfig()
		cfg.Logging.Level = "warn"
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("other values leave debug off", func(t *testing.T) {
		t.Setenv("RECALL_DEBUG", "yes")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Logging.DebugMode)
	})
}
