package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "configs", cfg.RulesDir)
	assert.Equal(t, 2*time.Second, cfg.WatchInterval)
	assert.Empty(t, cfg.HistoryDB)
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("CRAPS_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("CRAPS_WORKERS", "3")
	t.Setenv("CRAPS_WATCH_INTERVAL", "500ms")
	t.Setenv("CRAPS_HISTORY_DB", "/tmp/h.db")
	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchInterval)
	assert.Equal(t, "/tmp/h.db", cfg.HistoryDB)

	t.Setenv("CRAPS_WORKERS", "many")
	_, err = LoadServer()
	require.ErrorContains(t, err, "parse env")
}
