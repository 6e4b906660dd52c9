package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerlog/internal/platform/config"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, ".pokerlog", "pokerlog.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "recaps"), cfg.RecapDir)
	assert.Equal(t, 9, cfg.Session.SeatsPerTable)
	assert.Equal(t, int64(20000), cfg.Session.DefaultStartingChips)
	assert.InDelta(t, 15.0, cfg.Session.DefaultPayoutPercent, 1e-9)
	assert.Equal(t, "NLH", cfg.Session.DefaultGameType)
	assert.NotNil(t, cfg.Session.CustomGameTypes)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pokerlog.yaml")
	body := `session:
  seats_per_table: 6
  default_stakes: "2/5"
  custom_game_types:
    horse: H.O.R.S.E.
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.Load(dir, path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Session.SeatsPerTable)
	assert.Equal(t, "2/5", cfg.Session.DefaultStakes)
	assert.Equal(t, "H.O.R.S.E.", cfg.Session.CustomGameTypes["horse"])
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, int64(20000), cfg.Session.DefaultStartingChips)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("POKERLOG_SESSION_DEFAULT_GAME_TYPE", "PLO")

	cfg, err := config.Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "PLO", cfg.Session.DefaultGameType)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(" ", "")
	require.Error(t, err)

	dir := t.TempDir()
	_, err = config.Load(dir, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  seats_per_table: 1\n  default_payout_percent: 120\n"), 0o644))
	_, err = config.Load(dir, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seats per table")
	assert.Contains(t, err.Error(), "payout percent")
}
