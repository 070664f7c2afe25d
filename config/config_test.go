package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(1_000_000), cfg.Game.StartingCapital)
	assert.Equal(t, int64(50_000), cfg.Game.EliminationThreshold)
	assert.Equal(t, 0.60, cfg.Game.VictoryShare)
	assert.Equal(t, int64(2), cfg.Game.DecisionDelayMinTicks)
	assert.Equal(t, int64(6), cfg.Game.DecisionDelayMaxTicks)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Inference.URL)
}

func TestLoadConfigCreatesDefaultFile(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "config", "config.json")

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	// A second load reads the file it just wrote
	again, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Server.Port = "9999"
	cfg.Game.AICompanyCount = 7
	cfg.Game.Seed = 42

	assert.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "9999", loaded.Server.Port)
	assert.Equal(t, 7, loaded.Game.AICompanyCount)
	assert.Equal(t, int64(42), loaded.Game.Seed)
}
