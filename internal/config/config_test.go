package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(1), cfg.Seed)
	assert.Equal(t, 500*time.Millisecond, cfg.TickStep)
	assert.Equal(t, GridConfig{Width: 12, Height: 8, TileSize: 48}, cfg.Grid)
	assert.False(t, cfg.Record.Enabled)
	assert.Equal(t, "sqlite", cfg.Record.Driver)
	assert.Equal(t, ":8080", cfg.SpectatorAddr)
	assert.Nil(t, cfg.Scenario)
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"seed": 77,
		"tick": { "step": "250ms" },
		"record": { "enabled": true, "driver": "postgres", "dsn": "host=db" }
	}`)
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(77), cfg.Seed)
	assert.Equal(t, 250*time.Millisecond, cfg.TickStep)
	assert.True(t, cfg.Record.Enabled)
	assert.Equal(t, "postgres", cfg.Record.Driver)
	assert.Equal(t, "host=db", cfg.Record.DSN)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_BrokenFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	_, err := Load(writeConfig(t, `{"logLevel": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Cleanup(viper.Reset)

	_, err := Load(writeConfig(t, `{"record": {"driver": "mysql"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("TACTICS_SEED", "9")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Seed)
}

func TestLoad_Scenario(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"scenario": {
			"name": "duel",
			"width": 6,
			"height": 3,
			"factions": [{"id": 1, "name": "Red"}, {"id": 2, "name": "Blue"}],
			"weapons": [{"name": "rifle", "damage": 12, "accuracy": 75, "maxAmmo": 10, "energyCost": 6}],
			"units": [
				{"label": "R0", "faction": 1, "controller": "player", "x": 0, "y": 1, "hp": 50, "energy": 100, "moveCost": 4, "weapons": ["rifle"]},
				{"label": "B0", "faction": 2, "x": 5, "y": 1, "hp": 50, "energy": 100, "moveCost": 4, "weapons": ["rifle"]}
			]
		}
	}`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.Scenario)
	assert.Equal(t, "duel", cfg.Scenario.Name)
	require.Len(t, cfg.Scenario.Units, 2)
	assert.Equal(t, game.FactionID(1), cfg.Scenario.Units[0].Faction)

	w, err := game.BuildWorld(cfg.ScenarioOrDefault())
	require.NoError(t, err)
	u, ok := w.Unit(0)
	require.True(t, ok)
	assert.Equal(t, game.ControllerPlayer, u.Controller())
	assert.Equal(t, 10, u.Weapon(game.SlotPrimary).Ammo())
	assert.Equal(t, 6, w.Grid().Width)
}

func TestScenarioOrDefault(t *testing.T) {
	cfg := Config{Grid: GridConfig{Width: 4, Height: 20, TileSize: 32}}
	s := cfg.ScenarioOrDefault()
	assert.Equal(t, "skirmish", s.Name)
	assert.Equal(t, 32, s.TileSize)
	assert.Equal(t, 12, s.Width)
	assert.Equal(t, 20, s.Height)
}
