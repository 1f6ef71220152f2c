// Package config loads tactics.cfg.json through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

// FileName is the config file looked up in the config directory.
const FileName = "tactics.cfg.json"

// GridConfig holds the board size.
type GridConfig struct {
	Width    int `json:"width" mapstructure:"width"`
	Height   int `json:"height" mapstructure:"height"`
	TileSize int `json:"tileSize" mapstructure:"tileSize"`
}

// RecordConfig holds the battle recorder settings.
type RecordConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Driver  string `json:"driver" mapstructure:"driver"` // sqlite | postgres
	DSN     string `json:"dsn" mapstructure:"dsn"`
}

// Config is the resolved configuration.
type Config struct {
	LogLevel      string
	Seed          int64
	TickStep      time.Duration
	Grid          GridConfig
	Record        RecordConfig
	SpectatorAddr string
	Scenario      *game.ScenarioSpec // nil unless the file defines one
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("seed", 1)
	viper.SetDefault("tick.step", "500ms")

	viper.SetDefault("grid.width", 12)
	viper.SetDefault("grid.height", 8)
	viper.SetDefault("grid.tileSize", 48)

	viper.SetDefault("record.enabled", false)
	viper.SetDefault("record.driver", "sqlite")
	viper.SetDefault("record.dsn", "tactics.db")

	viper.SetDefault("spectator.addr", ":8080")
}

// Load sets defaults, reads FileName from configDir and environment
// overrides (TACTICS_TICK_STEP and so on). A missing file is not an error.
func Load(configDir string) (Config, error) {
	setDefaults()

	viper.SetEnvPrefix("TACTICS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return Current()
}

// Current builds a Config from whatever viper holds now.
func Current() (Config, error) {
	cfg := Config{
		LogLevel: viper.GetString("logLevel"),
		Seed:     viper.GetInt64("seed"),
		TickStep: viper.GetDuration("tick.step"),
		Grid: GridConfig{
			Width:    viper.GetInt("grid.width"),
			Height:   viper.GetInt("grid.height"),
			TileSize: viper.GetInt("grid.tileSize"),
		},
		Record: RecordConfig{
			Enabled: viper.GetBool("record.enabled"),
			Driver:  viper.GetString("record.driver"),
			DSN:     viper.GetString("record.dsn"),
		},
		SpectatorAddr: viper.GetString("spectator.addr"),
	}
	if cfg.TickStep <= 0 {
		return Config{}, fmt.Errorf("tick.step must be positive, got %s", cfg.TickStep)
	}
	switch cfg.Record.Driver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("record.driver %q: want sqlite or postgres", cfg.Record.Driver)
	}
	if viper.IsSet("scenario") {
		var spec game.ScenarioSpec
		if err := viper.UnmarshalKey("scenario", &spec); err != nil {
			return Config{}, fmt.Errorf("decoding scenario: %w", err)
		}
		cfg.Scenario = &spec
	}
	return cfg, nil
}

// ScenarioOrDefault returns the configured scenario, or the built-in skirmish.
// The skirmish board grows to the configured grid but never shrinks below its
// deployment area.
func (c Config) ScenarioOrDefault() game.ScenarioSpec {
	if c.Scenario != nil {
		return *c.Scenario
	}
	s := game.DefaultSkirmish()
	if c.Grid.Width > s.Width {
		s.Width = c.Grid.Width
	}
	if c.Grid.Height > s.Height {
		s.Height = c.Grid.Height
	}
	if c.Grid.TileSize > 0 {
		s.TileSize = c.Grid.TileSize
	}
	return s
}
