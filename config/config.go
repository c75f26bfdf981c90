// Package config loads the game settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Game holds all configuration for a play session.
type Game struct {
	ContentDir string `yaml:"content_dir"`
	SaveDir    string `yaml:"save_dir"`

	// Seed of 0 means seed from the wall clock at startup.
	Seed int64 `yaml:"seed"`

	// World clock
	TimeScale   float64 `yaml:"time_scale"` // game minutes per real second
	StartHour   int     `yaml:"start_hour"`
	StartMinute int     `yaml:"start_minute"`

	// Combat
	ComboWindow time.Duration `yaml:"combo_window"`
	MaxCombo    int           `yaml:"max_combo"`
	MaxRounds   int           `yaml:"max_rounds"`

	// Quests
	AutoChainLimit int `yaml:"auto_chain_limit"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects logger level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns Game config with sensible defaults.
func Default() Game {
	return Game{
		ContentDir:     "content/eldoria",
		SaveDir:        "saves",
		TimeScale:      1,
		StartHour:      8,
		ComboWindow:    3 * time.Second,
		MaxCombo:       10,
		MaxRounds:      100,
		AutoChainLimit: 32,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load loads config from a YAML file, layering it over the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Game, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate clamps the time scale into range and rejects values the engine
// cannot run with.
func (g *Game) Validate() error {
	g.TimeScale = min(max(g.TimeScale, 1), 300)

	var errs []error
	if g.StartHour < 0 || g.StartHour > 23 {
		errs = append(errs, fmt.Errorf("start_hour %d out of range 0-23", g.StartHour))
	}
	if g.StartMinute < 0 || g.StartMinute > 59 {
		errs = append(errs, fmt.Errorf("start_minute %d out of range 0-59", g.StartMinute))
	}
	if g.ComboWindow < 0 {
		errs = append(errs, fmt.Errorf("combo_window must not be negative"))
	}
	if g.MaxCombo < 0 {
		errs = append(errs, fmt.Errorf("max_combo must not be negative"))
	}
	if g.MaxRounds < 0 {
		errs = append(errs, fmt.Errorf("max_rounds must not be negative"))
	}
	if g.AutoChainLimit < 0 {
		errs = append(errs, fmt.Errorf("auto_chain_limit must not be negative"))
	}
	return errors.Join(errs...)
}
