// Package config loads headsup settings from an HCL file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/kelseyhightower/envconfig"
	"github.com/lox/headsup/internal/bot"
	"github.com/lox/headsup/internal/game"
)

// EnvPrefix prefixes every environment override, e.g. HEADSUP_GAME_BIG_BLIND.
const EnvPrefix = "headsup"

// Config represents the complete configuration
type Config struct {
	Game     GameConfig     `envconfig:"game"`
	Opponent OpponentConfig `envconfig:"opponent"`
	Pacing   PacingConfig   `envconfig:"pacing"`
	Log      LogConfig      `envconfig:"log"`
	History  HistoryConfig  `envconfig:"history"`
	Feed     FeedConfig     `envconfig:"feed"`
}

// GameConfig contains blinds and stacks
type GameConfig struct {
	SmallBlind            int  `envconfig:"small_blind"`
	BigBlind              int  `envconfig:"big_blind"`
	StartingStack         int  `envconfig:"starting_stack"`
	PlayerSmallBlindFirst bool `envconfig:"player_small_blind_first"`
}

// OpponentConfig selects the automated opponent
type OpponentConfig struct {
	Strategy   string        `envconfig:"strategy"`
	Seed       int64         `envconfig:"seed"`
	ThinkDelay time.Duration `envconfig:"think_delay"`
}

// PacingConfig controls delays between hands and around persistence
type PacingConfig struct {
	HandPause     time.Duration `envconfig:"hand_pause"`
	RecordTimeout time.Duration `envconfig:"record_timeout"`
}

// LogConfig controls logging
type LogConfig struct {
	Level string `envconfig:"level"`
	File  string `envconfig:"file"`
}

// HistoryConfig selects where hands are recorded. Empty values disable a
// recorder.
type HistoryConfig struct {
	File        string `envconfig:"file"`
	SQLitePath  string `envconfig:"sqlite_path"`
	PostgresDSN string `envconfig:"postgres_dsn"`
	PlayerName  string `envconfig:"player_name"`
}

// FeedConfig controls the spectator feed. An empty address disables it.
type FeedConfig struct {
	Address string `envconfig:"address"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Game: GameConfig{
			SmallBlind:    10,
			BigBlind:      20,
			StartingStack: 1000,
		},
		Opponent: OpponentConfig{
			Strategy:   bot.StrategyRandom,
			ThinkDelay: 800 * time.Millisecond,
		},
		Pacing: PacingConfig{
			HandPause:     2 * time.Second,
			RecordTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
			File:  "headsup.log",
		},
		History: HistoryConfig{
			PlayerName: "player",
		},
	}
}

// Load reads filename if it exists, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	src, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := cfg.merge(src, filename); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes HCL source over the defaults without consulting the
// environment.
func Parse(src []byte, filename string) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(src, filename); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(src []byte, filename string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	return fc.apply(c)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if !bot.ValidStrategy(c.Opponent.Strategy) {
		return fmt.Errorf("opponent: unknown strategy %q (want one of %v)", c.Opponent.Strategy, bot.Strategies())
	}
	if c.Opponent.ThinkDelay < 0 || c.Pacing.HandPause < 0 {
		return fmt.Errorf("pacing: delays must not be negative")
	}
	if c.Pacing.RecordTimeout <= 0 {
		return fmt.Errorf("pacing: record_timeout must be positive")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// EngineConfig converts the game block for the engine.
func (c *Config) EngineConfig() game.Config {
	return game.Config{
		SmallBlind:            c.Game.SmallBlind,
		BigBlind:              c.Game.BigBlind,
		StartingStack:         c.Game.StartingStack,
		PlayerSmallBlindFirst: c.Game.PlayerSmallBlindFirst,
		RecordTimeout:         c.Pacing.RecordTimeout,
	}
}

// SessionConfig converts the pacing settings for a game.Session.
func (c *Config) SessionConfig() game.SessionConfig {
	return game.SessionConfig{
		ThinkDelay: c.Opponent.ThinkDelay,
		HandPause:  c.Pacing.HandPause,
	}
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
