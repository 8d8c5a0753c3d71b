package config

import (
	"fmt"
	"time"
)

// fileConfig mirrors Config as written in HCL. Every block and attribute is
// optional; nil means "keep the default".
type fileConfig struct {
	Game     *gameBlock     `hcl:"game,block"`
	Opponent *opponentBlock `hcl:"opponent,block"`
	Pacing   *pacingBlock   `hcl:"pacing,block"`
	Log      *logBlock      `hcl:"log,block"`
	History  *historyBlock  `hcl:"history,block"`
	Feed     *feedBlock     `hcl:"feed,block"`
}

type gameBlock struct {
	SmallBlind            *int  `hcl:"small_blind,optional"`
	BigBlind              *int  `hcl:"big_blind,optional"`
	StartingStack         *int  `hcl:"starting_stack,optional"`
	PlayerSmallBlindFirst *bool `hcl:"player_small_blind_first,optional"`
}

type opponentBlock struct {
	Strategy   *string `hcl:"strategy,optional"`
	Seed       *int64  `hcl:"seed,optional"`
	ThinkDelay *string `hcl:"think_delay,optional"`
}

type pacingBlock struct {
	HandPause     *string `hcl:"hand_pause,optional"`
	RecordTimeout *string `hcl:"record_timeout,optional"`
}

type logBlock struct {
	Level *string `hcl:"level,optional"`
	File  *string `hcl:"file,optional"`
}

type historyBlock struct {
	File        *string `hcl:"file,optional"`
	SQLitePath  *string `hcl:"sqlite_path,optional"`
	PostgresDSN *string `hcl:"postgres_dsn,optional"`
	PlayerName  *string `hcl:"player_name,optional"`
}

type feedBlock struct {
	Address *string `hcl:"address,optional"`
}

func (fc *fileConfig) apply(c *Config) error {
	if b := fc.Game; b != nil {
		set(&c.Game.SmallBlind, b.SmallBlind)
		set(&c.Game.BigBlind, b.BigBlind)
		set(&c.Game.StartingStack, b.StartingStack)
		set(&c.Game.PlayerSmallBlindFirst, b.PlayerSmallBlindFirst)
	}
	if b := fc.Opponent; b != nil {
		set(&c.Opponent.Strategy, b.Strategy)
		set(&c.Opponent.Seed, b.Seed)
		if err := setDuration(&c.Opponent.ThinkDelay, b.ThinkDelay, "opponent.think_delay"); err != nil {
			return err
		}
	}
	if b := fc.Pacing; b != nil {
		if err := setDuration(&c.Pacing.HandPause, b.HandPause, "pacing.hand_pause"); err != nil {
			return err
		}
		if err := setDuration(&c.Pacing.RecordTimeout, b.RecordTimeout, "pacing.record_timeout"); err != nil {
			return err
		}
	}
	if b := fc.Log; b != nil {
		set(&c.Log.Level, b.Level)
		set(&c.Log.File, b.File)
	}
	if b := fc.History; b != nil {
		set(&c.History.File, b.File)
		set(&c.History.SQLitePath, b.SQLitePath)
		set(&c.History.PostgresDSN, b.PostgresDSN)
		set(&c.History.PlayerName, b.PlayerName)
	}
	if b := fc.Feed; b != nil {
		set(&c.Feed.Address, b.Address)
	}
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string, name string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
