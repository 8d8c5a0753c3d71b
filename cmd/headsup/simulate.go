package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/config"
	"github.com/lox/headsup/internal/display"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/simulator"
)

type SimulateCmd struct {
	Games    int           `default:"100" help:"Number of games to play"`
	MaxHands int           `help:"Hand limit per game (0 = until a stack is gone)"`
	Player   string        `default:"aggressive" help:"Strategy in the player's seat (${strategies})"`
	Opponent string        `help:"Opponent strategy; defaults to the configured one"`
	Seed     int64         `help:"RNG seed (0 for random)"`
	Parallel int           `help:"Games to run at once (0 = number of CPUs)"`
	Timeout  time.Duration `default:"30s" help:"Give up on a game after this long"`
	Record   bool          `help:"Record hands to the configured history"`
	Verbose  bool          `help:"Print every hand (runs games one at a time)"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	if c.Opponent != "" {
		cfg.Opponent.Strategy = c.Opponent
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.Parallel <= 0 {
		c.Parallel = runtime.NumCPU()
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	simCfg := simulator.Config{
		Games:    c.Games,
		MaxHands: c.MaxHands,
		Player:   c.Player,
		Opponent: cfg.Opponent.Strategy,
		Seed:     c.Seed,
		Parallel: c.Parallel,
		Timeout:  c.Timeout,
		Game:     cfg.EngineConfig(),
		Logger:   logger,
	}
	if c.Verbose {
		simCfg.Parallel = 1
		simCfg.Observe = func(int) game.EventSubscriber {
			return display.NewPrinter(os.Stdout, display.Options{BigBlinds: true}, false)
		}
	}
	if c.Record {
		recorder, closeRecorders, err := openRecorders(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeRecorders()
		simCfg.Recorder = recorder
	}

	label := fmt.Sprintf("%s vs %s", c.Player, cfg.Opponent.Strategy)
	fmt.Printf("Starting simulation: %d games, %s (seed: %d)\n", c.Games, label, c.Seed)

	start := time.Now()
	stats, err := simulator.New(simCfg).Run(ctx)
	if err != nil {
		return err
	}
	simulator.PrintSummary(os.Stdout, stats, label)
	fmt.Printf("\nCompleted in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}
