package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/bot"
	"github.com/lox/headsup/internal/config"
	"github.com/lox/headsup/internal/display"
	"github.com/lox/headsup/internal/feed"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/tui"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
)

type PlayCmd struct {
	Plain    bool   `help:"Line-mode play instead of the full-screen interface"`
	Strategy string `help:"Opponent strategy (${strategies}); overrides the config"`
	Seed     int64  `help:"Seed for the deck and the opponent (0 for random)"`
	Feed     string `placeholder:"ADDR" help:"Serve the spectator feed on this address, e.g. :8080"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	if c.Strategy != "" {
		cfg.Opponent.Strategy = c.Strategy
	}
	if c.Feed != "" {
		cfg.Feed.Address = c.Feed
	}
	if c.Seed != 0 {
		cfg.Opponent.Seed = c.Seed
	}
	if cfg.Opponent.Seed == 0 {
		cfg.Opponent.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, closeRecorders, err := openRecorders(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRecorders(); err != nil {
			logger.Error("Failed to close recorders", "error", err)
		}
	}()

	seed := cfg.Opponent.Seed
	opponent, err := bot.New(cfg.Opponent.Strategy, randutil.New(seed, randutil.Opponent), logger)
	if err != nil {
		return err
	}
	engine := game.NewEngine(cfg.EngineConfig(), opponent,
		game.WithLogger(logger),
		game.WithRNG(randutil.New(seed, randutil.Deck)),
		game.WithRecorder(recorder))

	sessionCfg := cfg.SessionConfig()
	sessionCfg.Logger = logger
	session := game.NewSession(engine, sessionCfg)

	logger.Info("Starting game", "strategy", cfg.Opponent.Strategy, "seed", cfg.Opponent.Seed,
		"blinds", fmt.Sprintf("%d/%d", cfg.Game.SmallBlind, cfg.Game.BigBlind))

	// Every subscriber must be in place before the session deals hand one.
	var ui func(context.Context) error
	if c.Plain {
		out := termenv.NewOutput(os.Stdout)
		printer := display.NewPrinter(os.Stdout, display.Options{
			Color:       out.EnvColorProfile() != termenv.Ascii,
			BigBlinds:   true,
			Perspective: true,
		}, true)
		engine.Subscribe(printer)
		ui = func(ctx context.Context) error {
			return runPlain(ctx, session, os.Stdin, os.Stdout)
		}
	} else {
		bridge := tui.NewBridge(logger)
		engine.Subscribe(bridge)
		ui = func(ctx context.Context) error {
			return runTUI(ctx, session, bridge, logger)
		}
	}

	var spectators *feed.Server
	if cfg.Feed.Address != "" {
		spectators = feed.NewServer(logger)
		engine.Subscribe(spectators)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	uiCtx, cancel := context.WithCancel(egCtx)
	defer cancel()

	eg.Go(func() error {
		return session.Run(uiCtx)
	})
	if spectators != nil {
		eg.Go(func() error {
			return spectators.ListenAndServe(uiCtx, cfg.Feed.Address)
		})
	}
	eg.Go(func() error {
		// Leaving the interface ends the session and the feed.
		defer cancel()
		return ui(uiCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Game closed", "hands", engine.State().HandNumber)
	return nil
}

func runTUI(ctx context.Context, session *game.Session, bridge *tui.Bridge, logger *log.Logger) error {
	model := tui.NewTUIModel(ctx, session, bridge, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		<-session.Done()
		p.Send(tui.SessionDoneMsg{})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal interface failed: %w", err)
	}
	return nil
}

// runPlain reads one command per line. Events are printed by the
// display.Printer subscribed to the engine.
func runPlain(ctx context.Context, session *game.Session, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-session.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.ToLower(strings.TrimSpace(l))
		}

		switch line {
		case "":
			continue
		case "quit", "q", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(out, "Commands: check (k), call (c), fold (f), allin (a), raise N (r N), new, quit")
			continue
		case "new":
			if err := session.Restart(ctx); err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
			continue
		}

		action, err := game.ParseAction(line)
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}
		if !session.Snapshot().PlayerToAct() {
			fmt.Fprintln(out, "! not your turn")
			continue
		}
		if _, err := session.Submit(ctx, action); err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
	}
}
