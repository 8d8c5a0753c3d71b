// Package simulator plays bot-versus-bot games to measure strategies.
package simulator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/bot"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for running simulations
type Config struct {
	Games    int
	MaxHands int // Per game; 0 plays until one stack is gone
	Player   string
	Opponent string
	Seed     int64
	Parallel int
	Timeout  time.Duration // Per game; 0 for none
	Game     game.Config
	Logger   *log.Logger

	// Recorder receives every hand of every game when set.
	Recorder game.HandRecorder
	// Observe, when set, returns a subscriber for the events of one game.
	Observe func(index int) game.EventSubscriber
}

// Simulator runs games in parallel
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.Parallel <= 0 {
		config.Parallel = 1
	}
	return &Simulator{config: config}
}

// Run plays every game and returns the player's combined results.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	for _, strategy := range []string{s.config.Player, s.config.Opponent} {
		if !bot.ValidStrategy(strategy) {
			return nil, fmt.Errorf("unknown strategy %q (want one of %v)", strategy, bot.Strategies())
		}
	}

	results := make([]*statistics.Statistics, s.config.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for i := range s.config.Games {
		g.Go(func() error {
			stats, err := s.playGame(ctx, i)
			if err != nil {
				return err
			}
			results[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, stats := range results {
		total.Merge(stats)
	}
	if total.Hands > 0 {
		if err := total.Validate(); err != nil {
			return nil, fmt.Errorf("statistics validation failed: %w", err)
		}
	}
	return total, nil
}

// playGame plays game number index. Games alternate who posts the small
// blind first to cancel out positional bias.
func (s *Simulator) playGame(ctx context.Context, index int) (*statistics.Statistics, error) {
	seed := s.config.Seed + int64(index)
	logger := s.config.Logger.With("game", index+1)

	player, err := bot.New(s.config.Player, randutil.New(seed, randutil.Player), logger)
	if err != nil {
		return nil, err
	}
	opponent, err := bot.New(s.config.Opponent, randutil.New(seed, randutil.Opponent), logger)
	if err != nil {
		return nil, err
	}

	cfg := s.config.Game
	cfg.PlayerSmallBlindFirst = index%2 == 1
	opts := []game.Option{
		game.WithLogger(logger),
		game.WithRNG(randutil.New(seed, randutil.Deck)),
	}
	if s.config.Recorder != nil {
		opts = append(opts, game.WithRecorder(s.config.Recorder))
	}
	engine := game.NewEngine(cfg, opponent, opts...)

	collector := &statistics.Collector{}
	engine.Subscribe(collector)
	if s.config.Observe != nil {
		if sub := s.config.Observe(index); sub != nil {
			engine.Subscribe(sub)
		}
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := engine.PlayGame(ctx, player, s.config.MaxHands); err != nil {
		return nil, fmt.Errorf("game %d (seed %d): %w", index+1, seed, err)
	}
	logger.Debug("Game finished", "hands", engine.State().HandNumber, "over", engine.State().GameOver,
		"duration", time.Since(start))
	return collector.Statistics(), nil
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, label string) {
	fmt.Fprintf(w, "\n=== FINAL RESULTS: %s ===\n", label)
	fmt.Fprintf(w, "Games finished: %d (player won %d)\n", stats.Games, stats.PlayerGames)
	fmt.Fprintf(w, "Hands played: %d\n", stats.Hands)
	if stats.Hands == 0 {
		return
	}

	low, high := stats.ConfidenceInterval95()
	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f bb/hand\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f bb/hand\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f bb\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bb/hand\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== PROFIT SOURCE ANALYSIS ===\n")
	if wins := stats.ShowdownWins + stats.NonShowdownWins; wins > 0 {
		fmt.Fprintf(w, "Winning hands: %d showdown (%.1f%%), %d fold equity (%.1f%%)\n",
			stats.ShowdownWins, float64(stats.ShowdownWins)/float64(wins)*100,
			stats.NonShowdownWins, float64(stats.NonShowdownWins)/float64(wins)*100)
	}
	fmt.Fprintf(w, "Non-showdown: %.2f bb/hand avg (all hands)\n", stats.NonShowdownBB/float64(stats.Hands))
	fmt.Fprintf(w, "Showdown: %.2f bb/hand avg (all hands)\n", stats.ShowdownBB/float64(stats.Hands))

	fmt.Fprintf(w, "\n=== POT SIZE ANALYSIS ===\n")
	fmt.Fprintf(w, "Max pot observed: %d chips (%.1f bb)\n", stats.MaxPotChips, stats.MaxPotBB)
	fmt.Fprintf(w, "Big pots (>=50bb): %d hands (%.1f%%), %.2f bb total\n",
		stats.BigPots, float64(stats.BigPots)/float64(stats.Hands)*100, stats.BigPotsBB)

	fmt.Fprintf(w, "\n=== STREETS ===\n")
	for _, stage := range []game.Stage{game.Preflop, game.Flop, game.Turn, game.River} {
		fmt.Fprintf(w, "Ended on %s: %d\n", stage, stats.Streets[stage])
	}

	fmt.Fprintf(w, "\n=== POSITION ANALYSIS ===\n")
	for _, pos := range []struct {
		name  string
		index int
	}{{"Small blind", statistics.SmallBlind}, {"Big blind", statistics.BigBlind}} {
		ps := stats.PositionResults[pos.index]
		fmt.Fprintf(w, "%s: %d hands, %.3f bb/hand\n", pos.name, ps.Hands, stats.PositionMean(pos.index))
	}
}
