// Package statistics accumulates per-hand results from the player's point
// of view, for simulation reports.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lox/headsup/internal/game"
)

// HandResult represents the outcome of a single hand for the player
type HandResult struct {
	NetBB          float64    // Net big blinds won/lost by the player
	SmallBlind     bool       // Player posted the small blind
	WentToShowdown bool       // Did hand go to showdown?
	FinalPotSize   int        // Final pot size in chips
	PotBB          float64    // Final pot size in big blinds
	StreetReached  game.Stage // Furthest street reached
}

// PositionStats tracks statistics for one blind position
type PositionStats struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
}

// Position indexes PositionResults.
const (
	BigBlind   = 0
	SmallBlind = 1
)

// Statistics tracks simulation statistics
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64   // Sum of squares for variance calculation
	Values []float64 // Store all values for median/percentile calculation

	// Track ALL results, not just wins
	ShowdownWins    int     // Hands won at showdown
	NonShowdownWins int     // Hands won without showdown (fold equity)
	ShowdownBB      float64 // BB from showdown (wins AND losses)
	NonShowdownBB   float64 // BB from fold equity (wins AND losses)
	AllBB           float64 // Total BB for sanity check

	PositionResults [2]PositionStats

	MaxPotChips int     // Largest pot observed (in chips)
	MaxPotBB    float64 // Largest pot observed (in bb)
	BigPots     int     // Pots >= 50bb (high action hands)
	BigPotsBB   float64 // BB from big pots

	Streets map[game.Stage]int // Hands ending on each street

	Games       int // Games played to completion
	PlayerGames int // Games won by the player
}

// Mean returns the arithmetic mean of all results in big blinds per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a new hand result into the statistics
func (s *Statistics) Add(result HandResult) {
	netBB := result.NetBB
	s.Hands++
	s.SumBB += netBB
	s.SumBB2 += netBB * netBB
	s.Values = append(s.Values, netBB)

	if netBB > 0 {
		if result.WentToShowdown {
			s.ShowdownWins++
		} else {
			s.NonShowdownWins++
		}
	}
	if result.WentToShowdown {
		s.ShowdownBB += netBB
	} else {
		s.NonShowdownBB += netBB
	}
	s.AllBB += netBB

	pos := BigBlind
	if result.SmallBlind {
		pos = SmallBlind
	}
	s.PositionResults[pos].Hands++
	s.PositionResults[pos].SumBB += netBB
	s.PositionResults[pos].SumBB2 += netBB * netBB

	if result.FinalPotSize > s.MaxPotChips {
		s.MaxPotChips = result.FinalPotSize
		s.MaxPotBB = result.PotBB
	}
	if result.PotBB >= 50 {
		s.BigPots++
		s.BigPotsBB += netBB
	}

	if s.Streets == nil {
		s.Streets = make(map[game.Stage]int)
	}
	s.Streets[result.StreetReached]++
}

// AddGame counts a finished game.
func (s *Statistics) AddGame(winner game.Actor) {
	s.Games++
	if winner == game.Player {
		s.PlayerGames++
	}
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	s.Hands += other.Hands
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)
	s.ShowdownWins += other.ShowdownWins
	s.NonShowdownWins += other.NonShowdownWins
	s.ShowdownBB += other.ShowdownBB
	s.NonShowdownBB += other.NonShowdownBB
	s.AllBB += other.AllBB
	for i := range s.PositionResults {
		s.PositionResults[i].Hands += other.PositionResults[i].Hands
		s.PositionResults[i].SumBB += other.PositionResults[i].SumBB
		s.PositionResults[i].SumBB2 += other.PositionResults[i].SumBB2
	}
	if other.MaxPotChips > s.MaxPotChips {
		s.MaxPotChips = other.MaxPotChips
		s.MaxPotBB = other.MaxPotBB
	}
	s.BigPots += other.BigPots
	s.BigPotsBB += other.BigPotsBB
	for stage, n := range other.Streets {
		if s.Streets == nil {
			s.Streets = make(map[game.Stage]int)
		}
		s.Streets[stage] += n
	}
	s.Games += other.Games
	s.PlayerGames += other.PlayerGames
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// PositionMean returns the mean result for SmallBlind or BigBlind
func (s *Statistics) PositionMean(position int) float64 {
	if position != SmallBlind && position != BigBlind {
		return 0
	}
	ps := s.PositionResults[position]
	if ps.Hands == 0 {
		return 0
	}
	return ps.SumBB / float64(ps.Hands)
}

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate checks the accumulated data for consistency
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllBB=%.6f, ShowdownBB=%.6f, NonShowdownBB=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)",
			len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("total wins (%d) exceeds total hands (%d)", wins, s.Hands)
	}
	if n := s.PositionResults[SmallBlind].Hands + s.PositionResults[BigBlind].Hands; n != s.Hands {
		return fmt.Errorf("position hands total (%d) does not match total hands (%d)", n, s.Hands)
	}
	if s.PlayerGames > s.Games {
		return fmt.Errorf("player won %d of %d games", s.PlayerGames, s.Games)
	}
	return nil
}

// Collector builds Statistics from engine events. It implements
// game.EventSubscriber.
type Collector struct {
	mu    sync.Mutex
	stats Statistics
	start game.Stacks
}

func (c *Collector) OnEvent(event game.GameEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := event.State()
	switch e := event.(type) {
	case game.HandStartEvent:
		// Blinds are already posted, so add them back.
		c.start = game.Stacks{
			Player:   s.Stacks.Player + s.RoundBets.Player,
			Opponent: s.Stacks.Opponent + s.RoundBets.Opponent,
		}
	case game.HandEndEvent:
		net := s.Stacks.Player - c.start.Player
		c.stats.Add(HandResult{
			NetBB:          s.InBigBlinds(net),
			SmallBlind:     s.PlayerIsSmallBlind,
			WentToShowdown: !e.Result.Folded,
			FinalPotSize:   e.Result.Pot,
			PotBB:          s.InBigBlinds(e.Result.Pot),
			StreetReached:  streetReached(s),
		})
	case game.GameOverEvent:
		c.stats.AddGame(e.Winner)
	}
}

// Statistics returns a copy of what has been collected.
func (c *Collector) Statistics() *Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out Statistics
	out.Merge(&c.stats)
	return &out
}

// streetReached is the last street dealt: an all-in run-out counts as the
// river even though no betting happened there.
func streetReached(s game.Snapshot) game.Stage {
	switch len(s.Community) {
	case 5:
		return game.River
	case 4:
		return game.Turn
	case 3:
		return game.Flop
	default:
		return game.Preflop
	}
}
