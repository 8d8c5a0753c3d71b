// Package bot provides the automated opponent's decision policies.
package bot

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/game"
)

const (
	StrategyRandom         = "random"
	StrategyCallingStation = "calling-station"
	StrategyAggressive     = "aggressive"
)

// Strategies lists the names accepted by New.
func Strategies() []string {
	return []string{StrategyRandom, StrategyCallingStation, StrategyAggressive}
}

// New returns the policy for a strategy name. A nil rng is seeded from the
// current time.
func New(strategy string, rng *rand.Rand, logger *log.Logger) (game.Policy, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger = logger.WithPrefix("bot").With("strategy", strategy)

	switch strategy {
	case StrategyRandom, "":
		return NewRandom(rng, logger), nil
	case StrategyCallingStation:
		return NewCallingStation(logger), nil
	case StrategyAggressive:
		return NewAggressive(logger), nil
	}
	return nil, fmt.Errorf("unknown strategy %q (want one of %v)", strategy, Strategies())
}

// ValidStrategy reports whether New accepts name.
func ValidStrategy(name string) bool {
	return slices.Contains(Strategies(), name)
}

// findAction returns preferred if legal, otherwise the first of the
// fallbacks that is.
func findAction(v game.View, preferred game.Action, fallbacks ...game.ActionKind) game.Action {
	if v.Legal.Can(preferred.Kind) {
		return preferred
	}
	for _, kind := range fallbacks {
		if v.Legal.Can(kind) {
			return game.Action{Kind: kind}
		}
	}
	return game.Action{Kind: v.Legal.Actions[0]}
}

// raiseTo raises to amount, clamped to the legal range; a raise of the whole
// stack becomes an all-in.
func raiseTo(v game.View, amount int) game.Action {
	if !v.Legal.Can(game.Raise) {
		if v.Legal.Can(game.AllIn) && v.Legal.MaxRaise > v.CurrentBet {
			return game.Action{Kind: game.AllIn}
		}
		return findAction(v, game.Action{Kind: game.Call}, game.Check)
	}
	amount = max(amount, v.Legal.MinRaise)
	if amount >= v.Legal.MaxRaise {
		return game.Action{Kind: game.AllIn}
	}
	return game.Action{Kind: game.Raise, Amount: amount}
}
