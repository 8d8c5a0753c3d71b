package bot

import (
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/game"
)

// Random is the reference opponent: it checks or bets a big blind when
// nothing is owed and otherwise folds, calls or raises on a weighted roll.
type Random struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandom creates a Random policy drawing from rng
func NewRandom(rng *rand.Rand, logger *log.Logger) *Random {
	return &Random{rng: rng, logger: logger}
}

func (r *Random) Decide(v game.View) game.Action {
	action := r.decide(v)
	r.logger.Debug("Decision", "stage", v.Stage, "to_call", v.ToCall, "action", action)
	return action
}

func (r *Random) decide(v game.View) game.Action {
	// The small blind always completes on its first preflop action.
	if v.Stage == game.Preflop && v.IsSmallBlind && v.RoundFirstAction && v.ToCall > 0 {
		return findAction(v, game.Action{Kind: game.Call}, game.AllIn)
	}

	roll := r.rng.Float64()

	if v.ToCall == 0 {
		if roll < 0.4 {
			return game.Action{Kind: game.Check}
		}
		bet := v.CurrentBet + v.BigBlind
		if v.Legal.Can(game.Raise) && bet <= v.Legal.MaxRaise {
			return game.Action{Kind: game.Raise, Amount: bet}
		}
		return game.Action{Kind: game.Check}
	}

	if v.ToCall >= v.Stack {
		return game.Action{Kind: game.AllIn}
	}
	if roll < 0.2 && v.NeedsResponse {
		return game.Action{Kind: game.Fold}
	}
	if roll < 0.7 || v.LastRaiseSize > v.Stack/4 {
		return game.Action{Kind: game.Call}
	}
	return raiseTo(v, max(v.CurrentBet*2, v.BigBlind))
}
