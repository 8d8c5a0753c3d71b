package bot

import (
	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/poker"
)

// Aggressive raises with good starting hands and made pairs, and calls
// everything else down.
type Aggressive struct {
	logger *log.Logger
}

// NewAggressive creates an Aggressive policy
func NewAggressive(logger *log.Logger) *Aggressive {
	return &Aggressive{logger: logger}
}

func (a *Aggressive) Decide(v game.View) game.Action {
	strength, reason := a.strength(v)

	var action game.Action
	switch {
	case strength >= 3:
		// Premium starts and two pair or better: three times the bet.
		action = raiseTo(v, max(v.CurrentBet*3, v.Legal.MinRaise))
	case strength >= 1:
		action = raiseTo(v, v.Legal.MinRaise)
	default:
		action = findAction(v, game.Action{Kind: game.Check}, game.Call, game.AllIn)
	}

	a.logger.Debug("Decision", "stage", v.Stage, "strength", strength, "reason", reason, "action", action)
	return action
}

// strength scores the hand from 0 to 4.
func (a *Aggressive) strength(v game.View) (int, string) {
	if len(v.Community) == 0 {
		category := poker.CategorizeHole(v.Hole)
		return category.Score(), string(category)
	}

	hand, err := poker.Evaluate(v.Hole, v.Community)
	if err != nil {
		a.logger.Warn("Cannot evaluate hand", "error", err)
		return 0, "unknown"
	}
	switch {
	case hand.Category >= poker.ThreeOfAKind:
		return 4, hand.Describe()
	case hand.Category == poker.TwoPair:
		return 3, hand.Describe()
	case hand.Category == poker.OnePair:
		return 2, hand.Describe()
	}
	return 0, hand.Describe()
}
