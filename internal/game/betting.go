package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Actor identifies one of the two parties at the table.
type Actor int

const (
	Player Actor = iota
	Opponent
)

func (a Actor) String() string {
	return [...]string{"player", "opponent"}[a&1]
}

// Other returns the opposing party.
func (a Actor) Other() Actor {
	return 1 - a
}

func (a Actor) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Stage represents the betting round
type Stage int

const (
	Preflop Stage = iota
	Flop
	Turn
	River
	Showdown
)

func (s Stage) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ActionKind represents a player action
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Raise
	AllIn
)

func (k ActionKind) String() string {
	return [...]string{"fold", "check", "call", "raise", "allin"}[k]
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Action is a decision submitted to the engine. Amount is only read for
// Raise and is the total the actor's round contribution is raised to.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`
}

func (a Action) String() string {
	if a.Kind == Raise {
		return fmt.Sprintf("raise to %d", a.Amount)
	}
	return a.Kind.String()
}

// ParseAction parses a typed command such as "call", "check", "fold",
// "allin", "raise 60" or "bet 40".
func ParseAction(input string) (Action, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}

	switch fields[0] {
	case "f", "fold":
		return Action{Kind: Fold}, nil
	case "k", "check":
		return Action{Kind: Check}, nil
	case "c", "call":
		return Action{Kind: Call}, nil
	case "a", "allin", "all-in", "all", "shove":
		return Action{Kind: AllIn}, nil
	case "r", "raise", "b", "bet":
		if len(fields) < 2 {
			return Action{}, fmt.Errorf("%s needs an amount", fields[0])
		}
		amount, err := strconv.Atoi(fields[1])
		if err != nil || amount <= 0 {
			return Action{}, fmt.Errorf("invalid amount %q", fields[1])
		}
		return Action{Kind: Raise, Amount: amount}, nil
	}
	return Action{}, fmt.Errorf("unknown action %q", fields[0])
}

// LegalActions describes what the actor to move may do.
type LegalActions struct {
	Actions []ActionKind `json:"actions"`
	// CallAmount is the number of chips a call adds, capped at the stack.
	CallAmount int `json:"call_amount"`
	// MinRaise and MaxRaise bound the raise-to total. MaxRaise is all-in.
	MinRaise int `json:"min_raise"`
	MaxRaise int `json:"max_raise"`
}

// Can reports whether kind is among the legal actions.
func (l LegalActions) Can(kind ActionKind) bool {
	return slices.Contains(l.Actions, kind)
}

// RaiseSuggestion is a preset raise-to amount offered to the human player.
type RaiseSuggestion struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

// legalActions computes the options for seat, facing other.
func legalActions(seat, other *Seat, currentBet, bigBlind int) LegalActions {
	var l LegalActions
	toCall := max(currentBet-seat.RoundBet, 0)
	l.CallAmount = min(toCall, seat.Stack)
	l.MaxRaise = seat.RoundBet + seat.Stack
	l.MinRaise = min(currentBet+bigBlind, l.MaxRaise)

	canRaise := seat.Stack > toCall && !other.AllIn

	if toCall > 0 {
		l.Actions = append(l.Actions, Fold, Call)
	} else {
		l.Actions = append(l.Actions, Check)
	}
	if canRaise && l.MaxRaise >= currentBet+bigBlind {
		l.Actions = append(l.Actions, Raise)
	}
	if seat.Stack > 0 && (canRaise || seat.Stack <= toCall) {
		l.Actions = append(l.Actions, AllIn)
	}
	return l
}

// raiseSuggestions offers blind multiples preflop and pot fractions after.
func raiseSuggestions(stage Stage, pot, currentBet, bigBlind int, legal LegalActions) []RaiseSuggestion {
	if !legal.Can(Raise) {
		return nil
	}

	var raw []RaiseSuggestion
	if stage == Preflop {
		raw = []RaiseSuggestion{
			{"2BB", 2 * bigBlind},
			{"3BB", 3 * bigBlind},
			{"4BB", 4 * bigBlind},
			{"pot", bigBlind * 7 / 2},
		}
	} else {
		for _, pct := range []int{33, 50, 75, 100} {
			label := fmt.Sprintf("%d%% pot", pct)
			if pct == 100 {
				label = "pot"
			}
			raw = append(raw, RaiseSuggestion{label, currentBet + pot*pct/100})
		}
	}

	for i := range raw {
		raw[i].Amount = min(max(raw[i].Amount, legal.MinRaise), legal.MaxRaise)
	}
	slices.SortStableFunc(raw, func(a, b RaiseSuggestion) int { return a.Amount - b.Amount })

	var out []RaiseSuggestion
	for _, s := range raw {
		if len(out) > 0 && out[len(out)-1].Amount == s.Amount {
			continue
		}
		out = append(out, s)
	}
	return out
}
