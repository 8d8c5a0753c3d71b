package game

import (
	"slices"

	"github.com/lox/headsup/poker"
)

// Snapshot is a copy of the game as the human player may see it. The
// opponent's hole cards are only included once shown at showdown.
type Snapshot struct {
	GameID     string `json:"game_id"`
	HandID     string `json:"hand_id"`
	HandNumber int    `json:"hand_number"`

	Stage      Stage `json:"stage"`
	Pot        int   `json:"pot"`
	CurrentBet int   `json:"current_bet"`
	SmallBlind int   `json:"small_blind"`
	BigBlind   int   `json:"big_blind"`

	PlayerIsSmallBlind bool  `json:"player_is_small_blind"`
	Turn               Actor `json:"turn"`

	Stacks        Stacks `json:"stacks"`
	RoundBets     Stacks `json:"round_bets"`
	PlayerAllIn   bool   `json:"player_all_in"`
	OpponentAllIn bool   `json:"opponent_all_in"`

	PlayerCards   []poker.Card `json:"player_cards"`
	OpponentCards []poker.Card `json:"opponent_cards,omitempty"`
	Community     []poker.Card `json:"community"`

	// Legal is set when the human player is to act.
	Legal            *LegalActions     `json:"legal,omitempty"`
	RaiseSuggestions []RaiseSuggestion `json:"raise_suggestions,omitempty"`

	Log []LogEntry `json:"log"`

	HandOver   bool        `json:"hand_over"`
	GameOver   bool        `json:"game_over"`
	Result     *HandResult `json:"result,omitempty"`
	GameWinner *Actor      `json:"game_winner,omitempty"`
}

// PlayerToAct reports whether the human player has a decision pending.
func (s Snapshot) PlayerToAct() bool {
	return s.Legal != nil
}

// InBigBlinds expresses chips in big blinds.
func (s Snapshot) InBigBlinds(chips int) float64 {
	if s.BigBlind == 0 {
		return 0
	}
	return float64(chips) / float64(s.BigBlind)
}

// Redacted returns a copy without the human player's hole cards, for
// spectators, unless the hand reached showdown.
func (s Snapshot) Redacted() Snapshot {
	if s.Result != nil && !s.Result.Folded {
		return s
	}
	s.PlayerCards = nil
	s.Legal = nil
	s.RaiseSuggestions = nil
	return s
}

// View is the read-only picture of the game handed to a Policy: its own
// hole cards, the board and the betting state, never the other party's cards.
type View struct {
	Actor Actor
	Stage Stage

	Hole      []poker.Card
	Community []poker.Card

	Pot              int
	Stack            int
	OpponentStack    int
	RoundBet         int
	OpponentRoundBet int
	CurrentBet       int
	ToCall           int

	SmallBlind   int
	BigBlind     int
	IsSmallBlind bool

	RoundFirstAction bool
	NeedsResponse    bool
	LastRaiseSize    int
	HandNumber       int

	Legal LegalActions
}

func (e *Engine) snapshot() Snapshot {
	s := e.state
	snap := Snapshot{
		GameID:             s.GameID.String(),
		HandID:             s.HandID.String(),
		HandNumber:         s.HandNumber,
		Stage:              s.Stage,
		Pot:                s.Pot,
		CurrentBet:         s.CurrentBet,
		SmallBlind:         s.SmallBlind,
		BigBlind:           s.BigBlind,
		PlayerIsSmallBlind: s.IsPlayerSmallBlind,
		Turn:               s.TurnHolder,
		Stacks:             s.Stacks(),
		RoundBets:          Stacks{Player: s.Seats[Player].RoundBet, Opponent: s.Seats[Opponent].RoundBet},
		PlayerAllIn:        s.Seats[Player].AllIn,
		OpponentAllIn:      s.Seats[Opponent].AllIn,
		PlayerCards:        slices.Clone(s.Seats[Player].Hole),
		Community:          slices.Clone(s.Community),
		Log:                slices.Clone(s.ActionLog),
		HandOver:           s.HandOver,
		GameOver:           s.GameOver,
		GameWinner:         s.GameWinner,
	}
	if s.Result != nil {
		result := *s.Result
		snap.Result = &result
		if !result.Folded {
			snap.OpponentCards = slices.Clone(s.Seats[Opponent].Hole)
		}
	}
	if !s.HandOver && s.HandNumber > 0 && s.TurnHolder == Player && !e.roundComplete() {
		legal := e.legal(Player)
		snap.Legal = &legal
		snap.RaiseSuggestions = raiseSuggestions(s.Stage, s.Pot, s.CurrentBet, s.BigBlind, legal)
	}
	return snap
}

func (e *Engine) view(actor Actor) View {
	s := e.state
	seat, other := s.Seat(actor), s.Seat(actor.Other())
	return View{
		Actor:            actor,
		Stage:            s.Stage,
		Hole:             slices.Clone(seat.Hole),
		Community:        slices.Clone(s.Community),
		Pot:              s.Pot,
		Stack:            seat.Stack,
		OpponentStack:    other.Stack,
		RoundBet:         seat.RoundBet,
		OpponentRoundBet: other.RoundBet,
		CurrentBet:       s.CurrentBet,
		ToCall:           max(s.CurrentBet-seat.RoundBet, 0),
		SmallBlind:       s.SmallBlind,
		BigBlind:         s.BigBlind,
		IsSmallBlind:     s.SmallBlindActor() == actor,
		RoundFirstAction: s.RoundFirstAction,
		NeedsResponse:    s.NeedsResponse,
		LastRaiseSize:    s.LastRaiseSize,
		HandNumber:       s.HandNumber,
		Legal:            e.legal(actor),
	}
}
