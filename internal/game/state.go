package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/lox/headsup/poker"
)

// Seat is one party's chips and cards.
type Seat struct {
	Stack    int
	RoundBet int // contribution in the current betting round
	HandBet  int // contribution in the current hand
	Hole     []poker.Card
	Acted    bool // acted since the round opened or the last bet or raise
	AllIn    bool
	Folded   bool
}

func (s *Seat) commit(amount int) int {
	amount = min(amount, s.Stack)
	s.Stack -= amount
	s.RoundBet += amount
	s.HandBet += amount
	if s.Stack == 0 {
		s.AllIn = true
	}
	return amount
}

func (s *Seat) refund(amount int) {
	s.Stack += amount
	s.RoundBet -= amount
	s.HandBet -= amount
	if amount > 0 {
		s.AllIn = false
	}
}

// Stacks is a pair of chip counts.
type Stacks struct {
	Player   int `json:"player"`
	Opponent int `json:"opponent"`
}

// Of returns the count for actor.
func (s Stacks) Of(a Actor) int {
	if a == Player {
		return s.Player
	}
	return s.Opponent
}

// LogKind classifies an ActionLog entry.
type LogKind string

const (
	LogBlind  LogKind = "blind"
	LogAction LogKind = "action"
	LogRefund LogKind = "refund"
	LogStage  LogKind = "stage"
	LogWin    LogKind = "win"
)

// LogEntry is one line in the hand's action log.
type LogEntry struct {
	Kind   LogKind     `json:"kind"`
	Stage  Stage       `json:"stage"`
	Actor  *Actor      `json:"actor,omitempty"`
	Action *ActionKind `json:"action,omitempty"`
	Amount int         `json:"amount,omitempty"`
	Pot    int         `json:"pot"`
	Text   string      `json:"text"`
	At     time.Time   `json:"at"`
}

// HandResult describes how a hand ended.
type HandResult struct {
	// Winner is nil for a split pot.
	Winner  *Actor                        `json:"winner,omitempty"`
	Folded  bool                          `json:"folded"`
	Pot     int                           `json:"pot"`
	Payouts Stacks                        `json:"payouts"`
	Hands   map[Actor]poker.EvaluatedHand `json:"hands,omitempty"`
}

// Split reports whether the pot was divided.
func (r HandResult) Split() bool {
	return r.Winner == nil
}

// GameState is the whole game, owned and mutated by one Engine. Only the
// stacks and the blind rotation carry from one hand to the next.
type GameState struct {
	GameID     uuid.UUID
	HandID     uuid.UUID
	HandNumber int

	Stage     Stage
	Pot       int
	Seats     [2]Seat
	Community []poker.Card

	CurrentBet         int
	SmallBlind         int
	BigBlind           int
	IsPlayerSmallBlind bool

	TurnHolder       Actor
	RoundFirstAction bool
	NeedsResponse    bool
	LastRaiseSize    int

	ActionLog []LogEntry

	HandOver   bool
	GameOver   bool
	Result     *HandResult
	GameWinner *Actor
}

// Seat returns the seat of actor.
func (s *GameState) Seat(a Actor) *Seat {
	return &s.Seats[a]
}

// SmallBlindActor returns who posts the small blind this hand.
func (s *GameState) SmallBlindActor() Actor {
	if s.IsPlayerSmallBlind {
		return Player
	}
	return Opponent
}

// Stacks returns both stacks.
func (s *GameState) Stacks() Stacks {
	return Stacks{Player: s.Seats[Player].Stack, Opponent: s.Seats[Opponent].Stack}
}

// ChipsInPlay is the conserved total: both stacks plus the pot.
func (s *GameState) ChipsInPlay() int {
	return s.Seats[Player].Stack + s.Seats[Opponent].Stack + s.Pot
}

func actorPtr(a Actor) *Actor {
	return &a
}

func kindPtr(k ActionKind) *ActionKind {
	return &k
}
