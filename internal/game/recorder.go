package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lox/headsup/poker"
)

// HandContext identifies a hand to a HandRecorder.
type HandContext struct {
	GameID             uuid.UUID `json:"game_id"`
	HandID             uuid.UUID `json:"hand_id"`
	HandNumber         int       `json:"hand_number"`
	SmallBlind         int       `json:"small_blind"`
	BigBlind           int       `json:"big_blind"`
	PlayerIsSmallBlind bool      `json:"player_is_small_blind"`
	StartStacks        Stacks    `json:"start_stacks"`
	StartedAt          time.Time `json:"started_at"`
}

// FinalStacks is what a HandRecorder learns when a hand ends.
type FinalStacks struct {
	Stacks
	Result   HandResult   `json:"result"`
	Board    []poker.Card `json:"board"`
	Log      []LogEntry   `json:"log"`
	EndedAt  time.Time    `json:"ended_at"`
	GameOver bool         `json:"game_over"`
}

// HandRecorder persists hand boundaries. Calls are made with a bounded
// context; errors are logged by the engine and never stop the game.
type HandRecorder interface {
	RecordHandStart(ctx context.Context, hand HandContext) error
	RecordHandEnd(ctx context.Context, hand HandContext, final FinalStacks) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordHandStart(context.Context, HandContext) error { return nil }

func (NopRecorder) RecordHandEnd(context.Context, HandContext, FinalStacks) error { return nil }
