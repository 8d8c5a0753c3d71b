// Package history persists finished hands. Recorders implement
// game.HandRecorder and can be combined with Multi.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/poker"
)

// HandRecord is the stored form of one finished hand.
type HandRecord struct {
	GameID           uuid.UUID         `json:"game_id"`
	HandID           uuid.UUID         `json:"hand_id"`
	HandNumber       int               `json:"hand_number"`
	SmallBlind       int               `json:"small_blind"`
	BigBlind         int               `json:"big_blind"`
	PlayerSmallBlind bool              `json:"player_small_blind"`
	StartStacks      game.Stacks       `json:"start_stacks"`
	FinalStacks      game.Stacks       `json:"final_stacks"`
	Pot              int               `json:"pot"`
	Winner           string            `json:"winner"`
	Folded           bool              `json:"folded"`
	Board            string            `json:"board"`
	Hands            map[string]string `json:"hands,omitempty"`
	Actions          []string          `json:"actions"`
	StartedAt        time.Time         `json:"started_at"`
	EndedAt          time.Time         `json:"ended_at"`
	GameOver         bool              `json:"game_over"`
}

// NewHandRecord flattens what the engine reports at the end of a hand.
func NewHandRecord(hand game.HandContext, final game.FinalStacks) HandRecord {
	r := HandRecord{
		GameID:           hand.GameID,
		HandID:           hand.HandID,
		HandNumber:       hand.HandNumber,
		SmallBlind:       hand.SmallBlind,
		BigBlind:         hand.BigBlind,
		PlayerSmallBlind: hand.PlayerIsSmallBlind,
		StartStacks:      hand.StartStacks,
		FinalStacks:      final.Stacks,
		Pot:              final.Result.Pot,
		Winner:           winner(final.Result),
		Folded:           final.Result.Folded,
		Board:            poker.FormatCards(final.Board),
		Actions:          make([]string, 0, len(final.Log)),
		StartedAt:        hand.StartedAt.UTC(),
		EndedAt:          final.EndedAt.UTC(),
		GameOver:         final.GameOver,
	}
	for _, entry := range final.Log {
		r.Actions = append(r.Actions, entry.Text)
	}
	if len(final.Result.Hands) > 0 {
		r.Hands = make(map[string]string, len(final.Result.Hands))
		for actor, h := range final.Result.Hands {
			r.Hands[actor.String()] = h.String()
		}
	}
	return r
}

// Net returns the player's chip change over the hand.
func (r HandRecord) Net() int {
	return r.FinalStacks.Player - r.StartStacks.Player
}

func winner(result game.HandResult) string {
	if result.Winner == nil {
		return "split"
	}
	return result.Winner.String()
}

// Multi fans each call out to every recorder. All recorders are called even
// when one fails; the errors are joined.
type Multi []game.HandRecorder

func (m Multi) RecordHandStart(ctx context.Context, hand game.HandContext) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordHandStart(ctx, hand); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordHandEnd(ctx context.Context, hand game.HandContext, final game.FinalStacks) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordHandEnd(ctx, hand, final); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
