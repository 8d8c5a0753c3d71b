package game

import (
	"context"
	"fmt"
)

// PlayHand deals the next hand and plays it to the end, deciding for the
// human seat with player. Used by simulations and tests.
func (e *Engine) PlayHand(ctx context.Context, player Policy) (HandResult, error) {
	if err := e.NextHand(ctx); err != nil {
		return HandResult{}, err
	}
	for !e.state.HandOver {
		if err := ctx.Err(); err != nil {
			return HandResult{}, err
		}
		var err error
		if e.state.TurnHolder == Player {
			_, err = e.advance(ctx, Player, player)
		} else {
			_, err = e.AdvanceOpponent(ctx)
		}
		if err != nil {
			return HandResult{}, fmt.Errorf("hand %d: %w", e.state.HandNumber, err)
		}
	}
	return *e.state.Result, nil
}

// PlayGame plays hands until the game is over or maxHands have been played.
// maxHands <= 0 means no limit.
func (e *Engine) PlayGame(ctx context.Context, player Policy, maxHands int) error {
	for played := 0; !e.state.GameOver && (maxHands <= 0 || played < maxHands); played++ {
		if _, err := e.PlayHand(ctx, player); err != nil {
			return err
		}
	}
	return nil
}
