package history

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/game"
)

// Logger writes hand boundaries to a logger.
type Logger struct {
	logger *log.Logger
}

func NewLogger(logger *log.Logger) *Logger {
	return &Logger{logger: logger.WithPrefix("history")}
}

func (l *Logger) RecordHandStart(_ context.Context, hand game.HandContext) error {
	l.logger.Debug("Hand started",
		"game", hand.GameID,
		"hand", hand.HandNumber,
		"player_sb", hand.PlayerIsSmallBlind,
		"stacks", hand.StartStacks)
	return nil
}

func (l *Logger) RecordHandEnd(_ context.Context, hand game.HandContext, final game.FinalStacks) error {
	r := NewHandRecord(hand, final)
	l.logger.Info("Hand recorded",
		"hand", r.HandNumber,
		"winner", r.Winner,
		"pot", r.Pot,
		"board", r.Board,
		"net", r.Net(),
		"stacks", r.FinalStacks)
	if r.GameOver {
		l.logger.Info("Game recorded", "game", r.GameID, "hands", r.HandNumber, "stacks", r.FinalStacks)
	}
	return nil
}
