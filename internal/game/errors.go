package game

import (
	"errors"
	"fmt"
)

var (
	ErrNotYourTurn    = errors.New("not your turn")
	ErrIllegalAction  = errors.New("illegal action")
	ErrRaiseTooSmall  = errors.New("raise below minimum")
	ErrRaiseTooLarge  = errors.New("raise exceeds stack")
	ErrHandOver       = errors.New("hand is over")
	ErrGameOver       = errors.New("game is over")
	ErrHandInProgress = errors.New("hand in progress")
	ErrGameInProgress = errors.New("game in progress")
	ErrSessionClosed  = errors.New("session closed")
)

// ActionError is returned when the engine rejects an action. The game
// state is unchanged.
type ActionError struct {
	Actor  Actor
	Action Action
	Err    error
	Detail string
}

func (e *ActionError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Actor, e.Action, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func reject(actor Actor, action Action, err error, format string, args ...any) *ActionError {
	return &ActionError{Actor: actor, Action: action, Err: err, Detail: fmt.Sprintf(format, args...)}
}
