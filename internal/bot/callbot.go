package bot

import (
	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/game"
)

// CallingStation checks when it can and calls everything else.
type CallingStation struct {
	logger *log.Logger
}

// NewCallingStation creates a CallingStation policy
func NewCallingStation(logger *log.Logger) *CallingStation {
	return &CallingStation{logger: logger}
}

func (c *CallingStation) Decide(v game.View) game.Action {
	action := findAction(v, game.Action{Kind: game.Check}, game.Call, game.AllIn)
	c.logger.Debug("Decision", "stage", v.Stage, "to_call", v.ToCall, "action", action)
	return action
}
