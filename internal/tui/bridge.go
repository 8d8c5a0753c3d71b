package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/game"
)

// Session is the part of game.Session the interface drives.
type Session interface {
	Submit(ctx context.Context, action game.Action) (game.StateDelta, error)
	Restart(ctx context.Context) error
	Snapshot() game.Snapshot
}

// EventMsg carries an engine event into the Bubble Tea program.
type EventMsg struct {
	Event game.GameEvent
}

// SessionDoneMsg reports that the session stopped running.
type SessionDoneMsg struct {
	Err error
}

// submitResultMsg is the engine's verdict on a submitted command.
type submitResultMsg struct {
	input string
	err   error
}

const eventBuffer = 1024

// Bridge moves engine events onto the UI goroutine. It implements
// game.EventSubscriber and never blocks the engine.
type Bridge struct {
	events chan game.GameEvent
	logger *log.Logger
}

// NewBridge creates a bridge; subscribe it to the engine before the session
// starts.
func NewBridge(logger *log.Logger) *Bridge {
	return &Bridge{
		events: make(chan game.GameEvent, eventBuffer),
		logger: logger.WithPrefix("bridge"),
	}
}

func (b *Bridge) OnEvent(event game.GameEvent) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn("Event buffer full, dropping event", "type", event.EventType())
	}
}

// next waits for the next event.
func (b *Bridge) next() tea.Cmd {
	return func() tea.Msg {
		return EventMsg{Event: <-b.events}
	}
}

// command is what a line of input asks for.
type command struct {
	quit    bool
	restart bool
	help    bool
	action  *game.Action
}

// parseCommand interprets a line typed by the player. Besides the actions
// understood by game.ParseAction it accepts the label of a suggested raise
// ("pot", "3bb", "50% pot"), optionally after "r" or "raise", and an amount
// in big blinds such as "raise 2.5bb".
func parseCommand(input string, snap game.Snapshot) (command, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	switch input {
	case "quit", "q", "exit":
		return command{quit: true}, nil
	case "new", "restart", "n":
		return command{restart: true}, nil
	case "help", "?", "h":
		return command{help: true}, nil
	}

	label := input
	for _, prefix := range []string{"raise ", "r ", "bet ", "b "} {
		label = strings.TrimPrefix(label, prefix)
	}
	for _, s := range snap.RaiseSuggestions {
		if label == strings.ToLower(s.Label) || label == strings.ReplaceAll(strings.ToLower(s.Label), " ", "") {
			return command{action: &game.Action{Kind: game.Raise, Amount: s.Amount}}, nil
		}
	}
	if bbs, ok := strings.CutSuffix(label, "bb"); ok && label != input && snap.BigBlind > 0 {
		n, err := strconv.ParseFloat(strings.TrimSpace(bbs), 64)
		if err != nil || n <= 0 {
			return command{}, fmt.Errorf("invalid amount %q", label)
		}
		return command{action: &game.Action{Kind: game.Raise, Amount: int(n * float64(snap.BigBlind))}}, nil
	}

	action, err := game.ParseAction(input)
	if err != nil {
		return command{}, err
	}
	return command{action: &action}, nil
}

// submit sends an action to the session off the UI goroutine.
func submit(ctx context.Context, session Session, input string, action game.Action) tea.Cmd {
	return func() tea.Msg {
		_, err := session.Submit(ctx, action)
		return submitResultMsg{input: input, err: err}
	}
}

func restart(ctx context.Context, session Session) tea.Cmd {
	return func() tea.Msg {
		return submitResultMsg{input: "new", err: session.Restart(ctx)}
	}
}

var helpLines = []string{
	"Commands:",
	"  check (k), call (c), fold (f), allin (a)",
	"  raise N (r N)  raise to a total of N chips",
	"  raise 3bb      raise to a number of big blinds",
	"  pot, 2bb, 50% pot ...  pick a suggested raise",
	"  new            start a new game once this one is over",
	"  quit (q)       leave",
}
