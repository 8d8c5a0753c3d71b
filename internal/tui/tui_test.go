package tui

import (
	"context"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type fakeSession struct {
	mu        sync.Mutex
	snap      game.Snapshot
	submitted []game.Action
	restarts  int
	err       error
}

func (f *fakeSession) Submit(_ context.Context, action game.Action) (game.StateDelta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, action)
	return game.StateDelta{Action: action}, f.err
}

func (f *fakeSession) Restart(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	return f.err
}

func (f *fakeSession) Snapshot() game.Snapshot {
	return f.snap
}

func toActSnapshot() game.Snapshot {
	return game.Snapshot{
		HandNumber:  1,
		SmallBlind:  10,
		BigBlind:    20,
		Pot:         30,
		CurrentBet:  20,
		PlayerCards: poker.MustParseCards("As Kd"),
		Legal: &game.LegalActions{
			Actions:    []game.ActionKind{game.Fold, game.Call, game.Raise, game.AllIn},
			CallAmount: 10,
			MinRaise:   40,
			MaxRaise:   1000,
		},
		RaiseSuggestions: []game.RaiseSuggestion{{Label: "2BB", Amount: 40}, {Label: "3BB", Amount: 60}, {Label: "pot", Amount: 70}},
	}
}

func newModel(session *fakeSession) *TUIModel {
	return NewTUIModel(context.Background(), session, NewBridge(quietLogger()), quietLogger())
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	snap := toActSnapshot()
	postflop := toActSnapshot()
	postflop.RaiseSuggestions = []game.RaiseSuggestion{{Label: "50% pot", Amount: 55}, {Label: "pot", Amount: 90}}

	tests := []struct {
		name   string
		input  string
		snap   game.Snapshot
		want   command
		action *game.Action
		err    bool
	}{
		{name: "quit", input: "q", want: command{quit: true}},
		{name: "restart", input: "new", want: command{restart: true}},
		{name: "help", input: "?", want: command{help: true}},
		{name: "call", input: "call", snap: snap, action: &game.Action{Kind: game.Call}},
		{name: "raise amount", input: "raise 60", snap: snap, action: &game.Action{Kind: game.Raise, Amount: 60}},
		{name: "suggestion label", input: "pot", snap: snap, action: &game.Action{Kind: game.Raise, Amount: 70}},
		{name: "suggestion with prefix", input: "r 3BB", snap: snap, action: &game.Action{Kind: game.Raise, Amount: 60}},
		{name: "pot fraction", input: "50%pot", snap: postflop, action: &game.Action{Kind: game.Raise, Amount: 55}},
		{name: "big blinds", input: "raise 2.5bb", snap: snap, action: &game.Action{Kind: game.Raise, Amount: 50}},
		{name: "bad big blinds", input: "raise xbb", snap: snap, err: true},
		{name: "unknown", input: "dance", snap: snap, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.input, tt.snap)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.action != nil {
				require.NotNil(t, got.action)
				assert.Equal(t, *tt.action, *got.action)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmitGoesThroughSession(t *testing.T) {
	t.Parallel()

	session := &fakeSession{snap: toActSnapshot()}
	m := newModel(session)

	cmd := m.handleInput("raise 60")
	require.NotNil(t, cmd)
	_, _ = m.Update(cmd())

	assert.Equal(t, []game.Action{{Kind: game.Raise, Amount: 60}}, session.submitted)
	assert.Empty(t, m.status)
}

func TestRejectedActionShowsError(t *testing.T) {
	t.Parallel()

	session := &fakeSession{snap: toActSnapshot(), err: game.ErrRaiseTooSmall}
	m := newModel(session)

	cmd := m.handleInput("raise 30")
	require.NotNil(t, cmd)
	_, _ = m.Update(cmd())

	assert.True(t, m.statusErr)
	assert.Equal(t, game.ErrRaiseTooSmall.Error(), m.status)
}

func TestInputOutsideTurnIsIgnored(t *testing.T) {
	t.Parallel()

	session := &fakeSession{snap: game.Snapshot{HandNumber: 1, BigBlind: 20}}
	m := newModel(session)

	assert.Nil(t, m.handleInput("call"))
	assert.Equal(t, "It is not your turn", m.status)
	assert.Empty(t, session.submitted)

	assert.Nil(t, m.handleInput("flop it"))
	assert.True(t, m.statusErr)
}

func TestRestartOnlyAfterGameOver(t *testing.T) {
	t.Parallel()

	session := &fakeSession{snap: game.Snapshot{HandNumber: 3}}
	m := newModel(session)

	assert.Nil(t, m.handleInput("new"))
	assert.Equal(t, 0, session.restarts)

	m.snapshot.GameOver = true
	m.AddLogEntry("old game")
	cmd := m.handleInput("new")
	require.NotNil(t, cmd)
	_, _ = m.Update(cmd())

	assert.Equal(t, 1, session.restarts)
	assert.Equal(t, "New game started", m.status)
	assert.Empty(t, m.Log())
}

func TestHelpAndQuit(t *testing.T) {
	t.Parallel()

	m := newModel(&fakeSession{})
	assert.Nil(t, m.handleInput("help"))
	assert.Len(t, m.Log(), len(helpLines))

	assert.NotNil(t, m.handleInput("quit"))
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestSessionDoneQuits(t *testing.T) {
	t.Parallel()

	m := newModel(&fakeSession{})
	_, cmd := m.Update(SessionDoneMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// drain feeds every queued engine event to the model.
func drain(m *TUIModel, b *Bridge) {
	for {
		select {
		case event := <-b.events:
			_, _ = m.Update(EventMsg{Event: event})
		default:
			return
		}
	}
}

func TestModelFollowsEngineEvents(t *testing.T) {
	t.Parallel()

	bridge := NewBridge(quietLogger())
	rng := rand.New(rand.NewSource(1))
	callOrCheck := game.PolicyFunc(func(v game.View) game.Action {
		if v.Legal.Can(game.Check) {
			return game.Action{Kind: game.Check}
		}
		return game.Action{Kind: game.Call}
	})
	e := game.NewEngine(game.DefaultConfig(), callOrCheck,
		game.WithLogger(quietLogger()),
		game.WithDeckSource(func() (*poker.Deck, error) {
			return poker.NewDeckWithTop(rng, poker.MustParseCards("Ah Kd 7c 2s Ac 9d 4h 3s Qc")...)
		}))
	e.Subscribe(bridge)

	ctx := context.Background()
	m := NewTUIModel(ctx, &fakeSession{snap: e.Snapshot()}, bridge, quietLogger())
	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	require.NoError(t, e.NextHand(ctx))
	_, err := e.AdvanceOpponent(ctx)
	require.NoError(t, err)
	drain(m, bridge)

	require.True(t, m.snapshot.PlayerToAct())
	transcript := strings.Join(m.Log(), "\n")
	assert.Contains(t, transcript, "=== Hand 1")
	assert.Contains(t, transcript, "opponent: calls 10")

	view := m.View()
	assert.Contains(t, view, "Hand #1 • preflop")
	assert.Contains(t, view, "[check]")
	assert.Contains(t, view, "[raise 40-1000]")

	_, err = e.SubmitAction(ctx, game.Player, game.Action{Kind: game.AllIn})
	require.NoError(t, err)
	_, err = e.AdvanceOpponent(ctx)
	require.NoError(t, err)
	drain(m, bridge)

	assert.True(t, m.snapshot.HandOver)
	assert.False(t, m.snapshot.PlayerToAct())
	assert.Contains(t, m.View(), "Their cards:")
}

func TestBridgeDropsWhenFull(t *testing.T) {
	t.Parallel()

	b := NewBridge(quietLogger())
	for range eventBuffer + 5 {
		b.OnEvent(game.HandStartEvent{HandNumber: 1})
	}
	assert.Len(t, b.events, eventBuffer)

	msg := b.next()()
	assert.IsType(t, EventMsg{}, msg)
}
