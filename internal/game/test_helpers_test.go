package game

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/poker"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.DebugLevel})
}

// stackedDecks deals the given layouts in order, one per hand. Each layout
// lists player hole, opponent hole, flop, turn and river.
func stackedDecks(t *testing.T, layouts ...string) func() (*poker.Deck, error) {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	next := 0
	return func() (*poker.Deck, error) {
		if next >= len(layouts) {
			return poker.NewDeck(rng), nil
		}
		top := poker.MustParseCards(layouts[next])
		next++
		return poker.NewDeckWithTop(rng, top...)
	}
}

// scripted plays the given actions in order, then checks or calls.
func scripted(actions ...Action) PolicyFunc {
	var mu sync.Mutex
	return func(v View) Action {
		mu.Lock()
		defer mu.Unlock()
		if len(actions) == 0 {
			return passiveAction(v.Legal)
		}
		a := actions[0]
		actions = actions[1:]
		return a
	}
}

// randomPolicy picks uniformly among the legal actions.
func randomPolicy(rng *rand.Rand) PolicyFunc {
	return func(v View) Action {
		kind := v.Legal.Actions[rng.Intn(len(v.Legal.Actions))]
		if kind == Raise {
			return Action{Kind: Raise, Amount: v.Legal.MinRaise + rng.Intn(v.Legal.MaxRaise-v.Legal.MinRaise+1)}
		}
		return Action{Kind: kind}
	}
}

func newTestEngine(t *testing.T, policy Policy, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithRNG(rand.New(rand.NewSource(42)))}, opts...)
	return NewEngine(DefaultConfig(), policy, opts...)
}

func mustSubmit(t *testing.T, e *Engine, actor Actor, action Action) StateDelta {
	t.Helper()
	delta, err := e.SubmitAction(context.Background(), actor, action)
	require.NoError(t, err, "%s %s", actor, action)
	return delta
}

func mustAdvance(t *testing.T, e *Engine) StateDelta {
	t.Helper()
	delta, err := e.AdvanceOpponent(context.Background())
	require.NoError(t, err)
	return delta
}

type recordedEvents struct {
	mu     sync.Mutex
	events []GameEvent
}

func (r *recordedEvents) OnEvent(event GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordedEvents) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}
