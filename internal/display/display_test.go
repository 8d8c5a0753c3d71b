package display

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkOrCall() game.Policy {
	return game.PolicyFunc(func(v game.View) game.Action {
		if v.Legal.Can(game.Check) {
			return game.Action{Kind: game.Check}
		}
		return game.Action{Kind: game.Call}
	})
}

// newEngine deals hand one from a stacked deck: player Ah Kd, opponent
// 7c 2s, board Ac 9d 4h 3s Qc.
func newEngine(t *testing.T, sub game.EventSubscriber) *game.Engine {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	e := game.NewEngine(game.DefaultConfig(), checkOrCall(),
		game.WithLogger(log.NewWithOptions(io.Discard, log.Options{})),
		game.WithDeckSource(func() (*poker.Deck, error) {
			return poker.NewDeckWithTop(rng, poker.MustParseCards("Ah Kd 7c 2s Ac 9d 4h 3s Qc")...)
		}))
	e.Subscribe(sub)
	return e
}

func TestPrinterTranscript(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{BigBlinds: true, Perspective: true}, true)
	e := newEngine(t, p)
	ctx := context.Background()

	require.NoError(t, e.NextHand(ctx))
	_, err := e.AdvanceOpponent(ctx)
	require.NoError(t, err)
	_, err = e.SubmitAction(ctx, game.Player, game.Action{Kind: game.Raise, Amount: 60})
	require.NoError(t, err)
	for !e.State().HandOver {
		if e.State().TurnHolder == game.Player {
			_, err = e.SubmitAction(ctx, game.Player, game.Action{Kind: game.Check})
		} else {
			_, err = e.AdvanceOpponent(ctx)
		}
		require.NoError(t, err)
	}

	out := buf.String()
	assert.Contains(t, out, "=== Hand 1 • blinds 10/20 • small blind: opponent ===")
	assert.Contains(t, out, "Your cards: A♥ K♦")
	assert.Contains(t, out, "Stacks: player 980 (49 BB), opponent 990 (49.5 BB)")
	assert.Contains(t, out, "opponent: calls 10 (0.5 BB) (pot 40)")
	assert.Contains(t, out, "Your turn: check | raise 40-1000 | allin 1000")
	assert.Contains(t, out, "you: raises to 60 (3 BB) (pot 80)")
	assert.Contains(t, out, "opponent: calls 40 (2 BB) (pot 120)")
	assert.Contains(t, out, "*** FLOP *** [A♣ 9♦ 4♥]")
	assert.Contains(t, out, "*** TURN *** [A♣ 9♦ 4♥] [3♠]")
	assert.Contains(t, out, "*** RIVER *** [A♣ 9♦ 4♥ 3♠] [Q♣]")
	assert.Contains(t, out, "player shows A♥ K♦ (One Pair, Aces)")
	assert.Contains(t, out, "opponent shows 7♣ 2♠")
	assert.Contains(t, out, "You win 120 (6 BB)")
	assert.Contains(t, out, "Stacks: player 1060 (53 BB), opponent 940 (47 BB)")
	assert.NotContains(t, out, "\x1b[", "no escape codes without colour")
}

func TestFormatterOptions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := NewFormatter(&buf, Options{})
	snap := game.Snapshot{BigBlind: 20}

	assert.Equal(t, "60", f.Amount(snap, 60))
	assert.Equal(t, "A♠ 10♦", f.Cards(poker.MustParseCards("As Td")))
	assert.Equal(t, "*** PREFLOP ***", f.FormatStreet(game.Preflop, nil))
	assert.Equal(t, "*** SHOWDOWN *** [2♣ 3♣ 4♣ 5♣ 6♣]", f.FormatStreet(game.Showdown, poker.MustParseCards("2c 3c 4c 5c 6c")))
	assert.Empty(t, f.Prompt(snap), "no prompt when the player is not to act")

	winner := game.Opponent
	end := f.Format(game.GameOverEvent{Winner: winner})
	assert.Equal(t, "Game over: opponent wins the match", end)

	bb := NewFormatter(&buf, Options{BigBlinds: true})
	assert.Equal(t, "30 (1.5 BB)", bb.Amount(snap, 30))
	assert.Equal(t, "0", bb.Amount(game.Snapshot{}, 0))
}

func TestPrinterSplitPot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{}, false)
	rng := rand.New(rand.NewSource(1))
	e := game.NewEngine(game.DefaultConfig(), checkOrCall(),
		game.WithLogger(log.NewWithOptions(io.Discard, log.Options{})),
		game.WithDeckSource(func() (*poker.Deck, error) {
			// Both play the broadway straight on the board.
			return poker.NewDeckWithTop(rng, poker.MustParseCards("2c 3d 2h 3s Ts Jd Qh Kc Ac")...)
		}))
	e.Subscribe(p)

	require.NoError(t, e.PlayGame(context.Background(), checkOrCall(), 1))
	out := buf.String()
	assert.Contains(t, out, "Split pot 40: player 20, opponent 20")
	assert.False(t, strings.Contains(out, "Your turn"), "prompts are off")
}
