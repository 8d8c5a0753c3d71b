package bot

import (
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestNewKnowsEveryStrategy(t *testing.T) {
	t.Parallel()

	for _, name := range Strategies() {
		p, err := New(name, rand.New(rand.NewSource(1)), quietLogger())
		require.NoError(t, err, name)
		assert.NotNil(t, p)
		assert.True(t, ValidStrategy(name))
	}

	_, err := New("telepathic", nil, quietLogger())
	assert.Error(t, err)
	assert.False(t, ValidStrategy("telepathic"))
}

// TestPoliciesOnlyChooseLegalActions drives real games and submits the
// policy's choice directly, so any illegal decision fails the test rather
// than being replaced by the engine's fallback.
func TestPoliciesOnlyChooseLegalActions(t *testing.T) {
	t.Parallel()

	for _, name := range Strategies() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			rng := rand.New(rand.NewSource(11))
			opponent, err := New(name, rng, quietLogger())
			require.NoError(t, err)
			player := NewRandom(rand.New(rand.NewSource(12)), quietLogger())

			e := game.NewEngine(game.DefaultConfig(), opponent,
				game.WithLogger(quietLogger()), game.WithRNG(rand.New(rand.NewSource(13))))

			for hands := 0; hands < 300; {
				st := e.State()
				switch {
				case st.GameOver:
					e.Restart()
				case st.HandOver:
					require.NoError(t, e.NextHand(ctx))
					hands++
				default:
					actor := st.TurnHolder
					policy := game.Policy(player)
					if actor == game.Opponent {
						policy = opponent
					}
					view := e.View(actor)
					action := policy.Decide(view)
					_, err := e.SubmitAction(ctx, actor, action)
					require.NoError(t, err, "%s chose %s facing %+v", actor, action, view.Legal)
				}
				require.Equal(t, 2000, e.State().ChipsInPlay())
			}
		})
	}
}

func preflopView(isSmallBlind, first bool, toCall int) game.View {
	return game.View{
		Stage:            game.Preflop,
		Hole:             poker.MustParseCards("7c 2d"),
		Pot:              30,
		Stack:            990,
		OpponentStack:    980,
		RoundBet:         20 - toCall,
		OpponentRoundBet: 20,
		CurrentBet:       20,
		ToCall:           toCall,
		SmallBlind:       10,
		BigBlind:         20,
		IsSmallBlind:     isSmallBlind,
		RoundFirstAction: first,
		NeedsResponse:    toCall > 0,
		LastRaiseSize:    20,
		Legal: game.LegalActions{
			Actions:    []game.ActionKind{game.Fold, game.Call, game.Raise, game.AllIn},
			CallAmount: toCall,
			MinRaise:   40,
			MaxRaise:   20 - toCall + 990,
		},
	}
}

func TestRandomAlwaysCompletesSmallBlind(t *testing.T) {
	t.Parallel()

	r := NewRandom(rand.New(rand.NewSource(3)), quietLogger())
	for i := 0; i < 100; i++ {
		assert.Equal(t, game.Action{Kind: game.Call}, r.Decide(preflopView(true, true, 10)))
	}
}

func TestRandomGoesAllInWhenCallingCostsTheStack(t *testing.T) {
	t.Parallel()

	v := preflopView(false, false, 500)
	v.Stack = 400
	v.Legal = game.LegalActions{Actions: []game.ActionKind{game.Fold, game.Call, game.AllIn}, CallAmount: 400, MinRaise: 400, MaxRaise: 400}

	r := NewRandom(rand.New(rand.NewSource(4)), quietLogger())
	for i := 0; i < 50; i++ {
		assert.Equal(t, game.AllIn, r.Decide(v).Kind)
	}
}

func TestRandomDistributionFacingBet(t *testing.T) {
	t.Parallel()

	r := NewRandom(rand.New(rand.NewSource(5)), quietLogger())
	v := preflopView(false, false, 20)
	v.Stage = game.Flop
	v.LastRaiseSize = 20

	counts := map[game.ActionKind]int{}
	for i := 0; i < 10000; i++ {
		a := r.Decide(v)
		counts[a.Kind]++
		if a.Kind == game.Raise {
			assert.Equal(t, 40, a.Amount)
		}
	}
	assert.InDelta(t, 2000, counts[game.Fold], 300)
	assert.InDelta(t, 5000, counts[game.Call], 300)
	assert.InDelta(t, 3000, counts[game.Raise], 300)
}

func TestRandomSameSeedSameDecisions(t *testing.T) {
	t.Parallel()

	a := NewRandom(rand.New(rand.NewSource(9)), quietLogger())
	b := NewRandom(rand.New(rand.NewSource(9)), quietLogger())
	v := preflopView(false, false, 20)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Decide(v), b.Decide(v))
	}
}

func TestCallingStation(t *testing.T) {
	t.Parallel()

	c := NewCallingStation(quietLogger())
	assert.Equal(t, game.Call, c.Decide(preflopView(true, true, 10)).Kind)

	free := preflopView(false, false, 0)
	free.Legal.Actions = []game.ActionKind{game.Check, game.Raise, game.AllIn}
	assert.Equal(t, game.Check, c.Decide(free).Kind)
}

func TestAggressiveRaisesStrongHands(t *testing.T) {
	t.Parallel()

	a := NewAggressive(quietLogger())

	v := preflopView(true, true, 10)
	v.Hole = poker.MustParseCards("As Ah")
	assert.Equal(t, game.Action{Kind: game.Raise, Amount: 60}, a.Decide(v))

	v.Hole = poker.MustParseCards("7c 2d")
	assert.Equal(t, game.Call, a.Decide(v).Kind)

	flop := preflopView(false, true, 0)
	flop.Stage = game.Flop
	flop.CurrentBet = 0
	flop.RoundBet = 0
	flop.OpponentRoundBet = 0
	flop.Legal = game.LegalActions{Actions: []game.ActionKind{game.Check, game.Raise, game.AllIn}, MinRaise: 20, MaxRaise: 990}
	flop.Hole = poker.MustParseCards("Kc Qd")
	flop.Community = poker.MustParseCards("Kh 7s 2c")
	assert.Equal(t, game.Action{Kind: game.Raise, Amount: 20}, a.Decide(flop))

	flop.Community = poker.MustParseCards("9h 7s 2c")
	assert.Equal(t, game.Check, a.Decide(flop).Kind)
}
