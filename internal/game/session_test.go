package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passivePolicy() PolicyFunc {
	return func(v View) Action { return passiveAction(v.Legal) }
}

func TestSessionPlaysToGameOver(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	e := newTestEngine(t, passivePolicy())
	s := NewSession(e, SessionConfig{StopOnGameOver: true, Clock: quartz.NewMock(t), Logger: quietLogger()})

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	for {
		_, err := s.Submit(ctx, Action{Kind: AllIn})
		if errors.Is(err, ErrSessionClosed) {
			break
		}
		require.NoError(t, ctx.Err())
	}
	require.NoError(t, <-errc)

	snap := s.Snapshot()
	assert.True(t, snap.GameOver)
	require.NotNil(t, snap.GameWinner)
	assert.Equal(t, 2000, snap.Stacks.Player+snap.Stacks.Opponent)
	assert.Equal(t, 2000, snap.Stacks.Of(*snap.GameWinner))
}

func TestSessionOpponentWaitsForThinkDelay(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mockClock := quartz.NewMock(t)
	e := newTestEngine(t, scripted(Action{Kind: Call}), WithClock(mockClock))
	s := NewSession(e, SessionConfig{
		ThinkDelay: time.Second,
		HandPause:  time.Second,
		Clock:      mockClock,
		Logger:     quietLogger(),
	})

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Snapshot().HandNumber == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Len(t, s.Snapshot().Log, 2, "only blinds before the think delay elapses")

	_, err := s.Submit(ctx, Action{Kind: Check})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.ErrorIs(t, s.Restart(ctx), ErrGameInProgress)

	require.Eventually(t, func() bool {
		mockClock.Advance(time.Second).MustWait(ctx)
		return s.Snapshot().PlayerToAct()
	}, 5*time.Second, 10*time.Millisecond)

	delta, err := s.Submit(ctx, Action{Kind: Check})
	require.NoError(t, err)
	assert.Equal(t, Flop, delta.StageAfter)

	snap := s.Snapshot()
	assert.Equal(t, Flop, snap.Stage)
	assert.Equal(t, Opponent, snap.Turn, "small blind acts first after the flop")
	assert.False(t, snap.PlayerToAct())

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	_, err = s.Submit(context.Background(), Action{Kind: Check})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionRestartAfterGameOver(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	e := newTestEngine(t, passivePolicy(),
		WithStacks(20, 1000),
		WithDeckSource(stackedDecks(t, "7c 2d As Ad Kh 9s 4c 3h Jd")))
	s := NewSession(e, SessionConfig{Clock: quartz.NewMock(t), Logger: quietLogger()})

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Snapshot().GameOver }, 5*time.Second, 10*time.Millisecond)
	first := s.Snapshot().GameID

	require.NoError(t, s.Restart(ctx))
	snap := s.Snapshot()
	assert.NotEqual(t, first, snap.GameID)
	assert.Equal(t, 1, snap.HandNumber)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}
