package feed

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/headsup/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wireMessage decodes the fields the tests care about.
type wireMessage struct {
	Type  string `json:"type"`
	State struct {
		HandNumber    int      `json:"hand_number"`
		Stage         string   `json:"stage"`
		Pot           int      `json:"pot"`
		PlayerCards   []string `json:"player_cards"`
		OpponentCards []string `json:"opponent_cards"`
		Legal         any      `json:"legal"`
		Log           []struct {
			Text string `json:"text"`
		} `json:"log"`
	} `json:"state"`
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func checker() game.Policy {
	return game.PolicyFunc(func(v game.View) game.Action {
		if v.Legal.Can(game.Check) {
			return game.Action{Kind: game.Check}
		}
		return game.Action{Kind: game.Call}
	})
}

func newFeed(t *testing.T) (*Server, *game.Engine, *httptest.Server) {
	t.Helper()
	s := NewServer(quietLogger())
	e := game.NewEngine(game.DefaultConfig(), checker(),
		game.WithLogger(quietLogger()),
		game.WithRNG(rand.New(rand.NewSource(5))))
	e.Subscribe(s)

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, e, ts
}

func getState(t *testing.T, ts *httptest.Server) (int, wireMessage) {
	t.Helper()
	resp, err := http.Get(ts.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	var msg wireMessage
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	}
	return resp.StatusCode, msg
}

func TestHealth(t *testing.T) {
	t.Parallel()

	_, _, ts := newFeed(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/state", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStateHidesPlayerCards(t *testing.T) {
	t.Parallel()

	_, e, ts := newFeed(t)

	status, _ := getState(t, ts)
	assert.Equal(t, http.StatusServiceUnavailable, status, "nothing to show before the first hand")

	require.NoError(t, e.NextHand(context.Background()))

	status, msg := getState(t, ts)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hand_start", msg.Type)
	assert.Equal(t, 1, msg.State.HandNumber)
	assert.Equal(t, "preflop", msg.State.Stage)
	assert.Equal(t, 30, msg.State.Pot)
	assert.Empty(t, msg.State.PlayerCards)
	assert.Empty(t, msg.State.OpponentCards)
	assert.Nil(t, msg.State.Legal)
	assert.Len(t, e.Snapshot().PlayerCards, 2, "the engine snapshot itself is untouched")
}

func TestWebSocketStreamsEvents(t *testing.T) {
	t.Parallel()

	s, e, ts := newFeed(t)
	ctx := context.Background()
	require.NoError(t, e.NextHand(ctx))

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() wireMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg wireMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	first := read()
	assert.Equal(t, "snapshot", first.Type)
	assert.Equal(t, 1, first.State.HandNumber)
	assert.Equal(t, 1, s.Clients())

	// Opponent is small blind and completes; the player checks the option.
	_, err = e.AdvanceOpponent(ctx)
	require.NoError(t, err)
	msg := read()
	assert.Equal(t, "action", msg.Type)
	assert.Equal(t, 40, msg.State.Pot)

	_, err = e.SubmitAction(ctx, game.Player, game.Action{Kind: game.Check})
	require.NoError(t, err)
	assert.Equal(t, "action", read().Type)
	flop := read()
	assert.Equal(t, "stage_change", flop.Type)
	assert.Equal(t, "flop", flop.State.Stage)
	assert.Empty(t, flop.State.PlayerCards)

	// Check the hand down to showdown: the player's cards are revealed then.
	var last wireMessage
	for !e.State().HandOver {
		if e.State().TurnHolder == game.Player {
			_, err = e.SubmitAction(ctx, game.Player, game.Action{Kind: game.Check})
		} else {
			_, err = e.AdvanceOpponent(ctx)
		}
		require.NoError(t, err)
	}
	for last.Type != "hand_end" {
		last = read()
	}
	assert.Len(t, last.State.PlayerCards, 2)
	assert.Len(t, last.State.OpponentCards, 2)
	assert.NotEmpty(t, last.State.Log)
}

func TestSlowClientIsDropped(t *testing.T) {
	t.Parallel()

	s, e, ts := newFeed(t)
	require.NoError(t, e.NextHand(context.Background()))

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	// Never read: the buffer fills and the client is disconnected.
	event := game.HandStartEvent{HandNumber: 1}
	for i := 0; i < 200000 && s.Clients() > 0; i++ {
		s.OnEvent(event)
	}
	assert.Equal(t, 0, s.Clients())
}

func TestServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	s := NewServer(quietLogger())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
