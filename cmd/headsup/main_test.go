package main

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/bot"
	"github.com/lox/headsup/internal/config"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestEval(t *testing.T) {
	tests := []struct {
		name    string
		cmd     EvalCmd
		want    []string
		wantErr string
	}{
		{
			name: "single hand",
			cmd:  EvalCmd{Hole: "AsKs", Board: "QsJsTs2d"},
			want: []string{"Hand:  Royal Flush", "Best:  As Ks Qs Js Ts"},
		},
		{
			name: "hand wins",
			cmd:  EvalCmd{Hole: "QhQd", Board: "7c7d2s9hJc", Against: "AhKc"},
			want: []string{"Two Pair, Queens and Sevens", "Opponent: One Pair, Sevens", "Hand wins"},
		},
		{
			name: "split",
			cmd:  EvalCmd{Hole: "2c3d", Board: "TsJdQhKcAc", Against: "4h5h"},
			want: []string{"Split pot"},
		},
		{name: "short board", cmd: EvalCmd{Hole: "AsKs", Board: "Qs"}, wantErr: "3 to 5 cards"},
		{name: "three hole cards", cmd: EvalCmd{Hole: "AsKsQs", Board: "2c3c4c"}, wantErr: "exactly 2 cards"},
		{name: "bad card", cmd: EvalCmd{Hole: "AsXx", Board: "2c3c4c"}, wantErr: "invalid"},
		{name: "duplicate with board", cmd: EvalCmd{Hole: "As2c", Board: "2c3c4c"}, wantErr: "duplicate"},
		{name: "shared hole card", cmd: EvalCmd{Hole: "AsKd", Board: "2c3c4c", Against: "AsQd"}, wantErr: "duplicate card found: As"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := tt.cmd.eval(&buf)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRunPlainHandlesCommands(t *testing.T) {
	engine := game.NewEngine(game.DefaultConfig(), game.PolicyFunc(func(game.View) game.Action {
		return game.Action{Kind: game.Check}
	}), game.WithLogger(quietLogger()))
	session := game.NewSession(engine, game.SessionConfig{Logger: quietLogger()})

	var out bytes.Buffer
	in := strings.NewReader("dance\n\nhelp\ncall\nquit\nfold\n")
	require.NoError(t, runPlain(context.Background(), session, in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `! unknown action "dance"`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Commands:"))
	assert.Equal(t, "! not your turn", lines[2])
}

func TestOpenRecorders(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.History.File = filepath.Join(dir, "hands.jsonl")
	cfg.History.SQLitePath = filepath.Join(dir, "headsup.db")
	cfg.Opponent.Strategy = bot.StrategyCallingStation

	ctx := context.Background()
	recorders, closeRecorders, err := openRecorders(ctx, cfg, quietLogger())
	require.NoError(t, err)
	require.Len(t, recorders, 3)

	opponent, err := bot.New(bot.StrategyCallingStation, rand.New(rand.NewSource(1)), quietLogger())
	require.NoError(t, err)
	player, err := bot.New(bot.StrategyRandom, rand.New(rand.NewSource(2)), quietLogger())
	require.NoError(t, err)
	engine := game.NewEngine(game.DefaultConfig(), opponent,
		game.WithLogger(quietLogger()),
		game.WithRNG(rand.New(rand.NewSource(3))),
		game.WithRecorder(recorders))
	require.NoError(t, engine.PlayGame(ctx, player, 2))
	require.NoError(t, closeRecorders())

	hands, err := history.ReadFile(cfg.History.File)
	require.NoError(t, err)
	assert.Len(t, hands, engine.State().HandNumber)

	store, err := history.Open(ctx, history.SQLite, cfg.History.SQLitePath)
	require.NoError(t, err)
	defer store.Close()
	games, err := store.Games(ctx, 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, bot.StrategyCallingStation, games[0].Opponent)
	assert.Equal(t, engine.State().HandNumber, games[0].HandsPlayed)

	var buf bytes.Buffer
	require.NoError(t, printGames(&buf, games))
	assert.Contains(t, buf.String(), games[0].GameID.String())
	buf.Reset()
	require.NoError(t, printHands(&buf, hands))
	assert.Contains(t, buf.String(), "HAND")
}

func TestOpenRecordersFailsOnBadPath(t *testing.T) {
	cfg := config.Default()
	cfg.History.File = filepath.Join(t.TempDir(), "missing", "hands.jsonl")

	_, _, err := openRecorders(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
}
