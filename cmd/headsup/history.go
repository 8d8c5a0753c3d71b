package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/lox/headsup/internal/config"
	"github.com/lox/headsup/internal/history"
)

type HistoryCmd struct {
	File  string `type:"existingfile" help:"Read hands from a JSON-lines history file instead of the database"`
	Game  string `help:"Show the hands of one game"`
	Limit int    `default:"20" help:"Number of games to list"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	if c.File != "" {
		hands, err := history.ReadFile(c.File)
		if err != nil {
			return err
		}
		return printHands(os.Stdout, filterGame(hands, c.Game))
	}

	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	dialect, dsn := history.SQLite, cfg.History.SQLitePath
	if dsn == "" {
		dialect, dsn = history.Postgres, cfg.History.PostgresDSN
	}
	if dsn == "" {
		return fmt.Errorf("no history database configured")
	}

	ctx := context.Background()
	store, err := history.Open(ctx, dialect, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	if c.Game != "" {
		id, err := uuid.Parse(c.Game)
		if err != nil {
			return fmt.Errorf("invalid game id: %w", err)
		}
		hands, err := store.Hands(ctx, id)
		if err != nil {
			return err
		}
		return printHands(os.Stdout, hands)
	}

	games, err := store.Games(ctx, c.Limit)
	if err != nil {
		return err
	}
	return printGames(os.Stdout, games)
}

func filterGame(hands []history.HandRecord, game string) []history.HandRecord {
	if game == "" {
		return hands
	}
	var out []history.HandRecord
	for _, h := range hands {
		if h.GameID.String() == game {
			out = append(out, h)
		}
	}
	return out
}

func printGames(w io.Writer, games []history.GameSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GAME\tSTARTED\tOPPONENT\tBLINDS\tHANDS\tCHIPS\tP/L\tWINNER")
	for _, g := range games {
		winner := g.Winner
		if !g.Finished() {
			winner = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%+d\t%s\n",
			g.GameID, g.StartTime.Local().Format("2006-01-02 15:04"), g.Opponent,
			g.SmallBlind, g.BigBlind, g.HandsPlayed, g.FinalChips, g.ProfitLoss, winner)
	}
	return tw.Flush()
}

func printHands(w io.Writer, hands []history.HandRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HAND\tSB\tBOARD\tPOT\tWINNER\tNET\tSTACKS")
	for _, h := range hands {
		sb := "opponent"
		if h.PlayerSmallBlind {
			sb = "player"
		}
		board := h.Board
		if board == "" {
			board = "-"
		}
		winner := h.Winner
		if h.Folded {
			winner += " (fold)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%+d\t%d/%d\n",
			h.HandNumber, sb, board, h.Pot, winner, h.Net(), h.FinalStacks.Player, h.FinalStacks.Opponent)
	}
	return tw.Flush()
}
