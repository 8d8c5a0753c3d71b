package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/headsup/poker"
)

var (
	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)

type EvalCmd struct {
	Hole    string `arg:"" help:"Hole cards, e.g. 'AsKd'"`
	Board   string `arg:"" help:"Three to five community cards, e.g. 'Td7s8h'"`
	Against string `short:"a" help:"Opponent hole cards to compare with"`
}

func (c *EvalCmd) Run() error {
	return c.eval(os.Stdout)
}

func (c *EvalCmd) eval(w io.Writer) error {
	board, err := poker.ParseCards(c.Board)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if len(board) < 3 || len(board) > 5 {
		return fmt.Errorf("board must have 3 to 5 cards, got %d", len(board))
	}

	hand, err := evalHole("hand", c.Hole, board)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Board: %s\n", poker.FormatCards(board))
	fmt.Fprintf(w, "Hand:  %s\n", handStyle.Render(hand.Describe()))
	fmt.Fprintf(w, "Best:  %s\n", poker.FormatCards(hand.Cards[:]))

	if c.Against == "" {
		return nil
	}
	other, err := evalHole("opponent", c.Against, board)
	if err != nil {
		return err
	}
	// Cards shared between the two holdings are only caught together.
	all := append(append(poker.MustParseCards(c.Hole), poker.MustParseCards(c.Against)...), board...)
	if err := checkDistinct(all); err != nil {
		return err
	}
	fmt.Fprintf(w, "Opponent: %s\n", handStyle.Render(other.Describe()))
	fmt.Fprintf(w, "Best:     %s\n", poker.FormatCards(other.Cards[:]))

	switch poker.Compare(hand, other) {
	case 1:
		fmt.Fprintln(w, winStyle.Render("Hand wins"))
	case -1:
		fmt.Fprintln(w, winStyle.Render("Opponent wins"))
	default:
		fmt.Fprintln(w, "Split pot")
	}
	return nil
}

func evalHole(name, s string, board []poker.Card) (poker.EvaluatedHand, error) {
	hole, err := poker.ParseCards(s)
	if err != nil {
		return poker.EvaluatedHand{}, fmt.Errorf("%s: %w", name, err)
	}
	if len(hole) != 2 {
		return poker.EvaluatedHand{}, fmt.Errorf("%s: must contain exactly 2 cards, got %d", name, len(hole))
	}
	hand, err := poker.Evaluate(hole, board)
	if err != nil {
		return poker.EvaluatedHand{}, fmt.Errorf("%s: %w", name, err)
	}
	return hand, nil
}

func checkDistinct(cards []poker.Card) error {
	seen := make(map[poker.Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] {
			return fmt.Errorf("duplicate card found: %s", c)
		}
		seen[c] = true
	}
	return nil
}
