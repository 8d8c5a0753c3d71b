// Package display renders game events as plain text, for line-mode play and
// simulation transcripts.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/poker"
	"github.com/muesli/termenv"
)

// Options controls how events are formatted
type Options struct {
	Color       bool // Colour suits and outcomes when the terminal supports it
	BigBlinds   bool // Follow chip amounts with their size in big blinds
	Perspective bool // Address the human player as "you"
}

// Formatter turns events into human-readable lines.
type Formatter struct {
	out  *termenv.Output
	opts Options
}

// NewFormatter creates a formatter for text that will be written to w.
func NewFormatter(w io.Writer, opts Options) *Formatter {
	var out *termenv.Output
	if opts.Color {
		out = termenv.NewOutput(w)
	} else {
		out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	return &Formatter{out: out, opts: opts}
}

// Format renders one event. The result may span several lines and has no
// trailing newline.
func (f *Formatter) Format(event game.GameEvent) string {
	s := event.State()
	switch e := event.(type) {
	case game.HandStartEvent:
		return f.formatHandStart(e, s)
	case game.ActionEvent:
		return f.formatAction(e, s)
	case game.StageChangeEvent:
		return f.FormatStreet(e.Stage, e.Community)
	case game.HandEndEvent:
		return f.formatHandEnd(e, s)
	case game.GameOverEvent:
		return f.style(fmt.Sprintf("Game over: %s wins the match", f.name(e.Winner)), "#FFD700", true)
	default:
		return fmt.Sprintf("[%s]", event.EventType())
	}
}

func (f *Formatter) formatHandStart(e game.HandStartEvent, s game.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Hand %d • blinds %d/%d • small blind: %s ===\n",
		e.HandNumber, s.SmallBlind, s.BigBlind, f.name(e.SmallBlindActor))
	if len(s.PlayerCards) > 0 {
		fmt.Fprintf(&b, "Your cards: %s\n", f.Cards(s.PlayerCards))
	}
	fmt.Fprintf(&b, "Stacks: player %s, opponent %s",
		f.Amount(s, s.Stacks.Player), f.Amount(s, s.Stacks.Opponent))
	return b.String()
}

// formatAction renders e.g. "opponent: raises to 60 (pot 80)".
func (f *Formatter) formatAction(e game.ActionEvent, s game.Snapshot) string {
	name := f.name(e.Actor)
	var text string
	switch e.Action.Kind {
	case game.Fold:
		text = fmt.Sprintf("%s: folds", name)
	case game.Check:
		text = fmt.Sprintf("%s: checks", name)
	case game.Call:
		text = fmt.Sprintf("%s: calls %s (pot %d)", name, f.Amount(s, e.Amount), s.Pot)
	case game.Raise:
		text = fmt.Sprintf("%s: raises to %s (pot %d)", name, f.Amount(s, e.Action.Amount), s.Pot)
	case game.AllIn:
		text = fmt.Sprintf("%s: goes all-in for %s (pot %d)", name, f.Amount(s, e.Amount), s.Pot)
	}
	if e.Refund > 0 {
		text += fmt.Sprintf("\nUncalled %d returned", e.Refund)
	}
	return text
}

// FormatStreet renders a street change, e.g. "*** TURN *** [Ah Kd 2c] [7s]".
func (f *Formatter) FormatStreet(stage game.Stage, community []poker.Card) string {
	switch {
	case stage == game.Flop && len(community) >= 3:
		return fmt.Sprintf("*** FLOP *** [%s]", f.Cards(community[:3]))
	case (stage == game.Turn || stage == game.River) && len(community) >= 4:
		n := len(community)
		return fmt.Sprintf("*** %s *** [%s] [%s]", strings.ToUpper(stage.String()),
			f.Cards(community[:n-1]), f.Cards(community[n-1:]))
	case stage == game.Showdown:
		return fmt.Sprintf("*** SHOWDOWN *** [%s]", f.Cards(community))
	default:
		return fmt.Sprintf("*** %s ***", strings.ToUpper(stage.String()))
	}
}

func (f *Formatter) formatHandEnd(e game.HandEndEvent, s game.Snapshot) string {
	r := e.Result
	var b strings.Builder
	if !r.Folded {
		if len(s.PlayerCards) > 0 {
			fmt.Fprintf(&b, "player shows %s", f.Cards(s.PlayerCards))
			if h, ok := r.Hands[game.Player]; ok {
				fmt.Fprintf(&b, " (%s)", h.Describe())
			}
			b.WriteString("\n")
		}
		if len(s.OpponentCards) > 0 {
			fmt.Fprintf(&b, "opponent shows %s", f.Cards(s.OpponentCards))
			if h, ok := r.Hands[game.Opponent]; ok {
				fmt.Fprintf(&b, " (%s)", h.Describe())
			}
			b.WriteString("\n")
		}
	}

	if r.Winner == nil {
		b.WriteString(f.style(fmt.Sprintf("Split pot %d: player %d, opponent %d",
			r.Pot, r.Payouts.Player, r.Payouts.Opponent), "#FFEAA7", true))
	} else {
		colour := "#96CEB4"
		if *r.Winner == game.Opponent {
			colour = "#FF6B6B"
		}
		b.WriteString(f.style(fmt.Sprintf("%s %s %s", capitalize(f.name(*r.Winner)), f.verb(*r.Winner, "win"),
			f.Amount(s, r.Pot)), colour, true))
	}
	fmt.Fprintf(&b, "\nStacks: player %s, opponent %s",
		f.Amount(s, s.Stacks.Player), f.Amount(s, s.Stacks.Opponent))
	return b.String()
}

// Prompt describes the human player's options, or "" when it is not their
// turn.
func (f *Formatter) Prompt(s game.Snapshot) string {
	if !s.PlayerToAct() {
		return ""
	}
	l := s.Legal
	var opts []string
	for _, kind := range l.Actions {
		switch kind {
		case game.Call:
			opts = append(opts, fmt.Sprintf("call %s", f.Amount(s, l.CallAmount)))
		case game.Raise:
			opts = append(opts, fmt.Sprintf("raise %d-%d", l.MinRaise, l.MaxRaise))
		case game.AllIn:
			opts = append(opts, fmt.Sprintf("allin %d", l.MaxRaise))
		default:
			opts = append(opts, kind.String())
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pot %s • board [%s] • your cards %s\n",
		f.Amount(s, s.Pot), f.Cards(s.Community), f.Cards(s.PlayerCards))
	fmt.Fprintf(&b, "Your turn: %s", strings.Join(opts, " | "))
	if len(s.RaiseSuggestions) > 0 {
		var sugg []string
		for _, r := range s.RaiseSuggestions {
			sugg = append(sugg, fmt.Sprintf("%s=%d", r.Label, r.Amount))
		}
		fmt.Fprintf(&b, "\nSuggested raises: %s", strings.Join(sugg, " "))
	}
	return b.String()
}

// Cards renders cards with suit symbols, red suits coloured.
func (f *Formatter) Cards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		if c.Suit.IsRed() {
			parts[i] = f.style(c.Pretty(), "#FF6B6B", false)
		} else {
			parts[i] = c.Pretty()
		}
	}
	return strings.Join(parts, " ")
}

// Amount renders chips, followed by big blinds when enabled: "60 (3 BB)".
func (f *Formatter) Amount(s game.Snapshot, chips int) string {
	if !f.opts.BigBlinds || s.BigBlind == 0 {
		return fmt.Sprint(chips)
	}
	return fmt.Sprintf("%d (%s BB)", chips, trimFloat(s.InBigBlinds(chips)))
}

func (f *Formatter) style(text, colour string, bold bool) string {
	if !f.opts.Color {
		return text
	}
	st := f.out.String(text).Foreground(f.out.Color(colour))
	if bold {
		st = st.Bold()
	}
	return st.String()
}

func (f *Formatter) name(a game.Actor) string {
	if f.opts.Perspective && a == game.Player {
		return "you"
	}
	return a.String()
}

func (f *Formatter) verb(a game.Actor, verb string) string {
	if f.opts.Perspective && a == game.Player {
		return verb
	}
	return verb + "s"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
