package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/lox/headsup/internal/game"
)

// Printer writes each event to w as it happens. It implements
// game.EventSubscriber.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	f      *Formatter
	prompt bool
}

// NewPrinter creates a printer. With prompt set, the human player's options
// are printed whenever an event leaves them to act.
func NewPrinter(w io.Writer, opts Options, prompt bool) *Printer {
	return &Printer{w: w, f: NewFormatter(w, opts), prompt: prompt}
}

func (p *Printer) OnEvent(event game.GameEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintln(p.w, p.f.Format(event))
	if event.EventType() == game.EventTypeHandEnd {
		_, _ = fmt.Fprintln(p.w)
	}
	if p.prompt {
		if prompt := p.f.Prompt(event.State()); prompt != "" {
			_, _ = fmt.Fprintln(p.w, prompt)
		}
	}
}

// Formatter returns the formatter used for events.
func (p *Printer) Formatter() *Formatter {
	return p.f
}
