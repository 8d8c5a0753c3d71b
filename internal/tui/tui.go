package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/headsup/internal/display"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/poker"
)

// TUIModel represents the Bubble Tea model for a heads-up game
type TUIModel struct {
	ctx     context.Context
	session Session
	bridge  *Bridge
	logger  *log.Logger
	format  *display.Formatter

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	snapshot    game.Snapshot
	status      string
	statusErr   bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool // Track if viewport has been properly sized
}

// NewTUIModel creates a model driving session. Events reach it through
// bridge, which must already be subscribed to the engine.
func NewTUIModel(ctx context.Context, session Session, bridge *Bridge, logger *log.Logger) *TUIModel {
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter your action (check, call, raise 60, pot, fold, allin)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputTextStyle
	ti.Prompt = "> "

	return &TUIModel{
		ctx:         ctx,
		session:     session,
		bridge:      bridge,
		logger:      logger.WithPrefix("tui"),
		format:      display.NewFormatter(io.Discard, display.Options{BigBlinds: true, Perspective: true}),
		logViewport: vp,
		actionInput: ti,
		snapshot:    session.Snapshot(),
		focusedPane: 1, // Start with input focused
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.next())
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case EventMsg:
		m.applyEvent(msg.Event)
		return m, m.bridge.next()

	case submitResultMsg:
		m.applyResult(msg)
		return m, nil

	case SessionDoneMsg:
		if msg.Err != nil {
			m.logger.Error("Session stopped", "error", msg.Err)
		}
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if input != "" {
					cmds = append(cmds, m.handleInput(input))
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleInput acts on one submitted line. Engine calls run as commands so
// the UI never waits on the session.
func (m *TUIModel) handleInput(input string) tea.Cmd {
	cmd, err := parseCommand(input, m.snapshot)
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}

	switch {
	case cmd.quit:
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	case cmd.help:
		for _, line := range helpLines {
			m.AddLogEntry(InfoStyle.Render(line))
		}
		return nil
	case cmd.restart:
		if !m.snapshot.GameOver {
			m.setStatus("The game is still running", true)
			return nil
		}
		m.setStatus("Starting a new game...", false)
		return restart(m.ctx, m.session)
	}

	if !m.snapshot.PlayerToAct() {
		m.setStatus("It is not your turn", true)
		return nil
	}
	m.setStatus("", false)
	return submit(m.ctx, m.session, input, *cmd.action)
}

func (m *TUIModel) applyResult(msg submitResultMsg) {
	if msg.err != nil {
		m.logger.Debug("Command rejected", "input", msg.input, "error", msg.err)
		m.setStatus(msg.err.Error(), true)
		return
	}
	if msg.input == "new" {
		m.ClearLog()
		m.setStatus("New game started", false)
	}
}

func (m *TUIModel) applyEvent(event game.GameEvent) {
	m.snapshot = event.State()
	if event.EventType() == game.EventTypeHandStart && len(m.gameLog) > 0 {
		m.AddLogEntry("")
	}
	text := m.format.Format(event)
	if event.EventType() == game.EventTypeHandStart {
		lines := strings.SplitN(text, "\n", 2)
		lines[0] = HeaderStyle.Render(lines[0])
		text = strings.Join(lines, "\n")
	}
	for _, line := range strings.Split(text, "\n") {
		m.AddLogEntry(line)
	}
}

func (m *TUIModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(unfocusedBorder).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(focusedBorder)
	}
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(unfocusedBorder).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(m.renderLogPane())
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight

	// On first proper sizing, follow the latest entries
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(unfocusedBorder).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(focusedBorder)
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane shows the table: pot, stacks, board and cards.
func (m *TUIModel) renderSidebarPane() string {
	s := m.snapshot
	var content strings.Builder

	if s.HandNumber == 0 {
		content.WriteString(InfoStyle.Render("Waiting for the first deal"))
		return content.String()
	}

	content.WriteString(HandInfoStyle.Render(fmt.Sprintf("Hand #%d • %s", s.HandNumber, s.Stage)))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Blinds %d/%d", s.SmallBlind, s.BigBlind)))
	content.WriteString("\n\n")

	content.WriteString(PotStyle.Render("Pot: " + m.format.Amount(s, s.Pot)))
	if s.CurrentBet > 0 {
		content.WriteString("\n")
		content.WriteString(PotStyle.Render(fmt.Sprintf("Bet: %d", s.CurrentBet)))
	}
	content.WriteString("\n\n")

	you, them := "You", "Opponent"
	if s.PlayerIsSmallBlind {
		you += " (SB)"
	} else {
		them += " (SB)"
	}
	fmt.Fprintf(&content, "%s: %s\n", you, m.format.Amount(s, s.Stacks.Player))
	fmt.Fprintf(&content, "%s: %s\n\n", them, m.format.Amount(s, s.Stacks.Opponent))

	fmt.Fprintf(&content, "Board: %s\n", formatCards(s.Community))
	fmt.Fprintf(&content, "Your cards: %s\n", formatCards(s.PlayerCards))
	if len(s.OpponentCards) > 0 {
		fmt.Fprintf(&content, "Their cards: %s\n", formatCards(s.OpponentCards))
	}

	if s.GameOver && s.GameWinner != nil {
		content.WriteString("\n")
		if *s.GameWinner == game.Player {
			content.WriteString(SuccessStyle.Render("You won the match"))
		} else {
			content.WriteString(ErrorStyle.Render("The opponent won the match"))
		}
	}
	return content.String()
}

// renderActionPane renders the action input pane
func (m *TUIModel) renderActionPane() string {
	s := m.snapshot
	var content strings.Builder

	switch {
	case s.PlayerToAct():
		content.WriteString(HandInfoStyle.Render(fmt.Sprintf("Hand: %s  Pot: %s",
			formatCards(s.PlayerCards), m.format.Amount(s, s.Pot))))
		content.WriteString("\n")
		content.WriteString(m.renderAvailableActions())
		content.WriteString("\n")
		m.actionInput.Placeholder = "Enter your action (check, call, raise 60, pot, fold, allin)"
	case s.GameOver:
		content.WriteString(HandInfoStyle.Render("Game over: type 'new' to play again or 'quit' to leave"))
		content.WriteString("\n")
		m.actionInput.Placeholder = "new or quit"
	case s.HandOver:
		content.WriteString(HandInfoStyle.Render("Next hand coming up..."))
		content.WriteString("\n")
		m.actionInput.Placeholder = "'help' for commands, 'quit' to exit"
	default:
		content.WriteString(HandInfoStyle.Render("Opponent is thinking..."))
		content.WriteString("\n")
		m.actionInput.Placeholder = "'help' for commands, 'quit' to exit"
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.status != "" {
		if m.statusErr {
			content.WriteString(ErrorStyle.Render(m.status))
		} else {
			content.WriteString(SuccessStyle.Render(m.status))
		}
		content.WriteString("\n")
	}

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return content.String()
}

// renderAvailableActions renders the legal actions and raise suggestions
func (m *TUIModel) renderAvailableActions() string {
	l := m.snapshot.Legal
	var actions []string
	for _, kind := range l.Actions {
		switch kind {
		case game.Fold:
			actions = append(actions, ErrorStyle.Render("[fold]"))
		case game.Check:
			actions = append(actions, SuccessStyle.Render("[check]"))
		case game.Call:
			actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call %d]", l.CallAmount)))
		case game.Raise:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[raise %d-%d]", l.MinRaise, l.MaxRaise)))
		case game.AllIn:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[allin %d]", l.MaxRaise)))
		}
	}

	line := ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
	if len(m.snapshot.RaiseSuggestions) > 0 {
		var sugg []string
		for _, r := range m.snapshot.RaiseSuggestions {
			sugg = append(sugg, fmt.Sprintf("%s=%d", r.Label, r.Amount))
		}
		line += "\n" + InfoStyle.Render("Raise to: "+strings.Join(sugg, "  "))
	}
	return line
}

// formatCards formats cards with colors
func formatCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return "-"
	}
	formatted := make([]string, len(cards))
	for i, card := range cards {
		if card.Suit.IsRed() {
			formatted[i] = RedCardStyle.Render(card.Pretty())
		} else {
			formatted[i] = BlackCardStyle.Render(card.Pretty())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// AddLogEntry adds an entry to the game log and follows it
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(m.renderLogPane())

	// Only call GotoBottom if viewport has valid dimensions
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// ClearLog clears the game log
func (m *TUIModel) ClearLog() {
	m.gameLog = nil
	m.logViewport.SetContent("")
}

// Log returns the entries added so far.
func (m *TUIModel) Log() []string {
	return m.gameLog
}
