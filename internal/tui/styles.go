package tui

import "github.com/charmbracelet/lipgloss"

var (
	white  = lipgloss.Color("#FAFAFA")
	purple = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	sage   = lipgloss.Color("#96CEB4")
	gold   = lipgloss.Color("#FFD700")
	cream  = lipgloss.Color("#FFEAA7")
	red    = lipgloss.Color("#FF6B6B")
	grey   = lipgloss.Color("#626262")
)

func bold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

var (
	// HeaderStyle marks the first log line of each hand.
	HeaderStyle = bold(white).Background(purple)

	HandInfoStyle = bold(sage)
	ActionsStyle  = bold(gold)
	PotStyle      = bold(cream)

	RedCardStyle   = bold(red)
	BlackCardStyle = bold(white)

	SuccessStyle = bold(sage)
	ErrorStyle   = bold(red)
	WarningStyle = bold(cream)
	InfoStyle    = lipgloss.NewStyle().Foreground(grey)

	promptStyle    = bold(green)
	inputTextStyle = lipgloss.NewStyle().Foreground(white)

	focusedBorder   = green
	unfocusedBorder = grey
)
