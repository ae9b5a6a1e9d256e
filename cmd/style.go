package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/trivial-time-balance/internal/timemath"
)

var (
	surplusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	deficitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// colorBalance renders a signed HH:MM value green when positive and red when
// negative. Colours are dropped when stdout is not a terminal.
func colorBalance(s string) string {
	switch {
	case s == timemath.Invalid || s == timemath.Zero:
		return s
	case timemath.IsNegative(s):
		return deficitStyle.Render(s)
	default:
		return surplusStyle.Render(s)
	}
}
