package tui

import (
	"github.com/charmbracelet/lipgloss"

	"kitchen-display/internal/domain"
)

// Theme is the board palette in ANSI 256-colour codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Header     lipgloss.Color
	Selected   lipgloss.Color
	Border     lipgloss.Color

	Cooking    lipgloss.Color
	AlmostDone lipgloss.Color
	Overdue    lipgloss.Color
	Ready      lipgloss.Color
}

var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),
	Header:     lipgloss.Color("230"),
	Selected:   lipgloss.Color("39"),
	Border:     lipgloss.Color("238"),
	Cooking:    lipgloss.Color("75"),
	AlmostDone: lipgloss.Color("214"),
	Overdue:    lipgloss.Color("196"),
	Ready:      lipgloss.Color("42"),
}

func (t Theme) StatusColor(s domain.Status) lipgloss.Color {
	switch s {
	case domain.StatusAlmostDone:
		return t.AlmostDone
	case domain.StatusOverdue:
		return t.Overdue
	case domain.StatusReady:
		return t.Ready
	}
	return t.Cooking
}
