package watch

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Title  lipgloss.Style
	Faint  lipgloss.Style
	Pass   lipgloss.Style
	Fail   lipgloss.Style
	Opaque lipgloss.Style
	Card   lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title:  lipgloss.NewStyle().Bold(true),
		Faint:  lipgloss.NewStyle().Faint(true),
		Pass:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Opaque: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Card: lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
	}
}
