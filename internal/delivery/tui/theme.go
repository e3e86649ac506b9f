package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used by the picker screens
type Theme struct {
	Header       lipgloss.Style
	SectionTitle lipgloss.Style
	Cursor       lipgloss.Style
	Checked      lipgloss.Style
	Warn         lipgloss.Style
	Error        lipgloss.Style
	Muted        lipgloss.Style
}

// DefaultTheme uses the basic 16-colour palette
func DefaultTheme() Theme {
	return Theme{
		Header:       lipgloss.NewStyle().Bold(true),
		SectionTitle: lipgloss.NewStyle().Bold(true),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		Checked:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Warn:         lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// paint renders s with style only when color output is enabled
func paint(style lipgloss.Style, useColor bool, s string) string {
	if useColor {
		return style.Render(s)
	}
	return s
}
