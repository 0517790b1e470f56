package ui

import "github.com/charmbracelet/lipgloss"

// ANSI colors only, so output reads the same on light and dark terminals.
var (
	// TitleStyle marks headings and console message ids.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)

	// UsageStyle highlights arguments and console buttons.
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle dims descriptions and console status lines.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
