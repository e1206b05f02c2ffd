package cli

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)
