package chat

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header    lipgloss.Style
	title     lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	body      lipgloss.Style
	failed    lipgloss.Style
	source    lipgloss.Style
	waiting   lipgloss.Style
	pending   lipgloss.Style
	status    lipgloss.Style
	help      lipgloss.Style
}

func newStyles() styles {
	return styles{
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		title:     lipgloss.NewStyle().Bold(true),
		user:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("142")),
		body:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		failed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		source:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		waiting:   lipgloss.NewStyle().Faint(true),
		pending:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		help:      lipgloss.NewStyle().Faint(true),
	}
}
