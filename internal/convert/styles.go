package convert

import "github.com/charmbracelet/lipgloss/v2"

var (
	blogTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	countStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("36")).Bold(true)
	noteStyle      = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)
