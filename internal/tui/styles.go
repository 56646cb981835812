package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the calculator
type Styles struct {
	Display        lipgloss.Style
	Input          lipgloss.Style
	Result         lipgloss.Style
	Error          lipgloss.Style
	Button         lipgloss.Style
	OperatorButton lipgloss.Style
	ActionButton   lipgloss.Style
	FocusedButton  lipgloss.Style
	HistoryTitle   lipgloss.Style
	HistoryOK      lipgloss.Style
	HistoryError   lipgloss.Style
	Status         lipgloss.Style
}

// DefaultStyles returns the default colour scheme
func DefaultStyles() Styles {
	button := lipgloss.NewStyle().
		Width(5).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240"))

	return Styles{
		Display: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		Input:          lipgloss.NewStyle().Bold(true),
		Result:         lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:          lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Button:         button,
		OperatorButton: button.Foreground(lipgloss.Color("39")),
		ActionButton:   button.Foreground(lipgloss.Color("214")),
		FocusedButton: button.
			BorderForeground(lipgloss.Color("200")).
			Foreground(lipgloss.Color("200")).
			Bold(true),
		HistoryTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true),
		HistoryOK:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		HistoryError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	}
}
