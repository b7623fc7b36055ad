package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette - cool, night-sky leaning
	primaryColor = lipgloss.Color("#7AA2F7") // steel blue
	successColor = lipgloss.Color("#9ECE6A") // green
	errorColor   = lipgloss.Color("#F7768E") // soft red
	mutedColor   = lipgloss.Color("#565F89") // gray blue
	textColor    = lipgloss.Color("#C0CAF5") // light text
	dimTextColor = lipgloss.Color("#9CA3AF") // dim text

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(dimTextColor).
			Italic(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(mutedColor).
			MarginTop(1).
			MarginBottom(1)

	pathStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	phaseDoneStyle = lipgloss.NewStyle().
			Foreground(successColor)

	phaseActiveStyle = lipgloss.NewStyle().
				Foreground(textColor).
				Bold(true)

	phasePendingStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	statLabelStyle = lipgloss.NewStyle().
			Foreground(dimTextColor).
			Width(14)

	statValueStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Padding(1, 2).
			MarginTop(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true).
			MarginTop(2)

	// Icon characters
	iconDone    = "✓"
	iconError   = "✗"
	iconPending = "·"
	iconFolder  = "📁"
)
