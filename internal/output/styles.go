package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals elsewhere.
var (
	// ColorCyan is used for identifiable nouns: module names, organizations.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "created" file status.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "skipped" file status.
	ColorYellow = lipgloss.Color("220")

	// ColorBoldRed is used for the "failed" file status (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome (tree connectors, descriptions).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// File status constants.
const (
	StatusCreated  = "created"
	StatusSkipped  = "skipped"
	StatusExcluded = "excluded"
	StatusFailed   = "failed"
)

// StatusStyle returns the lipgloss style for a file status.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusCreated:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusExcluded:
		return lipgloss.NewStyle().Faint(true)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minPathColumnWidth keeps status words aligned across lines.
const minPathColumnWidth = 40

// FormatFileLine renders a relative path with a right-aligned status suffix.
func FormatFileLine(path, status string) string {
	padding := minPathColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	return StyleNoun.Render(path) + strings.Repeat(" ", padding) + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}
