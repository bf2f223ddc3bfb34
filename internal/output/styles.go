package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals outside this block.
var (
	// colorCyan is used for identifiable nouns: release names, images, namespaces.
	colorCyan = lipgloss.Color("14")

	// colorGreen is used for the "installed" and "observed" statuses.
	colorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "upgraded" and "pending" statuses.
	ColorYellow = lipgloss.Color("220")

	// colorRed is used for the "exhausted" status.
	colorRed = lipgloss.Color("196")

	// colorBoldRed is used for the "failed" status (matches ERROR level).
	colorBoldRed = lipgloss.Color("204")

	// colorGreenCheck is used for the completion checkmark.
	colorGreenCheck = lipgloss.Color("10")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns (release names, images, namespaces).
	StyleNoun = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleAction styles action verbs (building, pushing, installing).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (scope prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Stage status constants.
const (
	StatusCreated   = "created"
	StatusReused    = "reused"
	StatusPushed    = "pushed"
	StatusInstalled = "installed"
	StatusUpgraded  = "upgraded"
	StatusObserved  = "observed"
	StatusPending   = "pending"
	StatusExhausted = "exhausted"
	StatusSkipped   = "skipped"
	statusFailed    = "failed"
)

// statusStyle returns the lipgloss style for a stage status string.
// Unknown statuses return an unstyled default.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusCreated, StatusInstalled, StatusObserved, StatusPushed:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusUpgraded, StatusPending:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusReused, StatusSkipped:
		return lipgloss.NewStyle().Faint(true)
	case StatusExhausted:
		return lipgloss.NewStyle().Foreground(colorRed)
	case statusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minSubjectColumnWidth is the minimum width of the subject column so that
// status words align across stage lines.
const minSubjectColumnWidth = 48

// FormatStageLine renders a stage subject with a right-aligned, color-coded
// status suffix.
//
// Format: <stage>:<subject>  <status>
func FormatStageLine(stage, subject, status string) string {
	path := stage + ":" + subject

	padding := minSubjectColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render(stage+":") + StyleNoun.Render(subject) +
		strings.Repeat(" ", padding) + statusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatWarning renders a yellow marker with a message for stdout output.
func FormatWarning(msg string) string {
	mark := lipgloss.NewStyle().Foreground(ColorYellow).Render("!")
	return mark + " " + msg
}
