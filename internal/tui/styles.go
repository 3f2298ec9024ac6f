package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/charliek/tailboard/internal/domain"
)

// Colors
var (
	// Level colors
	errorLevelColor     = lipgloss.Color("9")  // Red
	warningLevelColor   = lipgloss.Color("11") // Yellow
	highlightLevelColor = lipgloss.Color("14") // Cyan

	// Connection state colors
	openColor       = lipgloss.Color("10") // Green
	connectingColor = lipgloss.Color("11") // Yellow
	closedColor     = lipgloss.Color("8")  // Gray

	// UI colors
	headerBg   = lipgloss.Color("235")
	statusBg   = lipgloss.Color("236")
	helpBg     = lipgloss.Color("234")
	errorColor = lipgloss.Color("9")
	dimColor   = lipgloss.Color("8")
	jumpBg     = lipgloss.Color("25")
)

// Styles
var (
	errorLevelStyle = lipgloss.NewStyle().
			Foreground(errorLevelColor).
			Bold(true)

	warningLevelStyle = lipgloss.NewStyle().
				Foreground(warningLevelColor)

	highlightLevelStyle = lipgloss.NewStyle().
				Foreground(highlightLevelColor)

	plainStyle = lipgloss.NewStyle()

	openStyle = lipgloss.NewStyle().
			Foreground(openColor).
			Bold(true)

	connectingStyle = lipgloss.NewStyle().
			Foreground(connectingColor)

	closedStyle = lipgloss.NewStyle().
			Foreground(closedColor)

	// Header style
	headerStyle = lipgloss.NewStyle().
			Background(headerBg).
			Padding(0, 1).
			MarginBottom(1)

	// Status bar style
	statusStyle = lipgloss.NewStyle().
			Background(statusBg).
			Padding(0, 1)

	// Help overlay style
	helpStyle = lipgloss.NewStyle().
			Background(helpBg).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	// Error indicator style
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(errorColor).
			Bold(true)

	// "Jump to latest" affordance
	jumpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(jumpBg).
			Bold(true)

	// Dim style for timestamps and empty states
	dimStyle = lipgloss.NewStyle().
			Foreground(dimColor)
)

// levelStyle returns the style used to render a line of the given level
func levelStyle(level domain.Level) lipgloss.Style {
	switch level {
	case domain.LevelError:
		return errorLevelStyle
	case domain.LevelWarning:
		return warningLevelStyle
	case domain.LevelHighlight:
		return highlightLevelStyle
	default:
		return plainStyle
	}
}

// connectionStyle returns the style for a connection state readout
func connectionStyle(state domain.ConnectionState) lipgloss.Style {
	switch state {
	case domain.ConnectionOpen:
		return openStyle
	case domain.ConnectionConnecting:
		return connectingStyle
	case domain.ConnectionError:
		return errorStyle
	default:
		return closedStyle
	}
}
