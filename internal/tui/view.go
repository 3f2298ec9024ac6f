package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
)

const (
	emptyLogsText     = "No logs for this container"
	noMatchLogsText   = "No logs matching your filter criteria"
	emptyAlertsText   = "No alerts for this container"
	noMatchAlertsText = "No alerts matching your filter"
)

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.mode == ModeHelp {
		return m.helpView()
	}
	return m.mainView()
}

// mainView renders the main TUI layout
func (m Model) mainView() string {
	var sb strings.Builder

	sb.WriteString(m.header())
	sb.WriteString("\n")

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	sb.WriteString(m.statusBar())

	return sb.String()
}

// header renders the container, its connection state and the active filters
func (m Model) header() string {
	name := m.container
	if name == "" {
		name = "(no container)"
	}
	items := []string{
		lipgloss.NewStyle().Bold(true).Render(name),
		connectionStyle(m.state).Render("● " + m.state.String()),
	}

	if m.viewMode == ViewModeAlerts {
		switch {
		case m.alertsErr != nil:
			items = append(items, errorStyle.Render("alerts unavailable"))
		case m.alertsUpdated.IsZero():
			items = append(items, dimStyle.Render("alerts loading..."))
		default:
			items = append(items, dimStyle.Render("alerts updated "+humanize.Time(m.alertsUpdated)))
		}
		if m.alertFilter != "" {
			items = append(items, fmt.Sprintf("filter %q", m.alertFilter))
		}
	} else {
		if m.seedErr != nil {
			items = append(items, errorStyle.Render("history unavailable"))
		}
		if m.pending != "" {
			items = append(items, dimStyle.Render("switching to "+m.pending+"..."))
		}
		items = append(items, m.criteriaSummary()...)
	}

	return headerStyle.Render(strings.Join(items, "  "))
}

// criteriaSummary describes the active log filter
func (m Model) criteriaSummary() []string {
	var items []string
	if m.criteria.Text != "" {
		items = append(items, fmt.Sprintf("filter %q", m.criteria.Text))
	}
	if !m.criteria.DateRange.IsEmpty() {
		items = append(items, "range "+logs.FormatDateRange(m.criteria.DateRange))
	}
	if m.criteria.IgnoreCase {
		items = append(items, "ignore-case")
	}
	return items
}

// logsContent renders the filtered records, or an empty state
func (m Model) logsContent() string {
	if len(m.records) == 0 {
		return dimStyle.Render(emptyLogsText)
	}
	if len(m.filtered) == 0 {
		return dimStyle.Render(noMatchLogsText)
	}

	lines := make([]string, len(m.filtered))
	for i, r := range m.filtered {
		lines[i] = m.formatRecord(r)
	}
	return strings.Join(lines, "\n")
}

// alertsContent renders the visible alert lines, or an empty state
func (m Model) alertsContent() string {
	if len(m.alertLines) == 0 {
		return dimStyle.Render(emptyAlertsText)
	}
	visible := m.visibleAlerts()
	if len(visible) == 0 {
		return dimStyle.Render(noMatchAlertsText)
	}

	lines := make([]string, len(visible))
	for i, line := range visible {
		lines[i] = levelStyle(m.classifier.Classify(line)).Render(line)
	}
	return strings.Join(lines, "\n")
}

// formatRecord formats a single record for display
func (m Model) formatRecord(r domain.LogRecord) string {
	style := levelStyle(m.classifier.Classify(r.Message))
	return dimStyle.Render(r.TimestampText) + " " + style.Render(r.Message)
}

// statusBar renders the bottom status bar
func (m Model) statusBar() string {
	var left, right string

	switch m.mode {
	case ModeFilter:
		left = "Filter: " + m.textInput.View()
	case ModeDateRange:
		left = "Date range: " + m.textInput.View()
	case ModeContainer:
		left = "Watch: " + m.textInput.View()
	default:
		switch {
		case m.statusErr != nil:
			left = errorStyle.Render(" " + truncateError(m.statusErr, maxErrorDisplayLen) + " ")
		case m.viewMode == ViewModeLogs && m.showJump:
			left = jumpStyle.Render(" G jump to latest ")
		default:
			left = m.help.ShortHelpView(m.keys.ShortHelp())
		}
	}

	var visible, total int
	if m.viewMode == ViewModeAlerts {
		visible = len(m.visibleAlerts())
		total = len(m.alertLines)
		right = "[Alerts]"
	} else {
		visible = len(m.filtered)
		total = len(m.records)
		followIndicator := "[FOLLOW]"
		if !m.scroll.AutoScroll() {
			followIndicator = "[PAUSED]"
		}
		right = "[Logs] " + followIndicator
	}
	right += fmt.Sprintf(" %s/%s lines", humanize.Comma(int64(visible)), humanize.Comma(int64(total)))

	leftWidth := m.width - lipgloss.Width(right) - 4
	if leftWidth < 0 {
		leftWidth = 0
	}

	leftPart := statusStyle.Width(leftWidth).Render(left)
	rightPart := statusStyle.Render(right)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPart, "  ", rightPart)
}

// helpView renders the help overlay
func (m Model) helpView() string {
	title := "tailboard [Logs View]"
	if m.viewMode == ViewModeAlerts {
		title = "tailboard [Alerts View]"
	}
	if m.container != "" {
		title += " - " + m.container
	}

	body := m.help.FullHelpView(m.keys.FullHelp())
	help := fmt.Sprintf("%s\n\n%s\n\nPress any key to close help...", title, body)
	return helpStyle.Render(help)
}
