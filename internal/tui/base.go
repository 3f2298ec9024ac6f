package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charliek/tailboard/internal/logs"
	scroll "github.com/charliek/tailboard/internal/viewport"
)

// maxErrorDisplayLen is the maximum length of error messages in the status bar
const maxErrorDisplayLen = 60

const (
	headerHeight = 2 // header line + margin
	footerHeight = 2 // status bar
)

// handleWindowSize handles window resize messages
func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width

	viewportHeight := msg.Height - headerHeight - footerHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, viewportHeight)
		m.viewport.YPosition = headerHeight
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}
}

// handleFilterKey handles keys in text filter mode. The filter applies as
// you type.
func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.textInput.Blur()
		m.setFilterText("")
		return nil

	case "enter":
		m.mode = ModeNormal
		m.textInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.setFilterText(m.textInput.Value())
	return cmd
}

// handleDateRangeKey handles keys in date range mode. The range applies on enter.
func (m *Model) handleDateRangeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.textInput.Blur()
		return nil

	case "enter":
		m.mode = ModeNormal
		m.textInput.Blur()
		r, err := logs.ParseDateRange(m.textInput.Value(), m.location)
		if err != nil {
			m.statusErr = err
			return statusClearCmd()
		}
		m.criteria.DateRange = r
		m.updateViewport()
		return nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return cmd
}

// handleContainerKey handles keys while entering a container to watch
func (m *Model) handleContainerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.textInput.Blur()
		return nil

	case "enter":
		m.mode = ModeNormal
		m.textInput.Blur()
		name := strings.TrimSpace(m.textInput.Value())
		if name == "" || name == m.container {
			return nil
		}
		cmd := m.watchCmd(name)
		if cmd != nil {
			m.pending = name
		}
		return cmd
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return cmd
}

// handleNavigationKey handles normal-mode keys.
// Returns true if the key was handled
func (m *Model) handleNavigationKey(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.SwitchView):
		if m.viewMode == ViewModeLogs {
			m.viewMode = ViewModeAlerts
		} else {
			m.viewMode = ViewModeLogs
		}
		m.updateViewport()

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, m.keys.Filter):
		m.startInput(ModeFilter, "Type to filter...", m.filterText())

	case key.Matches(msg, m.keys.DateRange):
		m.startInput(ModeDateRange, "YYYY-MM-DD..YYYY-MM-DD", logs.FormatDateRange(m.criteria.DateRange))

	case key.Matches(msg, m.keys.Container):
		m.startInput(ModeContainer, "container name", "")

	case key.Matches(msg, m.keys.IgnoreCase):
		m.criteria.IgnoreCase = !m.criteria.IgnoreCase
		m.updateViewport()

	case key.Matches(msg, m.keys.ClearAll):
		m.criteria.Text = ""
		m.criteria.DateRange.From = nil
		m.criteria.DateRange.To = nil
		m.alertFilter = ""
		m.updateViewport()

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		m.afterScroll()

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		m.afterScroll()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		m.afterScroll()

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		m.afterScroll()

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		m.afterScroll()

	case key.Matches(msg, m.keys.Latest):
		if m.viewMode == ViewModeLogs {
			m.scroll.JumpToLatest()
			m.updateViewport()
		} else {
			m.viewport.GotoBottom()
		}

	default:
		return false
	}
	return true
}

// startInput switches to an input mode with the text input primed
func (m *Model) startInput(mode Mode, placeholder, value string) {
	m.mode = mode
	m.textInput.Placeholder = placeholder
	m.textInput.SetValue(value)
	m.textInput.CursorEnd()
	m.textInput.Focus()
}

// filterText returns the text filter of the current view
func (m *Model) filterText() string {
	if m.viewMode == ViewModeAlerts {
		return m.alertFilter
	}
	return m.criteria.Text
}

// setFilterText sets the text filter of the current view
func (m *Model) setFilterText(text string) {
	if m.viewMode == ViewModeAlerts {
		m.alertFilter = text
	} else {
		m.criteria.Text = text
	}
	m.updateViewport()
}

// afterScroll feeds a user-driven scroll position to the scroll controller
func (m *Model) afterScroll() {
	if m.viewMode != ViewModeLogs {
		return
	}
	m.scroll.OnScroll(m.metrics())
	m.showJump = !m.scroll.AutoScroll()
}

// metrics describes the viewport's visible window in rows
func (m *Model) metrics() scroll.Metrics {
	return scroll.Metrics{
		Offset:  m.viewport.YOffset,
		Height:  m.viewport.Height,
		Content: m.viewport.TotalLineCount(),
	}
}

// updateViewport re-filters and re-renders the current view. In the logs
// view the scroll controller decides whether to follow the latest record.
func (m *Model) updateViewport() {
	if m.viewMode == ViewModeAlerts {
		m.viewport.SetContent(m.alertsContent())
		return
	}

	m.filtered = logs.Apply(m.records, m.criteria, m.location)
	m.viewport.SetContent(m.logsContent())

	decision := m.scroll.Evaluate(len(m.filtered))
	m.showJump = decision.ShowJump
	if decision.ScrollTo >= 0 {
		m.scrollTo(decision.ScrollTo)
	}
}

// scrollTo brings row into view at the bottom edge of the viewport
func (m *Model) scrollTo(row int) {
	offset := row - m.viewport.Height + 1
	if offset < 0 {
		offset = 0
	}
	m.viewport.SetYOffset(offset)
}

// visibleAlerts returns the server-filtered lines after the local text filter
func (m *Model) visibleAlerts() []string {
	return logs.FilterLines(m.alertLines, m.alertFilter)
}

// truncateError truncates an error message to maxLen characters
func truncateError(err error, maxLen int) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxLen {
		return msg[:maxLen-3] + "..."
	}
	return msg
}
