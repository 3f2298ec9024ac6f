package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
		m.updateViewport()

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.afterScroll()
		cmds = append(cmds, cmd)

	case WatchStartedMsg:
		m.pending = ""
		if msg.Err != nil {
			m.logger.Warn().Err(msg.Err).Str("container", msg.Container).Msg("watch failed")
			m.statusErr = msg.Err
			return m, statusClearCmd()
		}
		m.attach(msg.Source)
		cmds = append(cmds, m.fetchAlertsCmd(m.container))
		if msg.SeedErr != nil {
			m.logger.Warn().Err(msg.SeedErr).Str("container", msg.Container).Msg("streaming without history")
			m.seedErr = msg.SeedErr
			m.statusErr = fmt.Errorf("loading history: %w", msg.SeedErr)
			cmds = append(cmds, statusClearCmd())
		}

	case StreamUpdateMsg:
		if m.source != nil && msg.SubscriptionID == m.source.ID() {
			m.syncFromSource()
		}

	case TickMsg:
		m.syncFromSource()
		cmds = append(cmds, tickCmd())

	case AlertsMsg:
		if msg.Container != m.container {
			break
		}
		if msg.Err != nil {
			m.logger.Warn().Err(msg.Err).Str("container", msg.Container).Msg("fetching filtered logs failed")
			m.alertsErr = msg.Err
			m.statusErr = msg.Err
			cmds = append(cmds, statusClearCmd())
			break
		}
		m.alertLines = msg.Lines
		m.alertsUpdated = msg.At
		m.alertsErr = nil
		if m.viewMode == ViewModeAlerts {
			m.updateViewport()
		}

	case AlertsTickMsg:
		cmds = append(cmds, m.fetchAlertsCmd(m.container), alertsTickCmd(m.alertsRefresh))

	case StatusClearMsg:
		m.statusErr = nil
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle mode-specific keys first
	switch m.mode {
	case ModeFilter:
		cmd := m.handleFilterKey(msg)
		return m, cmd
	case ModeDateRange:
		cmd := m.handleDateRangeKey(msg)
		return m, cmd
	case ModeContainer:
		cmd := m.handleContainerKey(msg)
		return m, cmd
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchAlertsCmd(m.container)
	}

	// Handle common navigation keys
	m.handleNavigationKey(msg)
	return m, nil
}

// attach makes src the watched source, dropping what the previous one showed
func (m *Model) attach(src LogSource) {
	m.source = src
	m.container = src.Container()
	m.records = nil
	m.seedErr = nil
	m.alertLines = nil
	m.alertsUpdated = time.Time{}
	m.scroll.JumpToLatest()
	m.syncFromSource()
	m.updateViewport()
}

// syncFromSource pulls the committed log when it has grown. While a switch
// is pending the previous source is being torn down, so what it last showed
// stays on screen.
func (m *Model) syncFromSource() {
	if m.source == nil || m.pending != "" {
		return
	}
	m.state = m.source.State()
	if m.source.Len() == len(m.records) {
		return
	}
	m.records = m.source.Records()
	if m.viewMode == ViewModeLogs {
		m.updateViewport()
	}
}
