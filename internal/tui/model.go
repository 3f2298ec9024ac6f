package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
	"github.com/charliek/tailboard/internal/stream"
	scroll "github.com/charliek/tailboard/internal/viewport"
)

// Mode represents the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeDateRange
	ModeContainer
	ModeHelp
)

// ViewMode selects what the main pane shows
type ViewMode int

const (
	ViewModeLogs ViewMode = iota
	ViewModeAlerts
)

// LogSource is the live committed log of the watched container.
// *stream.Subscription implements it.
type LogSource interface {
	ID() string
	Container() string
	State() domain.ConnectionState
	Len() int
	Records() []domain.LogRecord
}

// Backend fetches the server-side filtered lines shown in the alerts view
type Backend interface {
	FilteredLogs(ctx context.Context, container string, tail int) ([]string, error)
}

// WatchFunc starts watching container, replacing whatever was watched before.
// A non-nil seedErr means recent history could not be loaded; the returned
// source still streams.
type WatchFunc func(container string) (src LogSource, seedErr error, err error)

// Options configure a Model
type Options struct {
	Container     string
	Tail          int
	Criteria      domain.FilterCriteria // initial filter, e.g. the default date range
	Location      *time.Location
	Levels        logs.LevelPatterns
	Tolerance     int
	AlertsRefresh time.Duration
	Backend       Backend
	Watch         WatchFunc
	Logger        zerolog.Logger
}

// Model is the bubbletea model for the log viewer
type Model struct {
	// UI components
	viewport  viewport.Model
	textInput textinput.Model
	help      help.Model
	keys      keyMap

	// Mode
	mode     Mode
	viewMode ViewMode

	// Watched container
	container string
	tail      int
	source    LogSource
	state     domain.ConnectionState
	records   []domain.LogRecord
	pending   string // container a switch was requested for
	seedErr   error  // history fetch failure of the current source

	// Filtering
	criteria   domain.FilterCriteria
	location   *time.Location
	filtered   []domain.LogRecord
	classifier *logs.Classifier

	// Auto-scroll
	scroll   *scroll.Controller
	showJump bool

	// Alerts view
	alertLines    []string
	alertFilter   string
	alertsUpdated time.Time
	alertsErr     error
	alertsRefresh time.Duration

	// Last error shown in the status bar
	statusErr error

	// Dimensions
	width  int
	height int
	ready  bool

	backend Backend
	watch   WatchFunc
	logger  zerolog.Logger
	now     func() time.Time
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 100
	ti.Width = 40

	tail := opts.Tail
	if tail <= 0 {
		tail = constants.DefaultTail
	}
	refresh := opts.AlertsRefresh
	if refresh <= 0 {
		refresh = constants.DefaultAlertsRefresh
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return Model{
		textInput:     ti,
		help:          help.New(),
		keys:          defaultKeyMap(),
		mode:          ModeNormal,
		viewMode:      ViewModeLogs,
		container:     opts.Container,
		tail:          tail,
		state:         domain.ConnectionConnecting,
		criteria:      opts.Criteria,
		location:      loc,
		classifier:    logs.NewClassifier(opts.Levels),
		scroll:        scroll.New(opts.Tolerance),
		alertsRefresh: refresh,
		backend:       opts.Backend,
		watch:         opts.Watch,
		logger:        opts.Logger,
		now:           time.Now,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.watchCmd(m.container),
		m.fetchAlertsCmd(m.container),
		alertsTickCmd(m.alertsRefresh),
		tickCmd(),
	)
}

// WatchStartedMsg is sent once a container's subscription is open
type WatchStartedMsg struct {
	Container string
	Source    LogSource
	SeedErr   error
	Err       error
}

// StreamUpdateMsg is sent when the watched subscription flushes or changes state
type StreamUpdateMsg stream.Update

// AlertsMsg carries a fetch of server-side filtered lines
type AlertsMsg struct {
	Container string
	Lines     []string
	Err       error
	At        time.Time
}

// TickMsg is sent periodically
type TickMsg time.Time

// AlertsTickMsg triggers a periodic alerts refresh
type AlertsTickMsg time.Time

// StatusClearMsg is sent to clear the status error after a delay
type StatusClearMsg struct{}

// statusClearDelay is how long to show an error before clearing it
const statusClearDelay = 5 * time.Second

// statusClearCmd returns a command that clears the status error after a delay
func statusClearCmd() tea.Cmd {
	return tea.Tick(statusClearDelay, func(t time.Time) tea.Msg {
		return StatusClearMsg{}
	})
}

// watchCmd subscribes to container off the update loop
func (m Model) watchCmd(container string) tea.Cmd {
	if m.watch == nil || container == "" {
		return nil
	}
	watch := m.watch
	return func() tea.Msg {
		src, seedErr, err := watch(container)
		return WatchStartedMsg{Container: container, Source: src, SeedErr: seedErr, Err: err}
	}
}

// fetchAlertsCmd fetches server-side filtered lines for container
func (m Model) fetchAlertsCmd(container string) tea.Cmd {
	if m.backend == nil || container == "" {
		return nil
	}
	backend, tail, now := m.backend, m.tail, m.now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultRequestTimeout)
		defer cancel()
		lines, err := backend.FilteredLogs(ctx, container, tail)
		return AlertsMsg{Container: container, Lines: lines, Err: err, At: now()}
	}
}

// alertsTickCmd schedules the next alerts refresh
func alertsTickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return AlertsTickMsg(t)
	})
}

// tickCmd returns a command that ticks periodically
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
