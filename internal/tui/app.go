package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/charliek/tailboard/internal/backend"
	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
	"github.com/charliek/tailboard/internal/stream"
)

// updateBuffer bounds the stream updates waiting to reach the program.
// Dropped updates are harmless: the periodic tick re-reads the log.
const updateBuffer = 64

// AppConfig wires the TUI to a backend
type AppConfig struct {
	Client        *backend.Client
	Container     string
	Tail          int
	Criteria      domain.FilterCriteria
	Location      *time.Location
	Levels        logs.LevelPatterns
	Tolerance     int
	AlertsRefresh time.Duration
	Sink          logs.SinkConfig
	Channel       stream.ChannelConfig
	Logger        zerolog.Logger
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, cfg AppConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan stream.Update, updateBuffer)
	watcher := stream.NewWatcher(stream.Options{
		Sink:    cfg.Sink,
		Channel: cfg.Channel,
		Logger:  cfg.Logger,
		OnUpdate: func(u stream.Update) {
			select {
			case updates <- u:
			default:
			}
		},
	})
	defer watcher.Close()

	model := NewModel(Options{
		Container:     cfg.Container,
		Tail:          cfg.Tail,
		Criteria:      cfg.Criteria,
		Location:      cfg.Location,
		Levels:        cfg.Levels,
		Tolerance:     cfg.Tolerance,
		AlertsRefresh: cfg.AlertsRefresh,
		Backend:       cfg.Client,
		Watch:         watchFunc(ctx, cfg.Client, watcher, cfg.Tail, cfg.Logger),
		Logger:        cfg.Logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	go forwardUpdates(ctx, p, updates)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// forwardUpdates forwards subscription updates to the TUI program.
// It exits when the context is cancelled.
func forwardUpdates(ctx context.Context, p *tea.Program, updates <-chan stream.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			p.Send(StreamUpdateMsg(u))
		}
	}
}

// watchFunc seeds a subscription with recent lines fetched over REST, then
// hands it to the watcher, which closes the previous one first. A failed
// fetch of an existing container still streams and is reported as seedErr.
func watchFunc(ctx context.Context, client *backend.Client, watcher *stream.Watcher, tail int, logger zerolog.Logger) WatchFunc {
	return func(container string) (LogSource, error, error) {
		streamURL, err := stream.StreamURL(client.BaseURL(), container)
		if err != nil {
			return nil, nil, err
		}

		fetchCtx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
		seed, seedErr := client.Logs(fetchCtx, container, tail)
		cancel()
		if seedErr != nil {
			if errors.Is(seedErr, domain.ErrContainerNotFound) {
				return nil, nil, seedErr
			}
			logger.Warn().Err(seedErr).Str("container", container).Msg("fetching recent logs failed, streaming without history")
		}

		return watcher.Watch(ctx, container, streamURL, seed), seedErr, nil
	}
}
