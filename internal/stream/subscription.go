package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
)

// Update notifies an observer that a subscription changed. Updates are hints:
// observers read the current state and log from the subscription itself.
type Update struct {
	SubscriptionID string
	Container      string
	State          domain.ConnectionState
	Committed      int // records committed by the flush that triggered this update
}

// Options configure a subscription
type Options struct {
	Container string
	URL       string
	Seed      []string // raw lines committed before the channel opens
	Sink      logs.SinkConfig
	Channel   ChannelConfig
	OnUpdate  func(Update) // called from background goroutines; must not block
	Logger    zerolog.Logger
}

// Subscription streams one container's logs into a committed log through a
// buffered sink. It owns all three and is the only writer of the log.
type Subscription struct {
	id        string
	container string

	log     *logs.Log
	sink    *logs.Sink
	channel *Channel

	mu    sync.RWMutex
	state domain.ConnectionState

	onUpdate  func(Update)
	logger    zerolog.Logger
	closeOnce sync.Once
}

// Subscribe seeds the committed log, starts the flush timer and opens the
// channel. The returned subscription is already connecting.
func Subscribe(ctx context.Context, opts Options) *Subscription {
	s := &Subscription{
		id:        uuid.NewString(),
		container: opts.Container,
		log:       logs.NewLog(),
		state:     domain.ConnectionConnecting,
		onUpdate:  opts.OnUpdate,
	}
	s.logger = opts.Logger.With().
		Str("subscription", s.id).
		Str("container", opts.Container).
		Logger()

	if len(opts.Seed) > 0 {
		s.log.Append(logs.ParseLines(opts.Seed, time.Now())...)
	}

	s.sink = logs.NewSink(s.log, opts.Sink, s.handleFlush)
	s.sink.Start()

	channelConfig := opts.Channel
	channelConfig.URL = opts.URL
	s.channel = OpenChannel(ctx, channelConfig, Handlers{
		OnState:  s.handleState,
		OnRecord: s.handleRecord,
	}, s.logger)

	s.logger.Debug().Int("seeded", len(opts.Seed)).Msg("subscribed")
	return s
}

// ID returns the subscription ID
func (s *Subscription) ID() string {
	return s.id
}

// Container returns the container this subscription streams
func (s *Subscription) Container() string {
	return s.container
}

// State returns the connection state
func (s *Subscription) State() domain.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Records returns a snapshot of the committed log
func (s *Subscription) Records() []domain.LogRecord {
	return s.log.Snapshot()
}

// RecordsSince returns the committed records after the first offset, so a
// reader can consume the log incrementally
func (s *Subscription) RecordsSince(offset int) []domain.LogRecord {
	return s.log.Since(offset)
}

// Len returns the number of committed records
func (s *Subscription) Len() int {
	return s.log.Len()
}

// Pending returns the number of received records not yet committed
func (s *Subscription) Pending() int {
	return s.sink.Pending()
}

// Done is closed when the channel has closed, locally or remotely
func (s *Subscription) Done() <-chan struct{} {
	return s.channel.Done()
}

// Close tears the subscription down: the channel closes first so nothing else
// arrives, then the sink stops and commits whatever is still queued.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		_ = s.channel.Close()
		if n := s.sink.Close(); n > 0 {
			s.logger.Debug().Int("records", n).Msg("final flush on teardown")
		}
		s.logger.Debug().Int("committed", s.log.Len()).Msg("unsubscribed")
	})
}

// Discard closes the subscription and releases its committed log
func (s *Subscription) Discard() {
	s.Close()
	s.log.Reset()
}

func (s *Subscription) handleRecord(record domain.LogRecord) {
	if !s.sink.Push(record) {
		s.logger.Warn().Msg("record received after sink closed")
	}
}

func (s *Subscription) handleState(state domain.ConnectionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	if state == domain.ConnectionClosed {
		// Nothing more will arrive, so drain the queue now rather than on the
		// next ticks.
		s.sink.FlushAll()
	}
	s.notify(0)
}

func (s *Subscription) handleFlush(committed int) {
	s.notify(committed)
}

func (s *Subscription) notify(committed int) {
	if s.onUpdate == nil {
		return
	}
	s.onUpdate(Update{
		SubscriptionID: s.id,
		Container:      s.container,
		State:          s.State(),
		Committed:      committed,
	})
}

// Watcher keeps at most one active subscription. Watching a new container
// tears the previous subscription down before the next channel opens.
type Watcher struct {
	mu      sync.Mutex
	base    Options
	current *Subscription
}

// NewWatcher creates a watcher; base supplies everything but the container,
// URL and seed
func NewWatcher(base Options) *Watcher {
	return &Watcher{base: base}
}

// Watch subscribes to container, discarding any previous subscription first
func (w *Watcher) Watch(ctx context.Context, container, streamURL string, seed []string) *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != nil {
		w.current.Discard()
		w.current = nil
	}

	opts := w.base
	opts.Container = container
	opts.URL = streamURL
	opts.Seed = seed
	w.current = Subscribe(ctx, opts)
	return w.current
}

// Current returns the active subscription, or nil
func (w *Watcher) Current() *Subscription {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close discards the active subscription
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != nil {
		w.current.Discard()
		w.current = nil
	}
}
