package logs

import (
	"sync"
	"time"

	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/domain"
)

// SinkConfig holds configuration for the buffered sink
type SinkConfig struct {
	FlushInterval time.Duration // How often a batch is committed
	BatchSize     int           // Max records committed per tick
}

// DefaultSinkConfig returns the default configuration
func DefaultSinkConfig() SinkConfig {
	return SinkConfig{
		FlushInterval: constants.DefaultFlushInterval,
		BatchSize:     constants.DefaultBatchSize,
	}
}

// FlushFunc is called after records were committed, outside the sink's lock
type FlushFunc func(committed int)

// Sink queues incoming records and commits them to a Log in bounded batches
// on a fixed interval. Records are never reordered or dropped: whatever is
// still queued at Close is committed in one final flush.
type Sink struct {
	// mu serializes queue mutation and the matching Log append so that
	// concurrent flushes can never interleave their batches.
	mu      sync.Mutex
	pending []domain.LogRecord
	log     *Log
	config  SinkConfig
	onFlush FlushFunc

	stop    chan struct{}
	done    chan struct{}
	started bool
	closed  bool
}

// NewSink creates a sink committing to log. onFlush may be nil.
func NewSink(log *Log, config SinkConfig, onFlush FlushFunc) *Sink {
	if config.FlushInterval <= 0 {
		config.FlushInterval = DefaultSinkConfig().FlushInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSinkConfig().BatchSize
	}
	return &Sink{
		log:     log,
		config:  config,
		onFlush: onFlush,
	}
}

// Start begins the periodic flush. Calling it more than once has no effect.
func (s *Sink) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.closed {
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *Sink) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Flush()
		}
	}
}

// Push queues a record. It never blocks on the flush schedule.
// Returns false if the sink is already closed.
func (s *Sink) Push(record domain.LogRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.pending = append(s.pending, record)
	return true
}

// Flush commits at most BatchSize records from the head of the queue
func (s *Sink) Flush() int {
	return s.commit(s.config.BatchSize)
}

// FlushAll commits every queued record regardless of batch size
func (s *Sink) FlushAll() int {
	return s.commit(-1)
}

func (s *Sink) commit(limit int) int {
	s.mu.Lock()
	n := len(s.pending)
	if limit >= 0 && n > limit {
		n = limit
	}
	if n == 0 {
		s.mu.Unlock()
		return 0
	}

	batch := s.pending[:n:n]
	rest := make([]domain.LogRecord, len(s.pending)-n)
	copy(rest, s.pending[n:])
	s.pending = rest
	s.log.Append(batch...)
	s.mu.Unlock()

	if s.onFlush != nil {
		s.onFlush(n)
	}
	return n
}

// Pending returns the number of queued, uncommitted records
func (s *Sink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close stops the periodic flush and commits everything still queued.
// Returns the number of records committed by the final flush.
func (s *Sink) Close() int {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	s.closed = true
	stop, done := s.stop, s.done
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	return s.FlushAll()
}
