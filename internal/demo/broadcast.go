package demo

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// listener is one live-stream client
type listener struct {
	id     string
	ch     chan string
	closed atomic.Bool
	logger zerolog.Logger
}

// send delivers a line without blocking. A full channel drops the line.
func (l *listener) send(line string) bool {
	if l.closed.Load() {
		return false
	}

	select {
	case l.ch <- line:
		return true
	default:
		l.logger.Warn().Str("listener", l.id).Msg("dropped line, client too slow")
		return false
	}
}

func (l *listener) close() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.ch)
	}
}

// Broadcaster fans lines out to every listener
type Broadcaster struct {
	mu         sync.RWMutex
	listeners  map[string]*listener
	bufferSize int
	logger     zerolog.Logger
}

// NewBroadcaster creates a broadcaster whose listeners buffer bufferSize lines
func NewBroadcaster(bufferSize int, logger zerolog.Logger) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Broadcaster{
		listeners:  make(map[string]*listener),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Subscribe registers a listener and returns its ID and channel
func (b *Broadcaster) Subscribe() (string, <-chan string) {
	l := &listener{
		id:     uuid.NewString(),
		ch:     make(chan string, b.bufferSize),
		logger: b.logger,
	}

	b.mu.Lock()
	b.listeners[l.id] = l
	b.mu.Unlock()

	return l.id, l.ch
}

// Unsubscribe removes a listener and closes its channel
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	l, ok := b.listeners[id]
	if ok {
		delete(b.listeners, id)
	}
	b.mu.Unlock()

	if ok {
		l.close()
	}
}

// Broadcast sends a line to every listener
func (b *Broadcaster) Broadcast(line string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, l := range b.listeners {
		l.send(line)
	}
}

// Count returns the number of listeners
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Close closes every listener
func (b *Broadcaster) Close() {
	b.mu.Lock()
	ls := make([]*listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		ls = append(ls, l)
	}
	b.listeners = make(map[string]*listener)
	b.mu.Unlock()

	for _, l := range ls {
		l.close()
	}
}
