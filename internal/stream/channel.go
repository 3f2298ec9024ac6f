// Package stream owns the live log connection for a container: the WebSocket
// ingestion channel and the subscription that ties it to a buffered sink.
package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
)

// closeWriteTimeout bounds the close frame sent on local teardown
const closeWriteTimeout = time.Second

// ChannelConfig holds configuration for a single ingestion channel
type ChannelConfig struct {
	URL              string
	Header           http.Header
	HandshakeTimeout time.Duration
}

// Handlers receive channel events. Both are called from the channel's read
// goroutine and must not block.
type Handlers struct {
	OnState  func(domain.ConnectionState)
	OnRecord func(domain.LogRecord)
}

// Channel is one WebSocket connection delivering raw log lines.
// It moves through connecting -> open -> (error) -> closed and never reconnects.
type Channel struct {
	config   ChannelConfig
	handlers Handlers
	logger   zerolog.Logger

	mu      sync.Mutex
	state   domain.ConnectionState
	conn    *websocket.Conn
	closing bool

	cancel context.CancelFunc
	done   chan struct{}
}

// OpenChannel starts connecting and returns immediately in the connecting state
func OpenChannel(ctx context.Context, config ChannelConfig, handlers Handlers, logger zerolog.Logger) *Channel {
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = constants.DefaultHandshakeTimeout
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Channel{
		config:   config,
		handlers: handlers,
		logger:   logger.With().Str("url", config.URL).Logger(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	c.setState(domain.ConnectionConnecting)

	go c.run(ctx)
	return c
}

// State returns the current connection state
func (c *Channel) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the channel reached the closed state
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)
	defer c.cancel()

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.config.HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, c.config.URL, c.config.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if !c.isClosing() {
			c.logger.Warn().Err(err).Msg("log stream connection failed")
			c.setState(domain.ConnectionError)
		}
		c.setState(domain.ConnectionClosed)
		return
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		conn.Close()
		c.setState(domain.ConnectionClosed)
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Debug().Msg("log stream connected")
	c.setState(domain.ConnectionOpen)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			switch {
			case c.isClosing():
				c.logger.Debug().Msg("log stream closed locally")
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				c.logger.Debug().Msg("log stream closed by server")
			default:
				c.logger.Warn().Err(err).Msg("log stream transport error")
				c.setState(domain.ConnectionError)
			}
			conn.Close()
			c.setState(domain.ConnectionClosed)
			return
		}

		if c.handlers.OnRecord == nil {
			continue
		}
		// a frame may carry several lines; each becomes its own record
		for _, record := range logs.ParseLines(logs.SplitLines(string(data)), time.Now()) {
			c.handlers.OnRecord(record)
		}
	}
}

// Close tears the channel down and waits for the read loop to finish.
// Safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		<-c.done
		return nil
	}
	c.closing = true
	conn := c.conn
	c.mu.Unlock()

	c.cancel()
	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
		conn.Close()
	}

	<-c.done
	return nil
}

func (c *Channel) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

// setState records a transition and reports it. Nothing follows closed.
func (c *Channel) setState(state domain.ConnectionState) {
	c.mu.Lock()
	if c.state == state || c.state == domain.ConnectionClosed {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.mu.Unlock()

	if c.handlers.OnState != nil {
		c.handlers.OnState(state)
	}
}

// StreamURL returns the WebSocket URL of a container's log stream, derived
// from the backend's HTTP base address
func StreamURL(baseURL, container string) (string, error) {
	if container == "" {
		return "", fmt.Errorf("container is required")
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing backend address: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}

	u.Path = u.Path + "/ws/logs/" + container
	u.RawPath = ""
	u.RawQuery = ""
	return u.String(), nil
}
