// Package constants provides shared configuration values used across the tailboard application.
package constants

import "time"

// Configuration file defaults
const (
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "tailboard.yaml"

	// DefaultBackendHost is the default host of the monitoring backend
	DefaultBackendHost = "127.0.0.1"

	// DefaultBackendPort is the default port of the monitoring backend
	DefaultBackendPort = 8000

	// DefaultBackendAddress is the default backend address for client connections
	DefaultBackendAddress = "http://127.0.0.1:8000"

	// EnvBackendHost overrides the backend host
	EnvBackendHost = "BACKEND_SERVICE_HOST"

	// EnvBackendPort overrides the backend port
	EnvBackendPort = "BACKEND_SERVICE_PORT"
)

// Timeout and duration defaults
const (
	// DefaultRequestTimeout is the default timeout for backend requests
	DefaultRequestTimeout = 30 * time.Second

	// DefaultHandshakeTimeout bounds the WebSocket handshake
	DefaultHandshakeTimeout = 10 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful shutdown
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultAlertsRefresh is how often the alerts view refetches filtered logs
	DefaultAlertsRefresh = 10 * time.Minute
)

// Stream defaults
const (
	// DefaultFlushInterval is how often the buffered sink commits records
	DefaultFlushInterval = 200 * time.Millisecond

	// DefaultBatchSize is the maximum number of records committed per tick
	DefaultBatchSize = 50

	// DefaultTail is the number of historical lines requested from the backend
	DefaultTail = 100

	// MaxTail is the largest tail the client will request
	MaxTail = 10000

	// DefaultScrollTolerance is the distance from the bottom, in rows, still
	// treated as "at the bottom"
	DefaultScrollTolerance = 1
)

// Demo backend defaults
const (
	// DefaultDemoAddr is where the demo backend listens
	DefaultDemoAddr = "127.0.0.1:8000"

	// DefaultDemoHistory is the number of lines each demo container keeps
	DefaultDemoHistory = 1000

	// DefaultDemoSubscriptionBuffer is the per-client send buffer
	DefaultDemoSubscriptionBuffer = 100

	// DefaultDemoInterval is how often synthetic containers emit a line
	DefaultDemoInterval = time.Second
)

// ANSI color codes for terminal output
var (
	// LevelColors maps a log level name to its terminal color
	LevelColors = map[string]string{
		"error":     "\033[31m", // red
		"warning":   "\033[33m", // yellow
		"highlight": "\033[36m", // cyan
	}

	// ColorDim is used for timestamps
	ColorDim = "\033[90m"

	// ColorReset resets the terminal color
	ColorReset = "\033[0m"
)
