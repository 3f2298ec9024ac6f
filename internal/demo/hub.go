package demo

import (
	"github.com/rs/zerolog"

	"github.com/charliek/tailboard/internal/constants"
)

// HubConfig holds configuration for a container's hub
type HubConfig struct {
	History        int // lines kept for bulk fetches
	ListenerBuffer int // per-client buffer for live streams
}

// DefaultHubConfig returns the default configuration
func DefaultHubConfig() HubConfig {
	return HubConfig{
		History:        constants.DefaultDemoHistory,
		ListenerBuffer: constants.DefaultDemoSubscriptionBuffer,
	}
}

// HubStats describes a hub
type HubStats struct {
	Lines     int
	History   int
	Listeners int
}

// Hub stores one container's recent output and streams new lines to clients
type Hub struct {
	ring        *Ring
	broadcaster *Broadcaster
}

// NewHub creates a hub
func NewHub(config HubConfig, logger zerolog.Logger) *Hub {
	defaults := DefaultHubConfig()
	if config.History <= 0 {
		config.History = defaults.History
	}
	if config.ListenerBuffer <= 0 {
		config.ListenerBuffer = defaults.ListenerBuffer
	}

	return &Hub{
		ring:        NewRing(config.History),
		broadcaster: NewBroadcaster(config.ListenerBuffer, logger),
	}
}

// Write stores a line and broadcasts it
func (h *Hub) Write(line string) {
	h.ring.Write(line)
	h.broadcaster.Broadcast(line)
}

// Tail returns the last n lines, or everything when n <= 0
func (h *Hub) Tail(n int) []string {
	return h.ring.Last(n)
}

// Subscribe registers a live listener
func (h *Hub) Subscribe() (string, <-chan string) {
	return h.broadcaster.Subscribe()
}

// Unsubscribe removes a live listener
func (h *Hub) Unsubscribe(id string) {
	h.broadcaster.Unsubscribe(id)
}

// Stats returns statistics about the hub
func (h *Hub) Stats() HubStats {
	return HubStats{
		Lines:     h.ring.Count(),
		History:   h.ring.Capacity(),
		Listeners: h.broadcaster.Count(),
	}
}

// Close disconnects every listener
func (h *Hub) Close() {
	h.broadcaster.Close()
}
