package domain

import "time"

// Container describes a monitored container as reported by the backend.
// Every field is optional on the wire.
type Container struct {
	ContainerID *string  `json:"container_id"`
	Status      *string  `json:"status"`
	LogPath     *string  `json:"log_path"`
	Image       *string  `json:"image"`
	Ports       []string `json:"ports"`
	Volumes     []string `json:"volumes"`
	Networks    []string `json:"networks"`
	StartedAt   *string  `json:"started_at"`
	Uptime      *string  `json:"uptime"`
	Command     *string  `json:"command"`
}

// StartedTime parses StartedAt, returning the zero time when absent or unparseable
func (c Container) StartedTime() time.Time {
	if c.StartedAt == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, *c.StartedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Alert is a keyword match the backend recorded for a container
type Alert struct {
	Container string `json:"container"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// Time parses the alert timestamp, returning the zero time when unparseable
func (a Alert) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, a.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
