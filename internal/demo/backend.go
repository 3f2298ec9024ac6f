// Package demo is an in-memory stand-in for the monitoring backend. It keeps
// per-container log history, raises keyword alerts and holds the notifier
// settings that the real service would persist.
package demo

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/charliek/tailboard/internal/domain"
)

// ContainerSpec describes a demo container
type ContainerSpec struct {
	Name    string
	Image   string
	LogPath string
	Command string
}

type container struct {
	info domain.Container
	hub  *Hub
}

// Backend holds every piece of demo state
type Backend struct {
	mu         sync.RWMutex
	containers map[string]*container
	alerts     []domain.Alert
	keywords   []string
	sender     string
	password   string
	recipients map[string][]string

	hubConfig HubConfig
	logger    zerolog.Logger
	now       func() time.Time
}

// NewBackend creates an empty backend
func NewBackend(hubConfig HubConfig, logger zerolog.Logger) *Backend {
	return &Backend{
		containers: make(map[string]*container),
		recipients: make(map[string][]string),
		hubConfig:  hubConfig,
		logger:     logger,
		now:        time.Now,
	}
}

// AddContainer registers a container and returns its hub
func (b *Backend) AddContainer(spec ContainerSpec) *Hub {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.containers[spec.Name]; ok {
		return c.hub
	}

	started := b.now().UTC().Format(time.RFC3339)
	status := "running"
	info := domain.Container{
		ContainerID: strPtr(spec.Name),
		Status:      &status,
		StartedAt:   &started,
		Ports:       []string{},
		Volumes:     []string{},
		Networks:    []string{"bridge"},
	}
	if spec.Image != "" {
		info.Image = strPtr(spec.Image)
	}
	if spec.LogPath != "" {
		info.LogPath = strPtr(spec.LogPath)
	}
	if spec.Command != "" {
		info.Command = strPtr(spec.Command)
	}

	hub := NewHub(b.hubConfig, b.logger.With().Str("container", spec.Name).Logger())
	b.containers[spec.Name] = &container{info: info, hub: hub}
	return hub
}

// Containers returns every container keyed by name, with uptime filled in
func (b *Backend) Containers() map[string]domain.Container {
	b.mu.RLock()
	defer b.mu.RUnlock()

	now := b.now()
	out := make(map[string]domain.Container, len(b.containers))
	for name, c := range b.containers {
		info := c.info
		if started := info.StartedTime(); !started.IsZero() {
			uptime := now.Sub(started).Truncate(time.Second).String()
			info.Uptime = &uptime
		}
		out[name] = info
	}
	return out
}

// Hub returns a container's hub
func (b *Backend) Hub(name string) (*Hub, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.containers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, name)
	}
	return c.hub, nil
}

// Write records a line from a container. Lines containing a keyword raise an alert.
func (b *Backend) Write(name, line string) error {
	hub, err := b.Hub(name)
	if err != nil {
		return err
	}
	hub.Write(line)

	b.mu.Lock()
	defer b.mu.Unlock()
	if matchesAny(line, b.keywords) {
		b.alerts = append(b.alerts, domain.Alert{
			Container: name,
			Timestamp: b.now().UTC().Format(time.RFC3339Nano),
			Message:   line,
		})
	}
	return nil
}

// Logs returns the last tail lines of a container
func (b *Backend) Logs(name string, tail int) ([]string, error) {
	hub, err := b.Hub(name)
	if err != nil {
		return nil, err
	}
	return hub.Tail(tail), nil
}

// FilteredLogs returns the lines among the last tail that contain a keyword
func (b *Backend) FilteredLogs(name string, tail int) ([]string, error) {
	lines, err := b.Logs(name, tail)
	if err != nil {
		return nil, err
	}

	keywords := b.Keywords()
	var out []string
	for _, line := range lines {
		if matchesAny(line, keywords) {
			out = append(out, line)
		}
	}
	return out, nil
}

// Alerts returns every alert raised since the last clear
func (b *Backend) Alerts() []domain.Alert {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Alert{}, b.alerts...)
}

// ClearAlerts drops every alert
func (b *Backend) ClearAlerts() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alerts = nil
}

// Keywords returns the alert keywords in the order they were added
func (b *Backend) Keywords() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string{}, b.keywords...)
}

// AddKeywords adds keywords, reporting which were new and which already existed
func (b *Backend) AddKeywords(keywords []string) (added, skipped []string, err error) {
	if len(keywords) == 0 {
		return nil, nil, fmt.Errorf("%w: no keywords given", domain.ErrInvalidKeyword)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	added, skipped = []string{}, []string{}
	for _, kw := range keywords {
		if containsFold(b.keywords, kw) {
			skipped = append(skipped, kw)
			continue
		}
		b.keywords = append(b.keywords, kw)
		added = append(added, kw)
	}
	return added, skipped, nil
}

// RemoveKeywords removes keywords, reporting which were removed and which were unknown
func (b *Backend) RemoveKeywords(keywords []string) (removed, notFound []string, err error) {
	if len(keywords) == 0 {
		return nil, nil, fmt.Errorf("%w: no keywords given", domain.ErrInvalidKeyword)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	removed, notFound = []string{}, []string{}
	for _, kw := range keywords {
		idx := -1
		for i, existing := range b.keywords {
			if strings.EqualFold(existing, kw) {
				idx = i
				break
			}
		}
		if idx < 0 {
			notFound = append(notFound, kw)
			continue
		}
		b.keywords = append(b.keywords[:idx], b.keywords[idx+1:]...)
		removed = append(removed, kw)
	}
	return removed, notFound, nil
}

// Sender returns the notifier email address
func (b *Backend) Sender() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sender
}

// SetSender sets the notifier email address
func (b *Backend) SetSender(email string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email address %q", domain.ErrInvalidSetting, email)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sender = email
	return nil
}

// AppPassword returns the notifier app password
func (b *Backend) AppPassword() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.password
}

// SetAppPassword sets the notifier app password
func (b *Backend) SetAppPassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: app password is required", domain.ErrInvalidSetting)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.password = password
	return nil
}

// Recipients returns the alert recipients of every container that has any
func (b *Backend) Recipients() map[string][]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string][]string, len(b.recipients))
	for name, emails := range b.recipients {
		out[name] = append([]string{}, emails...)
	}
	return out
}

// AddRecipient adds an alert recipient to a container
func (b *Backend) AddRecipient(name, email string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email address %q", domain.ErrInvalidSetting, email)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.containers[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrContainerNotFound, name)
	}
	for _, existing := range b.recipients[name] {
		if existing == email {
			return nil
		}
	}
	b.recipients[name] = append(b.recipients[name], email)
	sort.Strings(b.recipients[name])
	return nil
}

// RemoveRecipient removes an alert recipient from a container
func (b *Backend) RemoveRecipient(name, email string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.containers[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrContainerNotFound, name)
	}

	emails := b.recipients[name]
	for i, existing := range emails {
		if existing == email {
			b.recipients[name] = append(emails[:i], emails[i+1:]...)
			break
		}
	}
	if len(b.recipients[name]) == 0 {
		delete(b.recipients, name)
	}
	return nil
}

// Close disconnects every live client
func (b *Backend) Close() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.containers {
		c.hub.Close()
	}
}

// matchesAny reports whether line contains any keyword, ignoring case
func matchesAny(line string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	lower := strings.ToLower(line)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func strPtr(s string) *string {
	return &s
}
