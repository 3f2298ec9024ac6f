package demo

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/tailboard/internal/domain"
)

func newTestBackend(t *testing.T, names ...string) *Backend {
	t.Helper()
	b := NewBackend(HubConfig{History: 100, ListenerBuffer: 10}, zerolog.Nop())
	fixed := time.Date(2025, 4, 15, 3, 50, 28, 0, time.UTC)
	b.now = func() time.Time { return fixed }
	for _, name := range names {
		b.AddContainer(ContainerSpec{Name: name, Image: name + ":latest"})
	}
	t.Cleanup(b.Close)
	return b
}

func TestBackend_Containers(t *testing.T) {
	b := newTestBackend(t, "web", "db")

	containers := b.Containers()
	require.Len(t, containers, 2)

	web := containers["web"]
	require.NotNil(t, web.Image)
	assert.Equal(t, "web:latest", *web.Image)
	require.NotNil(t, web.Status)
	assert.Equal(t, "running", *web.Status)
	require.NotNil(t, web.Uptime)
	assert.Equal(t, "0s", *web.Uptime)
	assert.Nil(t, web.LogPath)
}

func TestBackend_AddContainerIsIdempotent(t *testing.T) {
	b := newTestBackend(t)
	h1 := b.AddContainer(ContainerSpec{Name: "web"})
	h2 := b.AddContainer(ContainerSpec{Name: "web"})
	assert.Same(t, h1, h2)
}

func TestBackend_LogsUnknownContainer(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.Logs("nope", 10)
	assert.ErrorIs(t, err, domain.ErrContainerNotFound)
	assert.ErrorIs(t, b.Write("nope", "x"), domain.ErrContainerNotFound)
}

func TestBackend_WriteRaisesAlerts(t *testing.T) {
	b := newTestBackend(t, "web")
	_, _, err := b.AddKeywords([]string{"error"})
	require.NoError(t, err)

	require.NoError(t, b.Write("web", "all good"))
	require.NoError(t, b.Write("web", "ERROR disk full"))

	alerts := b.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "web", alerts[0].Container)
	assert.Equal(t, "ERROR disk full", alerts[0].Message)
	assert.Equal(t, "2025-04-15T03:50:28Z", alerts[0].Timestamp)

	lines, err := b.Logs("web", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"all good", "ERROR disk full"}, lines)

	filtered, err := b.FilteredLogs("web", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"ERROR disk full"}, filtered)

	b.ClearAlerts()
	assert.Empty(t, b.Alerts())
}

func TestBackend_Keywords(t *testing.T) {
	b := newTestBackend(t)

	added, skipped, err := b.AddKeywords([]string{"error", "fail"})
	require.NoError(t, err)
	assert.Equal(t, []string{"error", "fail"}, added)
	assert.Empty(t, skipped)

	added, skipped, err = b.AddKeywords([]string{"ERROR", "panic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"panic"}, added)
	assert.Equal(t, []string{"ERROR"}, skipped)

	assert.Equal(t, []string{"error", "fail", "panic"}, b.Keywords())

	removed, notFound, err := b.RemoveKeywords([]string{"fail", "missing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fail"}, removed)
	assert.Equal(t, []string{"missing"}, notFound)
	assert.Equal(t, []string{"error", "panic"}, b.Keywords())

	_, _, err = b.AddKeywords(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidKeyword)
	_, _, err = b.RemoveKeywords(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidKeyword)
}

func TestBackend_EmailSettings(t *testing.T) {
	b := newTestBackend(t)

	assert.ErrorIs(t, b.SetSender("not-an-email"), domain.ErrInvalidSetting)
	require.NoError(t, b.SetSender("alerts@example.com"))
	assert.Equal(t, "alerts@example.com", b.Sender())

	assert.ErrorIs(t, b.SetAppPassword(""), domain.ErrInvalidSetting)
	require.NoError(t, b.SetAppPassword("abcd efgh"))
	assert.Equal(t, "abcd efgh", b.AppPassword())
}

func TestBackend_Recipients(t *testing.T) {
	b := newTestBackend(t, "web")

	require.NoError(t, b.AddRecipient("web", "zoe@example.com"))
	require.NoError(t, b.AddRecipient("web", "amy@example.com"))
	require.NoError(t, b.AddRecipient("web", "amy@example.com"))

	assert.Equal(t, map[string][]string{
		"web": {"amy@example.com", "zoe@example.com"},
	}, b.Recipients())

	assert.ErrorIs(t, b.AddRecipient("db", "amy@example.com"), domain.ErrContainerNotFound)
	assert.ErrorIs(t, b.AddRecipient("web", "nope"), domain.ErrInvalidSetting)

	require.NoError(t, b.RemoveRecipient("web", "amy@example.com"))
	require.NoError(t, b.RemoveRecipient("web", "zoe@example.com"))
	assert.Empty(t, b.Recipients())
}
