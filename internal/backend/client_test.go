package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/tailboard/internal/api"
	"github.com/charliek/tailboard/internal/demo"
	"github.com/charliek/tailboard/internal/domain"
)

// newDemoServer serves a demo backend with one container named web
func newDemoServer(t *testing.T) (*Client, *demo.Backend) {
	t.Helper()
	b := demo.NewBackend(demo.HubConfig{History: 100}, zerolog.Nop())
	b.AddContainer(demo.ContainerSpec{Name: "web", Image: "nginx:1.27"})
	t.Cleanup(b.Close)

	server := api.NewServer(api.ServerConfig{}, api.NewHandlers(b, zerolog.Nop()), zerolog.Nop())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return NewClient(ts.URL, 0, zerolog.Nop()), b
}

// newStubServer replies to every request with status and body
func newStubServer(t *testing.T, status int, body string) *Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, 0, zerolog.Nop())
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://localhost:8000/", 0, zerolog.Nop())
	assert.Equal(t, "http://localhost:8000", client.BaseURL())
}

func TestClient_Containers(t *testing.T) {
	client, _ := newDemoServer(t)

	containers, err := client.Containers(context.Background())
	require.NoError(t, err)
	require.Contains(t, containers, "web")
	assert.Equal(t, "nginx:1.27", *containers["web"].Image)
}

func TestClient_Logs(t *testing.T) {
	client, b := newDemoServer(t)
	for _, line := range []string{"one", "two", "three"} {
		require.NoError(t, b.Write("web", line))
	}

	lines, err := client.Logs(context.Background(), "web", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "three"}, lines)

	_, err = client.Logs(context.Background(), "missing", 10)
	assert.ErrorIs(t, err, domain.ErrContainerNotFound)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, domain.ErrCodeContainerNotFound, apiErr.Code)
}

func TestClient_LogsDiscardsBlankLines(t *testing.T) {
	client := newStubServer(t, http.StatusOK, `{"logs":"a\n\n  \nb\r\n"}`)

	lines, err := client.Logs(context.Background(), "web", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestClient_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(*Client) error
	}{
		{"logs missing", `{}`, func(c *Client) error {
			_, err := c.Logs(context.Background(), "web", 10)
			return err
		}},
		{"logs not a string", `{"logs":["a"]}`, func(c *Client) error {
			_, err := c.Logs(context.Background(), "web", 10)
			return err
		}},
		{"filtered logs missing", `{"logs":"a"}`, func(c *Client) error {
			_, err := c.FilteredLogs(context.Background(), "web", 10)
			return err
		}},
		{"not json", `<html>`, func(c *Client) error {
			_, err := c.Logs(context.Background(), "web", 10)
			return err
		}},
		{"keywords not an array", `{"keywords":"error"}`, func(c *Client) error {
			_, err := c.Keywords(context.Background())
			return err
		}},
		{"keywords not strings", `{"keywords":["error",3]}`, func(c *Client) error {
			_, err := c.Keywords(context.Background())
			return err
		}},
		{"containers not an object", `[1,2]`, func(c *Client) error {
			_, err := c.Containers(context.Background())
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubServer(t, http.StatusOK, tt.body)
			assert.ErrorIs(t, tt.call(client), domain.ErrMalformedPayload)
		})
	}
}

func TestClient_KeywordsAndAlerts(t *testing.T) {
	client, b := newDemoServer(t)
	ctx := context.Background()

	added, skipped, err := client.AddKeywords(ctx, []string{"error", "fail"})
	require.NoError(t, err)
	assert.Equal(t, []string{"error", "fail"}, added)
	assert.Empty(t, skipped)

	keywords, err := client.Keywords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"error", "fail"}, keywords)

	require.NoError(t, b.Write("web", "ok"))
	require.NoError(t, b.Write("web", "request failed"))

	filtered, err := client.FilteredLogs(ctx, "web", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"request failed"}, filtered)

	alerts, err := client.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "web", alerts[0].Container)

	require.NoError(t, client.ClearAlerts(ctx))
	alerts, err = client.Alerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	removed, notFound, err := client.RemoveKeywords(ctx, []string{"fail", "nope"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fail"}, removed)
	assert.Equal(t, []string{"nope"}, notFound)

	_, _, err = client.AddKeywords(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidKeyword)
}

func TestClient_EmailSettings(t *testing.T) {
	client, _ := newDemoServer(t)
	ctx := context.Background()

	require.NoError(t, client.SetSender(ctx, "alerts@example.com"))
	sender, err := client.Sender(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alerts@example.com", sender)

	require.NoError(t, client.SetAppPassword(ctx, "abcd efgh"))
	password, err := client.AppPassword(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abcd efgh", password)

	assert.ErrorIs(t, client.SetSender(ctx, "nope"), domain.ErrInvalidSetting)
}

func TestClient_Recipients(t *testing.T) {
	client, _ := newDemoServer(t)
	ctx := context.Background()

	require.NoError(t, client.AddRecipient(ctx, "web", "ops@example.com"))
	recipients, err := client.Recipients(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com"}, recipients)

	other, err := client.Recipients(ctx, "db")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.ErrorIs(t, client.AddRecipient(ctx, "db", "ops@example.com"), domain.ErrContainerNotFound)

	require.NoError(t, client.RemoveRecipient(ctx, "web", "ops@example.com"))
	recipients, err = client.Recipients(ctx, "web")
	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	client := newStubServer(t, http.StatusBadGateway, "")

	_, err := client.Containers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
