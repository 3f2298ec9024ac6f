package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/tailboard/internal/domain"
)

func serve(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func TestGetContainers(t *testing.T) {
	server, _ := newTestServer(t)

	w := serve(t, server, "GET", "/containers", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp ContainersResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Contains(t, resp, "web")
	require.NotNil(t, resp["web"].Image)
	assert.Equal(t, "nginx:1.27", *resp["web"].Image)
}

func TestGetLogs(t *testing.T) {
	server, backend := newTestServer(t)
	for _, line := range []string{"one", "two", "three"} {
		require.NoError(t, backend.Write("web", line))
	}

	w := serve(t, server, "GET", "/logs/web?tail=2", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp LogsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "two\nthree\n", resp.Logs)
}

func TestGetLogs_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	w := serve(t, server, "GET", "/logs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, domain.ErrCodeContainerNotFound, resp.Code)
}

func TestGetFilteredLogsAndAlerts(t *testing.T) {
	server, backend := newTestServer(t)

	w := serve(t, server, "POST", "/config/filters/add-keyword", `{"keywords":"error, fail"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var added KeywordsAddedResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&added))
	assert.Equal(t, "success", added.Status)
	assert.Equal(t, []string{"error", "fail"}, added.Added)

	require.NoError(t, backend.Write("web", "ok"))
	require.NoError(t, backend.Write("web", "job failed"))

	w = serve(t, server, "GET", "/logs/filter/web", "")
	require.Equal(t, http.StatusOK, w.Code)
	var filtered FilteredLogsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&filtered))
	assert.Equal(t, "job failed\n", filtered.FilteredLogs)

	w = serve(t, server, "GET", "/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []domain.Alert
	require.NoError(t, json.NewDecoder(w.Body).Decode(&alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "job failed", alerts[0].Message)

	w = serve(t, server, "GET", "/clear_alerts", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(t, server, "GET", "/alerts", "")
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestKeywords(t *testing.T) {
	server, _ := newTestServer(t)

	serve(t, server, "POST", "/config/filters/add-keyword", `{"keywords":"error,warn"}`)

	w := serve(t, server, "DELETE", "/config/filters/remove-keyword", `{"keywords":"warn,nope"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var removed KeywordsRemovedResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&removed))
	assert.Equal(t, []string{"warn"}, removed.Removed)
	assert.Equal(t, []string{"nope"}, removed.NotFound)

	w = serve(t, server, "GET", "/config/filters", "")
	assert.JSONEq(t, `{"keywords":["error"]}`, w.Body.String())
}

func TestKeywords_BadRequests(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"keywords":`, domain.ErrCodeMalformedPayload},
		{"empty list", `{"keywords":" , "}`, domain.ErrCodeInvalidKeyword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, server, "POST", "/config/filters/add-keyword", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestEmailSettings(t *testing.T) {
	server, _ := newTestServer(t)

	w := serve(t, server, "POST", "/config/email/sender", `{"email":"alerts@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(t, server, "GET", "/config/email/sender", "")
	assert.JSONEq(t, `{"sender":"alerts@example.com"}`, w.Body.String())

	w = serve(t, server, "POST", "/config/email/app_password", `{"password":"abcd"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(t, server, "GET", "/config/email/app_password", "")
	assert.JSONEq(t, `{"app_password":"abcd"}`, w.Body.String())

	w = serve(t, server, "POST", "/config/email/sender", `{"email":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipients(t *testing.T) {
	server, _ := newTestServer(t)

	w := serve(t, server, "POST", "/config/email/recipients/add", `{"email":"ops@example.com","container":"web"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(t, server, "GET", "/config/email/recipients", "")
	assert.JSONEq(t, `{"web":{"recipients":["ops@example.com"]}}`, w.Body.String())

	w = serve(t, server, "POST", "/config/email/recipients/add", `{"email":"ops@example.com","container":"db"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, server, "POST", "/config/email/recipients/remove", `{"email":"ops@example.com","container":"web"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(t, server, "GET", "/config/email/recipients", "")
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestParseTail(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 100},
		{"tail=5", 5},
		{"tail=0", 100},
		{"tail=-3", 100},
		{"tail=abc", 100},
		{"tail=999999", 10000},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/logs/web?"+tt.query, nil)
			assert.Equal(t, tt.want, parseTail(req))
		})
	}
}

func TestStreamLogs(t *testing.T) {
	server, backend := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/logs/web"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	hub, err := backend.Hub("web")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Stats().Listeners == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, backend.Write("web", "2025-04-15T03:50:28.123Z hello"))
	require.NoError(t, backend.Write("web", "second"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "2025-04-15T03:50:28.123Z hello", string(msg))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "second", string(msg))

	// Shutting the backend down ends the stream with a going-away close
	backend.Close()
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestStreamLogs_UnknownContainer(t *testing.T) {
	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/logs/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
