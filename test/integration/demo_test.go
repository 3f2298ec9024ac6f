package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type ContainerInfo struct {
	Status *string `json:"status"`
	Image  *string `json:"image"`
}

type AlertInfo struct {
	Container string `json:"container"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

type LogsResponse struct {
	Logs string `json:"logs"`
}

func getJSON(t *testing.T, url string, v interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	requireNoError(t, err, "request failed")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode %s: %v", url, err)
	}
}

func TestDemo_ContainersEndpoint(t *testing.T) {
	skipShort(t)

	binary := buildBinary(t)
	startDemo(t, binary, writeDemoConfig(t))

	var containers map[string]ContainerInfo
	getJSON(t, testBackendAddr+"/containers", &containers)

	web, ok := containers["web"]
	if !ok {
		t.Fatalf("expected container web, got %v", containers)
	}
	if web.Status == nil || *web.Status != "running" {
		t.Errorf("expected status running, got %v", web.Status)
	}
	if web.Image == nil || *web.Image != "nginx:1.27" {
		t.Errorf("expected image nginx:1.27, got %v", web.Image)
	}
}

func TestDemo_FollowsLogFile(t *testing.T) {
	skipShort(t)

	binary := buildBinary(t)
	fixture := writeDemoConfig(t)
	startDemo(t, binary, fixture)

	appendLines(t, fixture.LogPath,
		"2025-04-15T03:50:28.000Z GET /health 200",
		"2025-04-15T03:50:29.000Z GET /orders 200",
	)

	eventually(t, 5*time.Second, "appended lines served by /logs/web", func() bool {
		var logs LogsResponse
		getJSON(t, testBackendAddr+"/logs/web?tail=10", &logs)
		return strings.Contains(logs.Logs, "GET /orders 200")
	})
}

func TestDemo_StreamsAppendedLines(t *testing.T) {
	skipShort(t)

	binary := buildBinary(t)
	fixture := writeDemoConfig(t)
	startDemo(t, binary, fixture)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+testListenAddr+"/ws/logs/web", nil)
	requireNoError(t, err, "failed to dial stream")
	defer conn.Close()

	line := "2025-04-15T03:50:30.000Z streamed line"
	appendLines(t, fixture.LogPath, line)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	requireNoError(t, err, "failed to read stream message")
	if string(msg) != line {
		t.Errorf("expected %q, got %q", line, msg)
	}
}

func TestDemo_UnknownContainerStream(t *testing.T) {
	skipShort(t)

	binary := buildBinary(t)
	startDemo(t, binary, writeDemoConfig(t))

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+testListenAddr+"/ws/logs/missing", nil)
	if err == nil {
		t.Fatal("expected handshake to fail for unknown container")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 response, got %v", resp)
	}
}

func TestDemo_KeywordAlerts(t *testing.T) {
	skipShort(t)

	binary := buildBinary(t)
	fixture := writeDemoConfig(t, "error")
	startDemo(t, binary, fixture)

	appendLines(t, fixture.LogPath,
		"2025-04-15T03:50:28.000Z all good",
		"2025-04-15T03:50:29.000Z error: disk full",
	)

	var alerts []AlertInfo
	eventually(t, 5*time.Second, "alert raised for keyword line", func() bool {
		getJSON(t, testBackendAddr+"/alerts", &alerts)
		return len(alerts) > 0
	})

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d: %v", len(alerts), alerts)
	}
	if alerts[0].Container != "web" || !strings.Contains(alerts[0].Message, "disk full") {
		t.Errorf("unexpected alert: %+v", alerts[0])
	}
}

func TestDemo_ShutdownOnInterrupt(t *testing.T) {
	skipShort(t)

	binary := buildBinary(t)
	cmd := startDemo(t, binary, writeDemoConfig(t))

	if err := interruptProcess(t, cmd, 15*time.Second); err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}

	if _, err := http.Get(testBackendAddr + "/health"); err == nil {
		t.Error("backend still answering after shutdown")
	}
}
