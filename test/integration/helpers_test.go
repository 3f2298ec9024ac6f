package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

const (
	testListenAddr  = "127.0.0.1:15555"
	testBackendAddr = "http://127.0.0.1:15555"
)

// buildBinary builds the tailboard binary and returns its path
func buildBinary(t *testing.T) string {
	t.Helper()

	binary := filepath.Join(t.TempDir(), "tailboard")

	cmd := exec.Command("go", "build", "-o", binary, "./cmd/tailboard")
	cmd.Dir = projectRoot(t)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, output)
	}

	return binary
}

// projectRoot is two directories up from test/integration
func projectRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return filepath.Join(wd, "..", "..")
}

// demoFixture is a demo backend config following one log file
type demoFixture struct {
	ConfigPath string
	LogPath    string
}

// writeDemoConfig writes a config whose demo backend serves container "web"
// from a log file in a temp directory
func writeDemoConfig(t *testing.T, keywords ...string) demoFixture {
	t.Helper()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "web.log")
	requireNoError(t, os.WriteFile(logPath, nil, 0o644), "failed to create log file")

	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, fmt.Sprintf("%q", kw))
	}

	config := fmt.Sprintf(`backend:
  host: 127.0.0.1
  port: 15555
logging:
  level: debug
  file: tailboard.log
demo:
  addr: %s
  keywords: [%s]
  containers:
    web:
      image: nginx:1.27
      file: web.log
`, testListenAddr, strings.Join(quoted, ", "))

	configPath := filepath.Join(dir, "tailboard.yaml")
	requireNoError(t, os.WriteFile(configPath, []byte(config), 0o644), "failed to write config")

	return demoFixture{ConfigPath: configPath, LogPath: logPath}
}

// appendLines appends lines to a followed log file
func appendLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	requireNoError(t, err, "failed to open log file")
	defer f.Close()
	for _, line := range lines {
		_, err := fmt.Fprintln(f, line)
		requireNoError(t, err, "failed to append line")
	}
}

// startDemo starts the demo backend and waits until it answers
func startDemo(t *testing.T, binary string, fixture demoFixture) *exec.Cmd {
	t.Helper()

	cmd := exec.Command(binary, "demo", "-c", fixture.ConfigPath)
	cmd.Dir = projectRoot(t)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start demo backend: %v", err)
	}
	t.Cleanup(func() { killProcess(cmd) })

	waitForBackend(t, testBackendAddr, 10*time.Second)
	return cmd
}

// waitForBackend waits for the backend health check to pass
func waitForBackend(t *testing.T, addr string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(addr + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("backend did not become ready within %v", timeout)
}

// runTailboard runs a client command against the test backend and returns its stdout
func runTailboard(t *testing.T, binary string, args ...string) (string, error) {
	t.Helper()

	cmd := exec.Command(binary, append([]string{"--addr", testBackendAddr}, args...)...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "TZ=UTC")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return stdout.String(), fmt.Errorf("%w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

// lockedBuffer is a bytes.Buffer a running process can write to while the
// test reads it
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// startTailboard starts a long-running CLI command, capturing its stdout
func startTailboard(t *testing.T, binary string, args ...string) (*exec.Cmd, *lockedBuffer) {
	t.Helper()

	out := &lockedBuffer{}
	cmd := exec.Command(binary, append([]string{"--addr", testBackendAddr}, args...)...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "TZ=UTC")
	cmd.Stdout = out
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start tailboard %v: %v", args, err)
	}
	t.Cleanup(func() { killProcess(cmd) })
	return cmd, out
}

// interruptProcess sends SIGINT and waits for the process to exit
func interruptProcess(t *testing.T, cmd *exec.Cmd, timeout time.Duration) error {
	t.Helper()

	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		t.Fatalf("process did not exit within %v", timeout)
		return nil
	}
}

// killProcess forcefully kills a process that is still running
func killProcess(cmd *exec.Cmd) {
	if cmd != nil && cmd.Process != nil && cmd.ProcessState == nil {
		cmd.Process.Kill()
		cmd.Wait()
	}
}

// eventually polls cond until it holds or timeout passes
func eventually(t *testing.T, timeout time.Duration, msg string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// requireNoError fails the test if err is not nil
func requireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// skipShort skips the test if -short flag is provided
func skipShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}
