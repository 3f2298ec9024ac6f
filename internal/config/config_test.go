package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
)

// clearBackendEnv keeps the caller's environment out of Load
func clearBackendEnv(t *testing.T) {
	t.Setenv("BACKEND_SERVICE_HOST", "")
	t.Setenv("BACKEND_SERVICE_PORT", "")
}

func TestLoad_Simple(t *testing.T) {
	clearBackendEnv(t)

	cfg, err := Load(filepath.Join("..", "..", "testdata", "configs", "simple.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://monitor.internal:9000", cfg.Backend.Address())
	assert.Equal(t, 30*time.Second, cfg.Backend.RequestTimeout())
	assert.Equal(t, logs.SinkConfig{FlushInterval: 200 * time.Millisecond, BatchSize: 50}, cfg.Stream.Sink())
	assert.Equal(t, 100, cfg.Stream.Tail)
	assert.Equal(t, 1, cfg.Viewport.ScrollTolerance())
	assert.Equal(t, logs.DefaultLevelPatterns(), *cfg.Levels)
	assert.Equal(t, "127.0.0.1:8000", cfg.Demo.Addr)
	assert.Empty(t, cfg.Demo.Containers)
}

func TestLoad_Full(t *testing.T) {
	clearBackendEnv(t)

	cfg, err := Load(filepath.Join("..", "..", "testdata", "configs", "full.yaml"))
	require.NoError(t, err)

	// env_file overrides the file's backend location
	assert.Equal(t, "http://backend.local:7000", cfg.Backend.Address())
	assert.Equal(t, 5*time.Second, cfg.Backend.RequestTimeout())

	assert.Equal(t, logs.SinkConfig{FlushInterval: 100 * time.Millisecond, BatchSize: 25}, cfg.Stream.Sink())
	assert.Equal(t, 500, cfg.Stream.Tail)
	assert.Equal(t, 3*time.Second, cfg.Stream.Handshake())

	assert.True(t, cfg.Filter.IgnoreCase)
	assert.Equal(t, 7, cfg.Filter.DefaultDays)
	assert.Equal(t, time.UTC, cfg.Filter.Location())
	assert.Equal(t, 0, cfg.Viewport.ScrollTolerance())

	assert.Equal(t, []string{"error", "panic"}, cfg.Levels.Error)
	assert.Equal(t, "debug", cfg.Logging.Logging().Level)
	assert.Equal(t, "tailboard.log", cfg.Logging.File)

	assert.Equal(t, 250*time.Millisecond, cfg.Demo.GenerateInterval())
	assert.Equal(t, []string{"error", "fail"}, cfg.Demo.Keywords)
	require.Len(t, cfg.Demo.Containers, 3)
	assert.Equal(t, DemoContainerConfig{File: "/var/log/nginx/access.log"}, cfg.Demo.Containers["web"])
	assert.Equal(t, DemoContainerConfig{}, cfg.Demo.Containers["worker"])
	assert.Equal(t, DemoContainerConfig{Image: "api:1.4", File: "/var/log/api.log", FromEnd: true}, cfg.Demo.Containers["api"])
}

func TestLoad_ProcessEnvWins(t *testing.T) {
	t.Setenv("BACKEND_SERVICE_HOST", "https://prod.example.com")
	t.Setenv("BACKEND_SERVICE_PORT", "")

	cfg, err := Load(filepath.Join("..", "..", "testdata", "configs", "full.yaml"))
	require.NoError(t, err)

	// Host from the process, port still from env_file
	assert.Equal(t, "https://prod.example.com:7000", cfg.Backend.Address())
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoad_WorldWritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tailboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  port: 8000\n"), 0o644))
	require.NoError(t, os.Chmod(path, 0o666))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure permissions")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("backend: [unclosed"))
	assert.Error(t, err)
}

func TestParse_InvalidDemoContainer(t *testing.T) {
	_, err := Parse([]byte("demo:\n  containers:\n    web: [1, 2]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `demo container "web"`)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.Address())
	assert.NoError(t, Validate(cfg))
}

func TestFilterConfig_LocationFallsBackToLocal(t *testing.T) {
	assert.Equal(t, time.Local, FilterConfig{}.Location())
	assert.Equal(t, time.Local, FilterConfig{Timezone: "Nowhere/Nothing"}.Location())
}
