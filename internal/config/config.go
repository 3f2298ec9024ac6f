package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logging"
	"github.com/charliek/tailboard/internal/logs"
)

// Config represents the top-level tailboard configuration
type Config struct {
	Backend  BackendConfig       `yaml:"backend"`
	EnvFile  string              `yaml:"env_file"`
	Stream   StreamConfig        `yaml:"stream"`
	Filter   FilterConfig        `yaml:"filter"`
	Viewport ViewportConfig      `yaml:"viewport"`
	Levels   *logs.LevelPatterns `yaml:"levels,omitempty"`
	Logging  LoggingConfig       `yaml:"logging"`
	Demo     DemoConfig          `yaml:"demo"`

	// Dir is the directory of the loaded file; relative paths resolve against it
	Dir string `yaml:"-"`
}

// BackendConfig locates the monitoring backend
type BackendConfig struct {
	Scheme  string `yaml:"scheme"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Timeout string `yaml:"timeout"`
}

// Address returns the backend's base HTTP address
func (b BackendConfig) Address() string {
	return fmt.Sprintf("%s://%s:%d", b.Scheme, b.Host, b.Port)
}

// RequestTimeout returns the parsed request timeout
func (b BackendConfig) RequestTimeout() time.Duration {
	return parseDuration(b.Timeout, constants.DefaultRequestTimeout)
}

// StreamConfig tunes live log streaming
type StreamConfig struct {
	FlushInterval    string `yaml:"flush_interval"`
	BatchSize        int    `yaml:"batch_size"`
	Tail             int    `yaml:"tail"`
	HandshakeTimeout string `yaml:"handshake_timeout"`
}

// Sink returns the buffered sink settings
func (s StreamConfig) Sink() logs.SinkConfig {
	return logs.SinkConfig{
		FlushInterval: parseDuration(s.FlushInterval, constants.DefaultFlushInterval),
		BatchSize:     s.BatchSize,
	}
}

// Handshake returns the parsed WebSocket handshake timeout
func (s StreamConfig) Handshake() time.Duration {
	return parseDuration(s.HandshakeTimeout, constants.DefaultHandshakeTimeout)
}

// FilterConfig sets filter defaults
type FilterConfig struct {
	IgnoreCase  bool   `yaml:"ignore_case"`
	DefaultDays int    `yaml:"default_days"` // 0 leaves the date range open
	Timezone    string `yaml:"timezone"`     // IANA name; empty means local time
}

// Location returns the zone date bounds are computed in
func (f FilterConfig) Location() *time.Location {
	if f.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ViewportConfig tunes the auto-scroll policy
type ViewportConfig struct {
	Tolerance *int `yaml:"tolerance,omitempty"` // rows from the bottom still counted as the bottom
}

// ScrollTolerance returns the configured tolerance or the default
func (v ViewportConfig) ScrollTolerance() int {
	if v.Tolerance == nil {
		return constants.DefaultScrollTolerance
	}
	return *v.Tolerance
}

// LoggingConfig controls diagnostic logging
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// Logging converts to the logging package's config
func (l LoggingConfig) Logging() logging.Config {
	return logging.Config{Level: l.Level, File: l.File, JSON: l.JSON}
}

// DemoConfig configures the demo backend
type DemoConfig struct {
	Addr       string                         `yaml:"addr"`
	History    int                            `yaml:"history"`
	Interval   string                         `yaml:"interval"`
	Keywords   []string                       `yaml:"keywords"`
	Containers map[string]DemoContainerConfig `yaml:"containers"`
}

// GenerateInterval returns the parsed synthetic line interval
func (d DemoConfig) GenerateInterval() time.Duration {
	return parseDuration(d.Interval, constants.DefaultDemoInterval)
}

// DemoContainerConfig describes one demo container. The simple form is a log
// file path; an empty path generates synthetic lines.
type DemoContainerConfig struct {
	Image   string `yaml:"image"`
	File    string `yaml:"file"`
	FromEnd bool   `yaml:"from_end"`
	Command string `yaml:"command"`
}

// rawConfig is used for initial YAML parsing to handle the flexible demo container format
type rawConfig struct {
	Backend  BackendConfig       `yaml:"backend"`
	EnvFile  string              `yaml:"env_file"`
	Stream   StreamConfig        `yaml:"stream"`
	Filter   FilterConfig        `yaml:"filter"`
	Viewport ViewportConfig      `yaml:"viewport"`
	Levels   *logs.LevelPatterns `yaml:"levels,omitempty"`
	Logging  LoggingConfig       `yaml:"logging"`
	Demo     struct {
		Addr       string                 `yaml:"addr"`
		History    int                    `yaml:"history"`
		Interval   string                 `yaml:"interval"`
		Keywords   []string               `yaml:"keywords"`
		Containers map[string]interface{} `yaml:"containers"`
	} `yaml:"demo"`
}

// Resolve resolves a path from the config file against the file's directory
func (c *Config) Resolve(path string) string {
	return resolvePath(path, c.Dir)
}

// Default returns the configuration used when no file exists
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// Load reads and parses a configuration file, then applies environment overrides
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	if err := CheckFilePermissions(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}
	config.Dir = filepath.Dir(path)

	if err := ApplyEnv(config, os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

// Parse parses configuration from YAML bytes
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	config := &Config{
		Backend:  raw.Backend,
		EnvFile:  raw.EnvFile,
		Stream:   raw.Stream,
		Filter:   raw.Filter,
		Viewport: raw.Viewport,
		Levels:   raw.Levels,
		Logging:  raw.Logging,
		Demo: DemoConfig{
			Addr:       raw.Demo.Addr,
			History:    raw.Demo.History,
			Interval:   raw.Demo.Interval,
			Keywords:   raw.Demo.Keywords,
			Containers: make(map[string]DemoContainerConfig),
		},
	}

	for name, value := range raw.Demo.Containers {
		c, err := parseDemoContainer(value)
		if err != nil {
			return nil, fmt.Errorf("demo container %q: %w", name, err)
		}
		config.Demo.Containers[name] = c
	}

	applyDefaults(config)

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Backend.Scheme == "" {
		config.Backend.Scheme = "http"
	}
	if config.Backend.Host == "" {
		config.Backend.Host = constants.DefaultBackendHost
	}
	if config.Backend.Port == 0 {
		config.Backend.Port = constants.DefaultBackendPort
	}
	if config.Stream.BatchSize == 0 {
		config.Stream.BatchSize = constants.DefaultBatchSize
	}
	if config.Stream.Tail == 0 {
		config.Stream.Tail = constants.DefaultTail
	}
	if config.Levels == nil {
		defaults := logs.DefaultLevelPatterns()
		config.Levels = &defaults
	}
	if config.Demo.Addr == "" {
		config.Demo.Addr = constants.DefaultDemoAddr
	}
	if config.Demo.History == 0 {
		config.Demo.History = constants.DefaultDemoHistory
	}
	if config.Demo.Containers == nil {
		config.Demo.Containers = make(map[string]DemoContainerConfig)
	}
}

// parseDemoContainer handles both the simple and expanded container definitions
func parseDemoContainer(value interface{}) (DemoContainerConfig, error) {
	switch v := value.(type) {
	case nil:
		// Simple form with no file: worker:
		return DemoContainerConfig{}, nil
	case string:
		// Simple form: web: /var/log/web.log
		return DemoContainerConfig{File: v}, nil
	case map[string]interface{}:
		data, err := yaml.Marshal(v)
		if err != nil {
			return DemoContainerConfig{}, fmt.Errorf("marshaling container config: %w", err)
		}
		var c DemoContainerConfig
		if err := yaml.Unmarshal(data, &c); err != nil {
			return DemoContainerConfig{}, fmt.Errorf("unmarshaling container config: %w", err)
		}
		return c, nil
	default:
		return DemoContainerConfig{}, fmt.Errorf("invalid container configuration type: %T", value)
	}
}

// parseDuration parses s, falling back when empty or invalid. Validate
// rejects invalid values before they reach here.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
