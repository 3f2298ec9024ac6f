package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logging"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors
func Validate(config *Config) error {
	var errs []string

	if config.Backend.Scheme != "http" && config.Backend.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("backend.scheme: must be http or https, got %q", config.Backend.Scheme))
	}
	if config.Backend.Port < 1 || config.Backend.Port > 65535 {
		errs = append(errs, fmt.Sprintf("backend.port: must be between 1 and 65535, got %d", config.Backend.Port))
	}

	durations := []struct{ field, value string }{
		{"backend.timeout", config.Backend.Timeout},
		{"stream.flush_interval", config.Stream.FlushInterval},
		{"stream.handshake_timeout", config.Stream.HandshakeTimeout},
		{"demo.interval", config.Demo.Interval},
	}
	for _, d := range durations {
		if err := validateDuration(d.value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", d.field, err))
		}
	}

	if config.Stream.BatchSize < 1 {
		errs = append(errs, fmt.Sprintf("stream.batch_size: must be positive, got %d", config.Stream.BatchSize))
	}
	if config.Stream.Tail < 1 || config.Stream.Tail > constants.MaxTail {
		errs = append(errs, fmt.Sprintf("stream.tail: must be between 1 and %d, got %d", constants.MaxTail, config.Stream.Tail))
	}

	if config.Filter.DefaultDays < 0 {
		errs = append(errs, "filter.default_days: must be non-negative")
	}
	if config.Filter.Timezone != "" {
		if _, err := time.LoadLocation(config.Filter.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("filter.timezone: unknown zone %q", config.Filter.Timezone))
		}
	}
	if config.Viewport.Tolerance != nil && *config.Viewport.Tolerance < 0 {
		errs = append(errs, "viewport.tolerance: must be non-negative")
	}

	if _, err := logging.ParseLevel(config.Logging.Level); err != nil {
		errs = append(errs, fmt.Sprintf("logging.level: %v", err))
	}

	for name := range config.Demo.Containers {
		if err := ValidateContainerName(name); err != nil {
			errs = append(errs, fmt.Sprintf("demo.containers.%s: %v", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}

func validateDuration(s string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", s)
	}
	return nil
}

// ValidateContainerName checks if a container name is valid
func ValidateContainerName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "container name cannot be empty"}
	}
	if strings.ContainsAny(name, " \t\n/\\") {
		return &ValidationError{Field: "name", Message: "container name cannot contain whitespace or path separators"}
	}
	return nil
}
