package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/domain"
)

// LookupFunc reads an environment variable
type LookupFunc func(key string) (string, bool)

// LoadEnvFile reads a .env file and returns the variables as a map
func LoadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("env file not found: %s", path)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	return env, nil
}

// MergeEnv merges multiple environment maps in order, with later maps taking precedence
func MergeEnv(envMaps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, env := range envMaps {
		for k, v := range env {
			result[k] = v
		}
	}
	return result
}

// ApplyEnv overrides the backend location from the environment.
// Priority (lowest to highest):
// 1. Config file
// 2. env_file
// 3. Process environment
func ApplyEnv(config *Config, lookup LookupFunc) error {
	fileEnv, err := LoadEnvFile(resolvePath(config.EnvFile, config.Dir))
	if err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}

	processEnv := make(map[string]string)
	for _, key := range []string{constants.EnvBackendHost, constants.EnvBackendPort} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			processEnv[key] = v
		}
	}
	env := MergeEnv(fileEnv, processEnv)

	if host := strings.TrimSpace(env[constants.EnvBackendHost]); host != "" {
		// The host may carry a scheme, as in http://backend
		if scheme, rest, ok := strings.Cut(host, "://"); ok {
			config.Backend.Scheme = scheme
			host = rest
		}
		config.Backend.Host = strings.TrimSuffix(host, "/")
	}
	if port := strings.TrimSpace(env[constants.EnvBackendPort]); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: %s: not a number: %q", domain.ErrInvalidConfig, constants.EnvBackendPort, port)
		}
		config.Backend.Port = p
	}

	return Validate(config)
}

// resolvePath resolves a potentially relative path against a base directory
func resolvePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() (string, error) {
	candidates := []string{
		constants.DefaultConfigFile,
		"tailboard.yml",
		".tailboard.yaml",
		".tailboard.yml",
	}

	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	return "", fmt.Errorf("%w (tried: %v)", domain.ErrConfigNotFound, candidates)
}

// LoadOrDefault loads path, or the first standard config file when path is
// empty. With no file anywhere it returns defaults plus environment overrides.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	found, err := FindConfigFile()
	if err == nil {
		return Load(found)
	}

	config := Default()
	if err := ApplyEnv(config, os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

// CheckFilePermissions checks if a file has secure permissions.
// On Unix-like systems, it verifies the file is not world-writable.
func CheckFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking file permissions: %w", err)
	}

	// World-writable = others have write (0002)
	if info.Mode().Perm()&0002 != 0 {
		return fmt.Errorf("config file %s has insecure permissions: world-writable files can be modified by any user. Please run: chmod o-w %s", path, path)
	}

	return nil
}
