package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/charliek/tailboard/internal/backend"
	"github.com/charliek/tailboard/internal/config"
	"github.com/charliek/tailboard/internal/logging"
)

// Version is set during build
var Version = "dev"

// Global flags
var (
	configPath  string
	backendAddr string
	verbose     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tailboard",
	Short: "Watch container logs from a monitoring backend",
	Long: `tailboard is a terminal client for a container log monitoring backend.
It supports:
  - Live log streaming with auto-scroll and a jump-to-latest control
  - Text and date range filtering of the streamed log
  - Keyword alerts and email notification settings
  - Exporting logs, optionally zstd-compressed
  - A local demo backend for trying it out`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tailboard version %s\n", Version)
	},
}

func init() {
	// Persistent flags available to all subcommands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: search for tailboard.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendAddr, "addr", "", "Backend address, e.g. http://127.0.0.1:8000 (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Set version template
	rootCmd.SetVersionTemplate("tailboard version {{.Version}}\n")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the config file, or defaults plus environment overrides
// when none exists
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// resolveAddr returns --addr when given, otherwise the configured backend
func resolveAddr(cfg *config.Config) string {
	if backendAddr != "" {
		return backendAddr
	}
	return cfg.Backend.Address()
}

// newLogger builds the command logger. file overrides the configured log
// destination when the configuration leaves it empty.
func newLogger(cfg *config.Config, file string) (zerolog.Logger, io.Closer, error) {
	lc := cfg.Logging.Logging()
	if lc.File == "" {
		lc.File = file
	} else {
		lc.File = cfg.Resolve(lc.File)
	}
	if verbose {
		lc.Level = "debug"
	} else if lc.Level == "" && lc.File == "" {
		// Quiet on the terminal unless asked
		lc.Level = "warn"
	}
	return logging.New(lc)
}

// tuiLogFile is where the TUI logs when the config names no file
func tuiLogFile() string {
	return filepath.Join(os.TempDir(), "tailboard.log")
}

// setup loads config and builds the logger and backend client for a command
func setup(logFile string) (*config.Config, *backend.Client, zerolog.Logger, io.Closer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, zerolog.Nop(), nil, err
	}
	logger, closer, err := newLogger(cfg, logFile)
	if err != nil {
		return nil, nil, zerolog.Nop(), nil, err
	}
	client := backend.NewClient(resolveAddr(cfg), cfg.Backend.RequestTimeout(), logger)
	return cfg, client, logger, closer, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
