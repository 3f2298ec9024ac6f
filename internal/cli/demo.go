package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/charliek/tailboard/internal/api"
	"github.com/charliek/tailboard/internal/config"
	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/demo"
)

// defaultDemoContainer is served when the config names no demo containers
const defaultDemoContainer = "demo"

// Demo command flags
var demoListen string

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a local demo backend",
	Long: `Run a local backend serving the same REST and WebSocket API the
client talks to. Containers come from the demo section of the config: each
follows a log file, or generates synthetic lines when no file is given.

Examples:
  tailboard demo                          # Listen on 127.0.0.1:8000
  tailboard demo --listen 127.0.0.1:9000
  tailboard --addr http://127.0.0.1:9000 watch demo`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoListen, "listen", "", "Address to listen on (default from config)")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	logger, closer, err := newLogger(cfg, "")
	if err != nil {
		return err
	}
	defer closer.Close()

	addr := cfg.Demo.Addr
	if demoListen != "" {
		addr = demoListen
	}

	b := demo.NewBackend(demo.HubConfig{History: cfg.Demo.History}, logger)
	if len(cfg.Demo.Keywords) > 0 {
		if _, _, err := b.AddKeywords(cfg.Demo.Keywords); err != nil {
			return fmt.Errorf("demo keywords: %w", err)
		}
	}
	sources := demoSources(cfg)

	server := api.NewServer(api.ServerConfig{Addr: addr}, api.NewHandlers(b, logger), logger)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	runDone := make(chan struct{})
	go func() {
		b.Run(ctx, sources)
		close(runDone)
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Demo backend on http://%s serving %d containers (Ctrl+C to stop)\n", addr, len(sources))

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		cancel()
	}

	logger.Info().Msg("shutting down demo backend")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server shutdown")
	}
	b.Close()
	<-runDone

	return runErr
}

// demoSources builds one source per configured container, in name order
func demoSources(cfg *config.Config) []demo.Source {
	interval := cfg.Demo.GenerateInterval()
	if len(cfg.Demo.Containers) == 0 {
		return []demo.Source{{
			Container: demo.ContainerSpec{Name: defaultDemoContainer, Image: "tailboard/demo:latest"},
			Interval:  interval,
		}}
	}

	names := make([]string, 0, len(cfg.Demo.Containers))
	for name := range cfg.Demo.Containers {
		names = append(names, name)
	}
	sort.Strings(names)

	sources := make([]demo.Source, 0, len(names))
	for _, name := range names {
		c := cfg.Demo.Containers[name]
		sources = append(sources, demo.Source{
			Container: demo.ContainerSpec{Name: name, Image: c.Image, Command: c.Command},
			File:      cfg.Resolve(c.File),
			FromEnd:   c.FromEnd,
			Interval:  interval,
		})
	}
	return sources
}
