package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
	"github.com/charliek/tailboard/internal/stream"
	"github.com/charliek/tailboard/internal/tui"
)

// Watch command flags
var watchTail int

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <container>",
	Short: "Watch a container's logs in the interactive viewer",
	Long: `Open the interactive log viewer on a container.

The viewer follows new lines until you scroll up, and offers a jump back
to the latest line. Tab switches to the alerts view. Press ? for help.

Diagnostic logs go to the configured logging.file, or tailboard.log in the
system temp directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVarP(&watchTail, "tail", "n", 0, "Number of recent lines to load (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := validateTail(watchTail); err != nil {
		return err
	}

	cfg, client, logger, closer, err := setup(tuiLogFile())
	if err != nil {
		return err
	}
	defer closer.Close()

	tail := watchTail
	if tail == 0 {
		tail = cfg.Stream.Tail
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	logger.Info().Str("container", args[0]).Str("backend", client.BaseURL()).Msg("starting viewer")

	return tui.Run(ctx, tui.AppConfig{
		Client:    client,
		Container: args[0],
		Tail:      tail,
		Criteria: domain.FilterCriteria{
			IgnoreCase: cfg.Filter.IgnoreCase,
			DateRange:  logs.LastDays(cfg.Filter.DefaultDays, time.Now()),
		},
		Location:  cfg.Filter.Location(),
		Levels:    *cfg.Levels,
		Tolerance: cfg.Viewport.ScrollTolerance(),
		Sink:      cfg.Stream.Sink(),
		Channel:   stream.ChannelConfig{HandshakeTimeout: cfg.Stream.Handshake()},
		Logger:    logger,
	})
}
