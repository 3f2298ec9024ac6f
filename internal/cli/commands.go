package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/charliek/tailboard/internal/backend"
	"github.com/charliek/tailboard/internal/config"
	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
	"github.com/charliek/tailboard/internal/stream"
)

// Command flags
var (
	containersJSON bool

	alertsClear bool
	alertsJSON  bool

	logsFollow     bool
	logsTail       int
	logsFilter     string
	logsIgnoreCase bool
	logsRange      string
	logsOutput     string

	filteredTail   int
	filteredFilter string
)

// containersCmd represents the containers command
var containersCmd = &cobra.Command{
	Use:   "containers",
	Short: "List monitored containers",
	Args:  cobra.NoArgs,
	RunE:  runContainers,
}

// alertsCmd represents the alerts command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List keyword alerts",
	Long: `List the alerts the backend raised for lines matching a keyword.

Examples:
  tailboard alerts          # Show alerts
  tailboard alerts --clear  # Clear all alerts`,
	Args: cobra.NoArgs,
	RunE: runAlerts,
}

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs <container>",
	Short: "Show a container's logs",
	Long: `Show a container's recent logs, optionally following new lines.

Filters apply on the client: --filter is a substring match on the whole line
(case-sensitive unless --ignore-case), --range bounds records by day.

Examples:
  tailboard logs web                          # Last 100 lines
  tailboard logs web -f                       # Follow new lines
  tailboard logs web --filter timeout -i      # Case-insensitive filter
  tailboard logs web --range 2025-04-01..     # Since April 1st
  tailboard logs web --output web.log.zst     # Export, zstd-compressed`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

// filteredLogsCmd represents the filtered-logs command
var filteredLogsCmd = &cobra.Command{
	Use:   "filtered-logs <container>",
	Short: "Show the lines the backend matched against its keywords",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilteredLogs,
}

func init() {
	containersCmd.Flags().BoolVar(&containersJSON, "json", false, "Output as JSON")

	alertsCmd.Flags().BoolVar(&alertsClear, "clear", false, "Clear all alerts")
	alertsCmd.Flags().BoolVar(&alertsJSON, "json", false, "Output as JSON")

	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow new lines")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 0, "Number of recent lines to fetch (default from config)")
	logsCmd.Flags().StringVar(&logsFilter, "filter", "", "Only show lines containing this text")
	logsCmd.Flags().BoolVarP(&logsIgnoreCase, "ignore-case", "i", false, "Match --filter case-insensitively")
	logsCmd.Flags().StringVar(&logsRange, "range", "", "Date range FROM..TO (YYYY-MM-DD, either side optional)")
	logsCmd.Flags().StringVarP(&logsOutput, "output", "o", "", "Write logs to a file instead of stdout (.zst compresses)")

	filteredLogsCmd.Flags().IntVarP(&filteredTail, "tail", "n", 0, "Number of recent lines to fetch (default from config)")
	filteredLogsCmd.Flags().StringVar(&filteredFilter, "filter", "", "Only show lines containing this text (case-sensitive)")

	rootCmd.AddCommand(containersCmd, alertsCmd, logsCmd, filteredLogsCmd)
}

func runContainers(cmd *cobra.Command, args []string) error {
	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	containers, err := client.Containers(ctx)
	if err != nil {
		return fmt.Errorf("listing containers: %w", err)
	}

	out := cmd.OutOrStdout()
	if containersJSON {
		return json.NewEncoder(out).Encode(containers)
	}
	if len(containers) == 0 {
		fmt.Fprintln(out, "No containers")
		return nil
	}

	names := make([]string, 0, len(containers))
	for name := range containers {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tIMAGE\tSTARTED\tUPTIME")
	fmt.Fprintln(w, "----\t------\t-----\t-------\t------")
	for _, name := range names {
		c := containers[name]
		started := "-"
		if t := c.StartedTime(); !t.IsZero() {
			started = humanize.Time(t)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, orDash(c.Status), orDash(c.Image), started, orDash(c.Uptime))
	}
	return w.Flush()
}

func runAlerts(cmd *cobra.Command, args []string) error {
	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	if alertsClear {
		if err := client.ClearAlerts(ctx); err != nil {
			return fmt.Errorf("clearing alerts: %w", err)
		}
		fmt.Fprintln(out, "Alerts cleared")
		return nil
	}

	alerts, err := client.Alerts(ctx)
	if err != nil {
		return fmt.Errorf("listing alerts: %w", err)
	}
	if alertsJSON {
		return json.NewEncoder(out).Encode(alerts)
	}
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No alerts")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCONTAINER\tMESSAGE")
	fmt.Fprintln(w, "----\t---------\t-------")
	for _, a := range alerts {
		when := a.Timestamp
		if t := a.Time(); !t.IsZero() {
			when = humanize.Time(t)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", when, a.Container, a.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s alerts\n", humanize.Comma(int64(len(alerts))))
	return nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	container := args[0]
	if err := validateTail(logsTail); err != nil {
		return err
	}

	cfg, client, logger, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	criteria, err := logCriteria(cfg, time.Now())
	if err != nil {
		return err
	}
	tail := logsTail
	if tail == 0 {
		tail = cfg.Stream.Tail
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	lines, err := client.Logs(ctx, container, tail)
	if err != nil {
		return fmt.Errorf("fetching logs: %w", err)
	}

	printer := NewLogPrinter(cmd.OutOrStdout(), *cfg.Levels)
	if logsFollow {
		return followLogs(ctx, cfg, client, logger, container, lines, criteria, printer, cmd.ErrOrStderr())
	}

	records := logs.Apply(logs.ParseLines(lines, time.Now()), criteria, cfg.Filter.Location())

	if logsOutput != "" {
		return exportRecords(logsOutput, records, cmd.ErrOrStderr())
	}
	for _, r := range records {
		printer.PrintRecord(r)
	}
	return nil
}

// followLogs streams container until the stream closes or ctx is cancelled.
// seed holds the lines already fetched; they are printed first.
func followLogs(ctx context.Context, cfg *config.Config, client *backend.Client, logger zerolog.Logger,
	container string, seed []string, criteria domain.FilterCriteria, printer *LogPrinter, status io.Writer) error {
	streamURL, err := stream.StreamURL(client.BaseURL(), container)
	if err != nil {
		return err
	}

	updates := make(chan struct{}, 1)
	sub := stream.Subscribe(ctx, stream.Options{
		Container: container,
		URL:       streamURL,
		Seed:      seed,
		Sink:      cfg.Stream.Sink(),
		Channel:   stream.ChannelConfig{HandshakeTimeout: cfg.Stream.Handshake()},
		OnUpdate: func(stream.Update) {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
		Logger: logger,
	})
	defer sub.Close()

	filter := logs.NewFilter(criteria, cfg.Filter.Location())
	printed := 0
	drain := func() {
		records := sub.RecordsSince(printed)
		for _, r := range records {
			if filter.Matches(r) {
				printer.PrintRecord(r)
			}
		}
		printed += len(records)
	}
	finish := func() error {
		sub.Close()
		drain()
		if logsOutput == "" {
			return nil
		}
		return exportRecords(logsOutput, logs.Apply(sub.Records(), criteria, cfg.Filter.Location()), status)
	}

	drain()
	for {
		select {
		case <-ctx.Done():
			return finish()
		case <-updates:
			drain()
			if sub.State().IsTerminal() {
				fmt.Fprintf(status, "Log stream for %s closed\n", container)
				return finish()
			}
		}
	}
}

func runFilteredLogs(cmd *cobra.Command, args []string) error {
	container := args[0]
	if err := validateTail(filteredTail); err != nil {
		return err
	}

	cfg, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	tail := filteredTail
	if tail == 0 {
		tail = cfg.Stream.Tail
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	lines, err := client.FilteredLogs(ctx, container, tail)
	if err != nil {
		return fmt.Errorf("fetching filtered logs: %w", err)
	}

	printer := NewLogPrinter(cmd.OutOrStdout(), *cfg.Levels)
	for _, line := range logs.FilterLines(lines, filteredFilter) {
		printer.PrintLine(line)
	}
	return nil
}

// logCriteria builds the client-side filter from flags and config defaults
func logCriteria(cfg *config.Config, now time.Time) (domain.FilterCriteria, error) {
	criteria := domain.FilterCriteria{
		Text:       logsFilter,
		IgnoreCase: logsIgnoreCase || cfg.Filter.IgnoreCase,
	}
	if logsRange == "" {
		criteria.DateRange = logs.LastDays(cfg.Filter.DefaultDays, now)
		return criteria, nil
	}

	r, err := logs.ParseDateRange(logsRange, cfg.Filter.Location())
	if err != nil {
		return criteria, err
	}
	criteria.DateRange = r
	return criteria, nil
}

// exportRecords writes records to path and reports the count on status
func exportRecords(path string, records []domain.LogRecord, status io.Writer) error {
	if err := logs.ExportFile(path, records); err != nil {
		return err
	}
	fmt.Fprintf(status, "Wrote %s records to %s\n", humanize.Comma(int64(len(records))), path)
	return nil
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
