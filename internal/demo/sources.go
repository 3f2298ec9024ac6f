package demo

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hpcloud/tail"
	"github.com/rs/zerolog"

	"github.com/charliek/tailboard/internal/domain"
)

// WriteFunc receives each line produced by a source
type WriteFunc func(line string)

// FollowFile feeds every line of path, existing and appended, to write until
// ctx is done. Rotated files are reopened.
func FollowFile(ctx context.Context, path string, fromEnd bool, write WriteFunc, logger zerolog.Logger) error {
	whence := io.SeekStart
	if fromEnd {
		whence = io.SeekEnd
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Poll:      true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("following %s: %w", path, err)
	}
	defer t.Cleanup()

	logger = logger.With().Str("file", path).Logger()
	logger.Debug().Msg("following log file")

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				logger.Warn().Err(line.Err).Msg("reading log file")
				continue
			}
			write(line.Text)
		}
	}
}

// syntheticMessages is the rotation a generated container cycles through
var syntheticMessages = []string{
	"GET /api/health 200 1.2ms",
	"connection established from 10.0.0.12",
	"processed batch of 50 jobs",
	"WARN cache miss ratio above threshold",
	"GET /api/orders 200 14.8ms",
	"ERROR upstream request failed: context deadline exceeded",
	"hello from worker 3",
	"POST /api/orders 201 22.1ms",
	"success: nightly snapshot written",
	"attention: disk usage at 81%",
}

// Generate writes a timestamped synthetic line every interval until ctx is done
func Generate(ctx context.Context, interval time.Duration, write WriteFunc) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			write(SyntheticLine(now, i))
		}
	}
}

// SyntheticLine returns the i-th generated line stamped with now
func SyntheticLine(now time.Time, i int) string {
	msg := syntheticMessages[i%len(syntheticMessages)]
	return now.UTC().Format(domain.TimestampLayout) + " " + msg
}
