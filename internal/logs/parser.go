package logs

import (
	"regexp"
	"strings"
	"time"

	"github.com/charliek/tailboard/internal/domain"
)

// timestampPattern matches a leading UTC ISO-8601 timestamp followed by the
// message. Input is a single line; callers split multi-line payloads first.
var timestampPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z)\s+(.*)$`)

// ParseRecord parses a raw log line received now
func ParseRecord(line string) domain.LogRecord {
	return ParseRecordAt(line, time.Now())
}

// ParseRecordAt parses a raw log line, using now when the line carries no
// timestamp. It never fails.
func ParseRecordAt(line string, now time.Time) domain.LogRecord {
	line = strings.TrimRight(line, "\r\n")

	if m := timestampPattern.FindStringSubmatch(line); m != nil {
		if ts, err := time.Parse(time.RFC3339Nano, m[1]); err == nil {
			return domain.LogRecord{
				Timestamp:     ts,
				TimestampText: m[1],
				Message:       m[2],
			}
		}
	}

	now = now.UTC()
	return domain.LogRecord{
		Timestamp:     now,
		TimestampText: now.Format(domain.TimestampLayout),
		Message:       line,
	}
}

// ParseLines parses lines received together at now, keeping their order
func ParseLines(lines []string, now time.Time) []domain.LogRecord {
	records := make([]domain.LogRecord, len(lines))
	for i, line := range lines {
		records[i] = ParseRecordAt(line, now)
	}
	return records
}

// SplitLines splits a newline-delimited blob, discarding blank lines
func SplitLines(blob string) []string {
	parts := strings.Split(blob, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(p, "\r")
		if strings.TrimSpace(p) == "" {
			continue
		}
		lines = append(lines, p)
	}
	return lines
}
