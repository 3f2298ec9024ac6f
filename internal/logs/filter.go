package logs

import (
	"fmt"
	"strings"
	"time"

	"github.com/charliek/tailboard/internal/domain"
)

// dateLayout is the calendar-day layout accepted for date range bounds
const dateLayout = "2006-01-02"

// Filter applies FilterCriteria to log records
type Filter struct {
	criteria domain.FilterCriteria
	text     string
	from     time.Time
	to       time.Time
	hasFrom  bool
	hasTo    bool
}

// NewFilter creates a filter, resolving date bounds to whole days in loc
func NewFilter(criteria domain.FilterCriteria, loc *time.Location) *Filter {
	if loc == nil {
		loc = time.Local
	}

	f := &Filter{criteria: criteria, text: criteria.Text}
	if criteria.IgnoreCase {
		f.text = strings.ToLower(criteria.Text)
	}

	if criteria.DateRange.From != nil {
		f.from = startOfDay(*criteria.DateRange.From, loc)
		f.hasFrom = true
	}
	if criteria.DateRange.To != nil {
		f.to = endOfDay(*criteria.DateRange.To, loc)
		f.hasTo = true
	}

	return f
}

// Matches returns true if the record passes both the text and date predicates
func (f *Filter) Matches(record domain.LogRecord) bool {
	if !f.matchesText(record) {
		return false
	}
	return f.matchesDate(record)
}

func (f *Filter) matchesText(record domain.LogRecord) bool {
	if f.text == "" {
		return true
	}
	if f.criteria.IgnoreCase {
		return strings.Contains(strings.ToLower(record.Message), f.text) ||
			strings.Contains(strings.ToLower(record.TimestampText), f.text)
	}
	return strings.Contains(record.Message, f.text) ||
		strings.Contains(record.TimestampText, f.text)
}

func (f *Filter) matchesDate(record domain.LogRecord) bool {
	if !f.hasFrom && !f.hasTo {
		return true
	}
	if f.hasFrom && record.Timestamp.Before(f.from) {
		return false
	}
	if f.hasTo && record.Timestamp.After(f.to) {
		return false
	}
	return true
}

// Apply returns the records matching criteria, preserving their order.
// The input slice is never modified.
func Apply(records []domain.LogRecord, criteria domain.FilterCriteria, loc *time.Location) []domain.LogRecord {
	f := NewFilter(criteria, loc)

	result := make([]domain.LogRecord, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			result = append(result, r)
		}
	}
	return result
}

// FilterLines returns the raw lines containing text. Used for server-side
// filtered logs, where matching is always a case-sensitive substring check.
func FilterLines(lines []string, text string) []string {
	if text == "" {
		return lines
	}
	result := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.Contains(l, text) {
			result = append(result, l)
		}
	}
	return result
}

// ParseDateRange parses "FROM..TO" where each side is YYYY-MM-DD or empty.
// An empty string yields an empty range.
func ParseDateRange(s string, loc *time.Location) (domain.DateRange, error) {
	var r domain.DateRange
	s = strings.TrimSpace(s)
	if s == "" {
		return r, nil
	}
	if loc == nil {
		loc = time.Local
	}

	fromStr, toStr, ok := strings.Cut(s, "..")
	if !ok {
		// A single day
		toStr = fromStr
	}

	if fromStr = strings.TrimSpace(fromStr); fromStr != "" {
		t, err := time.ParseInLocation(dateLayout, fromStr, loc)
		if err != nil {
			return r, fmt.Errorf("%w: from %q: expected YYYY-MM-DD", domain.ErrInvalidDateRange, fromStr)
		}
		r.From = &t
	}
	if toStr = strings.TrimSpace(toStr); toStr != "" {
		t, err := time.ParseInLocation(dateLayout, toStr, loc)
		if err != nil {
			return r, fmt.Errorf("%w: to %q: expected YYYY-MM-DD", domain.ErrInvalidDateRange, toStr)
		}
		r.To = &t
	}

	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return domain.DateRange{}, fmt.Errorf("%w: %s is before %s", domain.ErrInvalidDateRange, toStr, fromStr)
	}
	return r, nil
}

// LastDays returns a range from days ago through today.
// Zero or negative days yields an empty range.
func LastDays(days int, now time.Time) domain.DateRange {
	if days <= 0 {
		return domain.DateRange{}
	}
	from := now.AddDate(0, 0, -days)
	to := now
	return domain.DateRange{From: &from, To: &to}
}

// FormatDateRange renders a range in the form ParseDateRange accepts
func FormatDateRange(r domain.DateRange) string {
	if r.IsEmpty() {
		return ""
	}
	var from, to string
	if r.From != nil {
		from = r.From.Format(dateLayout)
	}
	if r.To != nil {
		to = r.To.Format(dateLayout)
	}
	return from + ".." + to
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, loc)
}
