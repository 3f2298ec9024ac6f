package domain

import "time"

// TimestampLayout is the layout used for timestamps the client assigns itself
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// LogRecord is a single normalized log line
type LogRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	TimestampText string    `json:"timestamp_text"`
	Message       string    `json:"message"`
}

// String returns the record as "<timestamp> <message>"
func (r LogRecord) String() string {
	return r.TimestampText + " " + r.Message
}

// ConnectionState is the lifecycle state of a log stream connection
type ConnectionState string

const (
	ConnectionConnecting ConnectionState = "connecting"
	ConnectionOpen       ConnectionState = "open"
	ConnectionError      ConnectionState = "error"
	ConnectionClosed     ConnectionState = "closed"
)

// String returns the string representation of ConnectionState
func (s ConnectionState) String() string {
	return string(s)
}

// IsTerminal returns true once the connection can no longer deliver records
func (s ConnectionState) IsTerminal() bool {
	return s == ConnectionClosed
}

// DateRange bounds records by calendar day. A nil side is unbounded.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsEmpty returns true if neither bound is set
func (r DateRange) IsEmpty() bool {
	return r.From == nil && r.To == nil
}

// FilterCriteria defines the client-side log filter
type FilterCriteria struct {
	Text       string
	DateRange  DateRange
	IgnoreCase bool
}

// IsEmpty returns true if no filters are set
func (c FilterCriteria) IsEmpty() bool {
	return c.Text == "" && c.DateRange.IsEmpty()
}

// Level is the keyword classification of a log line
type Level string

const (
	LevelError     Level = "error"
	LevelWarning   Level = "warning"
	LevelHighlight Level = "highlight"
	LevelNone      Level = "none"
)

// String returns the string representation of Level
func (l Level) String() string {
	return string(l)
}
