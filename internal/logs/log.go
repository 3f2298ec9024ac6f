package logs

import (
	"sync"

	"github.com/charliek/tailboard/internal/domain"
)

// Log is the append-only committed log of a subscription.
// The sink is its only writer; readers take snapshots.
type Log struct {
	mu      sync.RWMutex
	records []domain.LogRecord
}

// NewLog creates an empty committed log
func NewLog() *Log {
	return &Log{}
}

// Append adds records to the end of the log
func (l *Log) Append(records ...domain.LogRecord) {
	if len(records) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, records...)
}

// Snapshot returns a copy of all records in receipt order
func (l *Log) Snapshot() []domain.LogRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.records) == 0 {
		return nil
	}
	result := make([]domain.LogRecord, len(l.records))
	copy(result, l.records)
	return result
}

// Since returns the records appended after the first offset records
func (l *Log) Since(offset int) []domain.LogRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(l.records) {
		return nil
	}
	result := make([]domain.LogRecord, len(l.records)-offset)
	copy(result, l.records[offset:])
	return result
}

// Len returns the number of committed records
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Reset discards every record. Only called when a subscription is torn down.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}
