package logs

import (
	"strings"

	"github.com/charliek/tailboard/internal/domain"
)

// LevelPatterns holds the keyword lists used to classify lines
type LevelPatterns struct {
	Error     []string `yaml:"error"`
	Warning   []string `yaml:"warning"`
	Highlight []string `yaml:"highlight"`
}

// DefaultLevelPatterns returns the built-in keyword lists
func DefaultLevelPatterns() LevelPatterns {
	return LevelPatterns{
		Error:     []string{"error", "fail", "exception", "new"},
		Warning:   []string{"warn", "caution", "attention"},
		Highlight: []string{"hello", "health", "connection", "success"},
	}
}

// Classifier assigns a Level to a line by substring match.
// Error patterns win over warning, warning over highlight.
type Classifier struct {
	patterns LevelPatterns
}

// NewClassifier creates a classifier; empty pattern strings are ignored
func NewClassifier(patterns LevelPatterns) *Classifier {
	return &Classifier{patterns: LevelPatterns{
		Error:     compact(patterns.Error),
		Warning:   compact(patterns.Warning),
		Highlight: compact(patterns.Highlight),
	}}
}

// Classify returns the level of line
func (c *Classifier) Classify(line string) domain.Level {
	switch {
	case containsAny(line, c.patterns.Error):
		return domain.LevelError
	case containsAny(line, c.patterns.Warning):
		return domain.LevelWarning
	case containsAny(line, c.patterns.Highlight):
		return domain.LevelHighlight
	default:
		return domain.LevelNone
	}
}

// Add appends a pattern to the given level's list
func (c *Classifier) Add(level domain.Level, pattern string) {
	if pattern == "" {
		return
	}
	switch level {
	case domain.LevelError:
		c.patterns.Error = append(c.patterns.Error, pattern)
	case domain.LevelWarning:
		c.patterns.Warning = append(c.patterns.Warning, pattern)
	case domain.LevelHighlight:
		c.patterns.Highlight = append(c.patterns.Highlight, pattern)
	}
}

// Remove deletes every occurrence of pattern from the given level's list
func (c *Classifier) Remove(level domain.Level, pattern string) {
	switch level {
	case domain.LevelError:
		c.patterns.Error = without(c.patterns.Error, pattern)
	case domain.LevelWarning:
		c.patterns.Warning = without(c.patterns.Warning, pattern)
	case domain.LevelHighlight:
		c.patterns.Highlight = without(c.patterns.Highlight, pattern)
	}
}

// Patterns returns a copy of the current pattern lists
func (c *Classifier) Patterns() LevelPatterns {
	return LevelPatterns{
		Error:     append([]string(nil), c.patterns.Error...),
		Warning:   append([]string(nil), c.patterns.Warning...),
		Highlight: append([]string(nil), c.patterns.Highlight...),
	}
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func compact(patterns []string) []string {
	result := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func without(patterns []string, pattern string) []string {
	result := patterns[:0]
	for _, p := range patterns {
		if p != pattern {
			result = append(result, p)
		}
	}
	return result
}
