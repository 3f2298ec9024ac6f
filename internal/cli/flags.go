package cli

import (
	"fmt"
	"strings"

	"github.com/charliek/tailboard/internal/api"
	"github.com/charliek/tailboard/internal/constants"
)

// validateTail checks a --tail value. Zero means the configured default.
func validateTail(tail int) error {
	if tail < 0 || tail > constants.MaxTail {
		return fmt.Errorf("invalid tail value %d (must be between 1 and %d)", tail, constants.MaxTail)
	}
	return nil
}

// keywordArgs accepts keywords as separate arguments, comma-separated, or both
func keywordArgs(args []string) ([]string, error) {
	keywords := api.SplitKeywords(strings.Join(args, ","))
	if len(keywords) == 0 {
		return nil, fmt.Errorf("at least one keyword is required")
	}
	return keywords, nil
}
