package api

import (
	"strings"

	"github.com/charliek/tailboard/internal/domain"
)

// ContainersResponse is the body of GET /containers, keyed by container name
type ContainersResponse map[string]domain.Container

// LogsResponse is the body of GET /logs/{id}. Lines are newline-joined.
type LogsResponse struct {
	Logs string `json:"logs"`
}

// FilteredLogsResponse is the body of GET /logs/filter/{id}
type FilteredLogsResponse struct {
	FilteredLogs string `json:"filtered_logs"`
}

// KeywordsResponse is the body of GET /config/filters
type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
}

// KeywordsRequest adds or removes a comma-separated list of keywords
type KeywordsRequest struct {
	Keywords string `json:"keywords"`
}

// KeywordsAddedResponse is the body of POST /config/filters/add-keyword
type KeywordsAddedResponse struct {
	Status  string   `json:"status"`
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

// KeywordsRemovedResponse is the body of DELETE /config/filters/remove-keyword
type KeywordsRemovedResponse struct {
	Status   string   `json:"status"`
	Removed  []string `json:"removed"`
	NotFound []string `json:"not_found"`
}

// SenderResponse is the body of GET /config/email/sender
type SenderResponse struct {
	Sender string `json:"sender"`
}

// SenderRequest sets the notifier email
type SenderRequest struct {
	Email string `json:"email"`
}

// AppPasswordResponse is the body of GET /config/email/app_password
type AppPasswordResponse struct {
	AppPassword string `json:"app_password"`
}

// AppPasswordRequest sets the notifier app password
type AppPasswordRequest struct {
	Password string `json:"password"`
}

// RecipientList holds the alert recipients of one container
type RecipientList struct {
	Recipients []string `json:"recipients"`
}

// RecipientsResponse is the body of GET /config/email/recipients, keyed by container
type RecipientsResponse map[string]RecipientList

// RecipientRequest adds or removes one recipient of a container
type RecipientRequest struct {
	Email     string `json:"email"`
	Container string `json:"container"`
}

// StatusResponse acknowledges a settings change
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

const statusSuccess = "success"

// SplitKeywords splits a comma-separated keyword list, trimming blanks and
// dropping empty entries and duplicates
func SplitKeywords(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(s, ",") {
		kw := strings.TrimSpace(part)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// JoinLines joins raw log lines into the newline-separated wire form
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
