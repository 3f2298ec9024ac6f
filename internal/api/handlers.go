package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/demo"
	"github.com/charliek/tailboard/internal/domain"
)

// maxBodyBytes bounds settings request bodies
const maxBodyBytes = 64 << 10

// Handlers contains all HTTP handlers
type Handlers struct {
	backend *demo.Backend
	logger  zerolog.Logger
}

// NewHandlers creates new HTTP handlers
func NewHandlers(backend *demo.Backend, logger zerolog.Logger) *Handlers {
	return &Handlers{
		backend: backend,
		logger:  logger,
	}
}

// GetContainers handles GET /containers
func (h *Handlers) GetContainers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, ContainersResponse(h.backend.Containers()))
}

// GetAlerts handles GET /alerts
func (h *Handlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.backend.Alerts())
}

// ClearAlerts handles GET /clear_alerts
func (h *Handlers) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	h.backend.ClearAlerts()
	h.writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess})
}

// GetLogs handles GET /logs/{id}
func (h *Handlers) GetLogs(w http.ResponseWriter, r *http.Request) {
	lines, err := h.backend.Logs(chi.URLParam(r, "id"), parseTail(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, LogsResponse{Logs: JoinLines(lines)})
}

// GetFilteredLogs handles GET /logs/filter/{id}
func (h *Handlers) GetFilteredLogs(w http.ResponseWriter, r *http.Request) {
	lines, err := h.backend.FilteredLogs(chi.URLParam(r, "id"), parseTail(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, FilteredLogsResponse{FilteredLogs: JoinLines(lines)})
}

// GetKeywords handles GET /config/filters
func (h *Handlers) GetKeywords(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, KeywordsResponse{Keywords: h.backend.Keywords()})
}

// AddKeywords handles POST /config/filters/add-keyword
func (h *Handlers) AddKeywords(w http.ResponseWriter, r *http.Request) {
	var req KeywordsRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	added, skipped, err := h.backend.AddKeywords(SplitKeywords(req.Keywords))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, KeywordsAddedResponse{Status: statusSuccess, Added: added, Skipped: skipped})
}

// RemoveKeywords handles DELETE /config/filters/remove-keyword
func (h *Handlers) RemoveKeywords(w http.ResponseWriter, r *http.Request) {
	var req KeywordsRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	removed, notFound, err := h.backend.RemoveKeywords(SplitKeywords(req.Keywords))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, KeywordsRemovedResponse{Status: statusSuccess, Removed: removed, NotFound: notFound})
}

// GetSender handles GET /config/email/sender
func (h *Handlers) GetSender(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, SenderResponse{Sender: h.backend.Sender()})
}

// SetSender handles POST /config/email/sender
func (h *Handlers) SetSender(w http.ResponseWriter, r *http.Request) {
	var req SenderRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.backend.SetSender(req.Email); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess})
}

// GetAppPassword handles GET /config/email/app_password
func (h *Handlers) GetAppPassword(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, AppPasswordResponse{AppPassword: h.backend.AppPassword()})
}

// SetAppPassword handles POST /config/email/app_password
func (h *Handlers) SetAppPassword(w http.ResponseWriter, r *http.Request) {
	var req AppPasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.backend.SetAppPassword(req.Password); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess})
}

// GetRecipients handles GET /config/email/recipients
func (h *Handlers) GetRecipients(w http.ResponseWriter, r *http.Request) {
	resp := RecipientsResponse{}
	for name, emails := range h.backend.Recipients() {
		resp[name] = RecipientList{Recipients: emails}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// AddRecipient handles POST /config/email/recipients/add
func (h *Handlers) AddRecipient(w http.ResponseWriter, r *http.Request) {
	var req RecipientRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.backend.AddRecipient(req.Container, req.Email); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess})
}

// RemoveRecipient handles POST /config/email/recipients/remove
func (h *Handlers) RemoveRecipient(w http.ResponseWriter, r *http.Request) {
	var req RecipientRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.backend.RemoveRecipient(req.Container, req.Email); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess})
}

// parseTail reads the tail query parameter (default 100, capped at 10000)
func parseTail(r *http.Request) int {
	tail := constants.DefaultTail
	if s := r.URL.Query().Get("tail"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			tail = n
		}
	}
	if tail > constants.MaxTail {
		tail = constants.MaxTail
	}
	return tail
}

// decodeBody decodes a JSON request body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return nil
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("encoding JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "an internal error occurred"

	switch {
	case errors.Is(err, domain.ErrContainerNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrMalformedPayload),
		errors.Is(err, domain.ErrInvalidKeyword),
		errors.Is(err, domain.ErrInvalidSetting):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		// Unknown errors are logged but not echoed back
		h.logger.Error().Err(err).Msg("internal error")
	}

	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  domain.ErrorCode(err),
	})
}
