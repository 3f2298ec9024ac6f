// Package backend is the HTTP client for the monitoring backend's REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"

	"github.com/charliek/tailboard/internal/api"
	"github.com/charliek/tailboard/internal/constants"
	"github.com/charliek/tailboard/internal/domain"
	"github.com/charliek/tailboard/internal/logs"
)

// Client is an HTTP client for the backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	parsers    fastjson.ParserPool
	logger     zerolog.Logger
}

// NewClient creates a new API client. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the backend address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Error is a non-2xx reply from the backend
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Unwrap maps the reply to a domain error where one applies
func (e *Error) Unwrap() error {
	switch {
	case e.Code == domain.ErrCodeContainerNotFound, e.Status == http.StatusNotFound:
		return domain.ErrContainerNotFound
	case e.Code == domain.ErrCodeInvalidKeyword:
		return domain.ErrInvalidKeyword
	case e.Code == domain.ErrCodeInvalidSetting:
		return domain.ErrInvalidSetting
	case e.Code == domain.ErrCodeMalformedPayload:
		return domain.ErrMalformedPayload
	}
	return nil
}

// Containers returns every monitored container keyed by name
func (c *Client) Containers(ctx context.Context) (map[string]domain.Container, error) {
	var resp api.ContainersResponse
	if err := c.do(ctx, http.MethodGet, "/containers", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = api.ContainersResponse{}
	}
	return resp, nil
}

// Alerts returns the keyword alerts recorded by the backend
func (c *Client) Alerts(ctx context.Context) ([]domain.Alert, error) {
	var alerts []domain.Alert
	if err := c.do(ctx, http.MethodGet, "/alerts", nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// ClearAlerts drops every alert
func (c *Client) ClearAlerts(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/clear_alerts", nil, nil)
}

// Logs returns up to tail recent raw lines of a container, blanks discarded
func (c *Client) Logs(ctx context.Context, container string, tail int) ([]string, error) {
	return c.lines(ctx, "/logs/"+url.PathEscape(container), tail, "logs")
}

// FilteredLogs returns the recent lines of a container that matched a keyword
func (c *Client) FilteredLogs(ctx context.Context, container string, tail int) ([]string, error) {
	return c.lines(ctx, "/logs/filter/"+url.PathEscape(container), tail, "filtered_logs")
}

// Keywords returns the alert keywords
func (c *Client) Keywords(ctx context.Context) ([]string, error) {
	body, err := c.raw(ctx, http.MethodGet, "/config/filters", nil)
	if err != nil {
		return nil, err
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	arr := v.Get("keywords")
	if arr == nil || arr.Type() != fastjson.TypeArray {
		return nil, fmt.Errorf("%w: keywords must be an array", domain.ErrMalformedPayload)
	}

	items, _ := arr.Array()
	keywords := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type() != fastjson.TypeString {
			return nil, fmt.Errorf("%w: keywords must be strings", domain.ErrMalformedPayload)
		}
		keywords = append(keywords, string(item.GetStringBytes()))
	}
	return keywords, nil
}

// AddKeywords adds alert keywords, returning which were added and which already existed
func (c *Client) AddKeywords(ctx context.Context, keywords []string) (added, skipped []string, err error) {
	var resp api.KeywordsAddedResponse
	req := api.KeywordsRequest{Keywords: strings.Join(keywords, ",")}
	if err := c.do(ctx, http.MethodPost, "/config/filters/add-keyword", req, &resp); err != nil {
		return nil, nil, err
	}
	if resp.Status != "success" {
		return nil, nil, fmt.Errorf("adding keywords: backend replied %q", resp.Status)
	}
	return resp.Added, resp.Skipped, nil
}

// RemoveKeywords removes alert keywords, returning which were removed and which were unknown
func (c *Client) RemoveKeywords(ctx context.Context, keywords []string) (removed, notFound []string, err error) {
	var resp api.KeywordsRemovedResponse
	req := api.KeywordsRequest{Keywords: strings.Join(keywords, ",")}
	if err := c.do(ctx, http.MethodDelete, "/config/filters/remove-keyword", req, &resp); err != nil {
		return nil, nil, err
	}
	if resp.Status != "success" {
		return nil, nil, fmt.Errorf("removing keywords: backend replied %q", resp.Status)
	}
	return resp.Removed, resp.NotFound, nil
}

// Sender returns the notifier email address
func (c *Client) Sender(ctx context.Context) (string, error) {
	var resp api.SenderResponse
	if err := c.do(ctx, http.MethodGet, "/config/email/sender", nil, &resp); err != nil {
		return "", err
	}
	return resp.Sender, nil
}

// SetSender sets the notifier email address
func (c *Client) SetSender(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/config/email/sender", api.SenderRequest{Email: email}, nil)
}

// AppPassword returns the notifier app password
func (c *Client) AppPassword(ctx context.Context) (string, error) {
	var resp api.AppPasswordResponse
	if err := c.do(ctx, http.MethodGet, "/config/email/app_password", nil, &resp); err != nil {
		return "", err
	}
	return resp.AppPassword, nil
}

// SetAppPassword sets the notifier app password
func (c *Client) SetAppPassword(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPost, "/config/email/app_password", api.AppPasswordRequest{Password: password}, nil)
}

// Recipients returns the alert recipients of one container
func (c *Client) Recipients(ctx context.Context, container string) ([]string, error) {
	var resp api.RecipientsResponse
	if err := c.do(ctx, http.MethodGet, "/config/email/recipients", nil, &resp); err != nil {
		return nil, err
	}
	return resp[container].Recipients, nil
}

// AddRecipient adds an alert recipient to a container
func (c *Client) AddRecipient(ctx context.Context, container, email string) error {
	req := api.RecipientRequest{Email: email, Container: container}
	return c.do(ctx, http.MethodPost, "/config/email/recipients/add", req, nil)
}

// RemoveRecipient removes an alert recipient from a container
func (c *Client) RemoveRecipient(ctx context.Context, container, email string) error {
	req := api.RecipientRequest{Email: email, Container: container}
	return c.do(ctx, http.MethodPost, "/config/email/recipients/remove", req, nil)
}

// lines fetches a bulk log payload and returns the non-blank lines of field
func (c *Client) lines(ctx context.Context, path string, tail int, field string) ([]string, error) {
	if tail <= 0 {
		tail = constants.DefaultTail
	}
	body, err := c.raw(ctx, http.MethodGet, path+"?tail="+strconv.Itoa(tail), nil)
	if err != nil {
		return nil, err
	}

	p := c.parsers.Get()
	defer c.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	blob := v.Get(field)
	if blob == nil || blob.Type() != fastjson.TypeString {
		return nil, fmt.Errorf("%w: %s must be a string", domain.ErrMalformedPayload, field)
	}
	return logs.SplitLines(string(blob.GetStringBytes())), nil
}

// do sends a JSON request and decodes the reply into out when it is non-nil
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	body, err := c.raw(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return nil
}

// raw sends a request and returns the body of a successful reply
func (c *Client) raw(ctx context.Context, method, path string, in interface{}) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			apiErr.Code = errResp.Code
			apiErr.Message = errResp.Error
		}
		return nil, apiErr
	}
	return body, nil
}
