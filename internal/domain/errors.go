package domain

import "errors"

// Domain errors
var (
	ErrContainerNotFound = errors.New("container not found")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrInvalidKeyword    = errors.New("invalid keyword")
	ErrInvalidSetting    = errors.New("invalid setting")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// Error codes for API responses
const (
	ErrCodeContainerNotFound = "CONTAINER_NOT_FOUND"
	ErrCodeMalformedPayload  = "MALFORMED_PAYLOAD"
	ErrCodeInvalidKeyword    = "INVALID_KEYWORD"
	ErrCodeInvalidSetting    = "INVALID_SETTING"
)

// ErrorCode returns the API error code for a domain error
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrContainerNotFound):
		return ErrCodeContainerNotFound
	case errors.Is(err, ErrMalformedPayload):
		return ErrCodeMalformedPayload
	case errors.Is(err, ErrInvalidKeyword):
		return ErrCodeInvalidKeyword
	case errors.Is(err, ErrInvalidSetting):
		return ErrCodeInvalidSetting
	default:
		return "INTERNAL_ERROR"
	}
}
