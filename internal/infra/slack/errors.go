package slack

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError is a Web API call that reached Slack and was refused, either
// with a non-2xx status or with ok=false in the body
type APIError struct {
	Method     string
	Code       string
	Status     int
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("slack %s http %d", e.Method, e.Status)
	}
	return fmt.Sprintf("slack %s failed: %s", e.Method, e.Code)
}

// Temporary reports whether the call may succeed if repeated later
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500 || e.Code == CodeRateLimited
}

// Error codes the rest of the bot cares about
const (
	CodeAlreadyReacted = "already_reacted"
	CodeRateLimited    = "ratelimited"
	CodeInvalidName    = "invalid_name"
	CodeNotInChannel   = "not_in_channel"
	CodeChannelMissing = "channel_not_found"
)

// ErrorCode extracts the Slack error code from err, or ""
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
