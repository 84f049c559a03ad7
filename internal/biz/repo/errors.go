package repo

import "errors"

// Recoverable platform errors for a single reaction add.
// Data implementations wrap these so callers can classify with errors.Is.
var (
	ErrAlreadyReacted = errors.New("already reacted")
	ErrRateLimited    = errors.New("rate limited")
	ErrInvalidName    = errors.New("invalid reaction name")
)

// ErrMalformedResponse is returned when an upstream answers with a body we cannot use
var ErrMalformedResponse = errors.New("malformed response")
