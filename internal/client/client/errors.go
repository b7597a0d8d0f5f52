package client

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the server could not be reached or did not answer
	// in time. The request may be retried later.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized means the server refused the credentials or token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected means the server received the request and refused it.
	ErrRejected              = errors.New("rejected by server")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// IsConnectivityError reports whether err means "no answer" rather than
// "answered with a refusal".
func IsConnectivityError(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
