package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnavailable is returned when a remote backend does not answer its
	// connection check.
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// ConnectError reports a failed connection check against a backend.
type ConnectError struct {
	Backend  string
	Attempts int
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s: %v after %d attempt(s): %v", e.Backend, ErrUnavailable, e.Attempts, e.Err)
}

// Unwrap exposes both ErrUnavailable and the last ping error.
func (e *ConnectError) Unwrap() []error { return []error{ErrUnavailable, e.Err} }

// connectAttempts and connectDelay bound the connection check of remote
// backends. The delay doubles after every failed attempt.
var (
	connectAttempts = 3
	connectDelay    = 500 * time.Millisecond
)

// ping runs check until it succeeds, the attempts are used up or ctx is
// done. Only the connection check is retried; cache reads and writes never
// are.
func ping(ctx context.Context, backend string, check func(context.Context) error) error {
	delay := connectDelay
	var last error
	for i := 1; i <= connectAttempts; i++ {
		if last = check(ctx); last == nil {
			return nil
		}
		if i == connectAttempts {
			return &ConnectError{Backend: backend, Attempts: i, Err: last}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return &ConnectError{Backend: backend, Attempts: connectAttempts, Err: last}
}
