// ABOUTME: Error taxonomy for the calendar sync layer
// ABOUTME: Typed errors that callers classify with errors.Is against the sentinel kinds
package sync

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNoConnection means the user has no stored calendar credential.
	ErrNoConnection = errors.New("no Google Calendar connection found")

	// ErrNotFound means the referenced remote event no longer exists, or the
	// referenced note does not belong to the caller.
	ErrNotFound = errors.New("calendar event not found")

	// ErrUpstream covers every other provider-side failure.
	ErrUpstream = errors.New("calendar provider error")

	// ErrValidation means the caller's input was rejected before any remote call.
	ErrValidation = errors.New("invalid calendar input")
)

// Error carries the failed operation and one of the sentinel kinds.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func noConnection(op string) error {
	return &Error{Op: op, Kind: ErrNoConnection}
}

func validationError(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrValidation, Err: fmt.Errorf(format, args...)}
}

// classify maps a provider error to NotFound (404, 410) or Upstream.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone {
			return &Error{Op: op, Kind: ErrNotFound, Err: err}
		}
	}
	return &Error{Op: op, Kind: ErrUpstream, Err: err}
}

// IsBenignDelete reports whether a delete error means the event is already gone.
func IsBenignDelete(err error) bool {
	return err == nil || errors.Is(err, ErrNotFound)
}
