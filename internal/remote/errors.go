package remote

import "errors"

// Sentinel classes for server responses. Callers branch on the class,
// not the HTTP status; the wrapped message carries the server's text.
var (
	ErrNotFound  = errors.New("remote: not found")
	ErrForbidden = errors.New("remote: forbidden")
	ErrConflict  = errors.New("remote: conflict")
	ErrBadInput  = errors.New("remote: invalid request")
	ErrTransient = errors.New("remote: transient failure")
)

// IsTransient reports whether the failure is worth retrying on a later
// sync pass: network errors, timeouts and 5xx responses.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
