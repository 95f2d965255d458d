package apierrors

import (
	"errors"
	"fmt"
)

// ErrUnauthorized marks a 401 on an authenticated call: the stored credential
// is expired or invalid. The API client has already cleared the session and
// notified the composition-level hook by the time callers see this, so they
// are expected to suppress it from their own error surfaces.
var ErrUnauthorized = errors.New("unauthorized")

// RequestError is any other non-2xx response. Detail carries the server's
// JSON `detail` field when the body had one.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// ValidationError rejects a candidate file before any request is made.
type ValidationError struct {
	FileName string
	Reason   string
}

func (e *ValidationError) Error() string { return e.Reason }
