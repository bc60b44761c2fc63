package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure the way §7 of the specification taxonomizes
// errors: the dispatcher switches on Kind to choose a wire response,
// never on the underlying transport error.
type Kind int

const (
	KindNotFound Kind = iota
	KindAuthFailed
	KindTransient
	KindPermanent
	KindInternal
)

// Error wraps an upstream failure with the kind the dispatcher needs.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("upstream: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNotFound/ErrAuthFailed/ErrTransient/ErrPermanent are sentinels for
// errors.Is checks against the Kind carried by *Error.
var (
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
	ErrAuthFailed = &Error{Kind: KindAuthFailed, Message: "authentication failed"}
	ErrTransient  = &Error{Kind: KindTransient, Message: "transient upstream failure"}
	ErrPermanent  = &Error{Kind: KindPermanent, Message: "permanent upstream failure"}
)

// Is makes *Error comparable to the sentinels by Kind, so callers can
// write errors.Is(err, upstream.ErrNotFound) regardless of message/status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// classify maps an HTTP status (and any transport error) to a Kind,
// matching §4.6's "retryable if transport-level or 429/502/503" rule
// and §7's NotFound/AuthFailed/Transient/Permanent split.
func classify(status int, transportErr error) Kind {
	if transportErr != nil {
		return KindTransient
	}
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthFailed
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
		return KindTransient
	}
	if status >= 500 {
		return KindTransient
	}
	if status >= 400 {
		return KindPermanent
	}
	return KindInternal
}

func newError(status int, body string, transportErr error) *Error {
	kind := classify(status, transportErr)
	msg := body
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Kind: kind, Status: status, Message: msg, Err: transportErr}
}

// IsRetryable reports whether err should be retried per §4.6: transport
// errors or HTTP 429/502/503 on an idempotent read.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindTransient {
		return false
	}
	switch e.Status {
	case 0, http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
		// Status 0 is a transport error: no HTTP response arrived.
		return true
	}
	return false
}
