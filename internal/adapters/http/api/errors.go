package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/domain/adaptive"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Error ties a failed operation to the kind of failure it reports.
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

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of kind for op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind returns err classified as kind for op.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// errorStatus maps an error to its HTTP status and response code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, adaptive.ErrNotStarted):
		return http.StatusConflict, "not_started"
	case errors.Is(err, adaptive.ErrSessionComplete):
		return http.StatusConflict, "session_complete"
	case errors.Is(err, adaptive.ErrTicketMismatch):
		return http.StatusConflict, "ticket_mismatch"
	case errors.Is(err, adaptive.ErrNoPendingItem):
		return http.StatusConflict, "no_pending_item"
	case errors.Is(err, service.ErrUnknownRequest):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotRunning):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
