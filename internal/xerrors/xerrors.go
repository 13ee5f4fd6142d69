// Package xerrors implements the error taxonomy used across the driver:
// transport failures, status-coded operation errors, scheme errors and
// stack-trace-carrying wraps.
package xerrors

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"
)

// StatusCode mirrors the server's status enum. Only the subset the
// retry engine and pool care about is named; everything else round-trips
// as its numeric value.
type StatusCode uint32

const (
	StatusUnknown StatusCode = iota
	StatusBadRequest
	StatusUnauthorized
	StatusInternalError
	StatusAborted
	StatusUnavailable
	StatusOverloaded
	StatusSchemeError
	StatusGenericError
	StatusTimeout
	StatusBadSession
	StatusPreconditionFailed
	StatusAlreadyExists
	StatusNotFound
	StatusSessionExpired
	StatusCancelled
	StatusUndetermined
	StatusUnsupported
	StatusSessionBusy
)

func (c StatusCode) String() string {
	switch c {
	case StatusBadRequest:
		return "BAD_REQUEST"
	case StatusUnauthorized:
		return "UNAUTHORIZED"
	case StatusInternalError:
		return "INTERNAL_ERROR"
	case StatusAborted:
		return "ABORTED"
	case StatusUnavailable:
		return "UNAVAILABLE"
	case StatusOverloaded:
		return "OVERLOADED"
	case StatusSchemeError:
		return "SCHEME_ERROR"
	case StatusGenericError:
		return "GENERIC_ERROR"
	case StatusTimeout:
		return "TIMEOUT"
	case StatusBadSession:
		return "BAD_SESSION"
	case StatusPreconditionFailed:
		return "PRECONDITION_FAILED"
	case StatusAlreadyExists:
		return "ALREADY_EXISTS"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusSessionExpired:
		return "SESSION_EXPIRED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusUndetermined:
		return "UNDETERMINED"
	case StatusUnsupported:
		return "UNSUPPORTED"
	case StatusSessionBusy:
		return "SESSION_BUSY"
	default:
		return "UNKNOWN"
	}
}

// TransportError is returned when a unary call fails below the operation
// envelope: dial failure, DEADLINE_EXCEEDED, UNAVAILABLE from gRPC itself.
// Its presence is what triggers endpoint pessimization.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// OpError is a status-coded error surfaced inside a successfully
// delivered operation envelope.
type OpError struct {
	Code    StatusCode
	Issues  string
	session string // non-empty if the server tagged this as session-scoped
}

func (e *OpError) Error() string {
	if e.Issues == "" {
		return fmt.Sprintf("operation error: %s", e.Code)
	}
	return fmt.Sprintf("operation error: %s: %s", e.Code, e.Issues)
}

// SchemeError is a narrower view of OpError for StatusSchemeError,
// callers sometimes tolerate it (e.g. dropping a table that is already
// gone).
type SchemeError struct {
	*OpError
}

func IsSchemeError(err error) bool {
	var op *OpError
	if errors.As(err, &op) {
		return op.Code == StatusSchemeError
	}
	return false
}

// TimeoutExpired is returned by WithTimeout and by waiter timeouts.
type TimeoutExpired struct {
	Message string
}

func (e *TimeoutExpired) Error() string {
	return e.Message
}

// EmptyPayload marks a response that lacked an expected field
// (txMeta, iamToken, sessionId, ...). Always fatal.
type EmptyPayload struct {
	Field string
}

func (e *EmptyPayload) Error() string {
	return fmt.Sprintf("empty payload: expected field %q", e.Field)
}

// IsSessionBroken reports whether the server tagged this OpError as session-scoped:
// the retry engine must not retry on the same session and must signal the
// pool to evict it.
func (e *OpError) IsSessionBroken() bool {
	switch e.Code {
	case StatusBadSession, StatusSessionExpired:
		return true
	default:
		return false
	}
}

// withStackTrace wraps err with the call site's program counter so later
// logging can report where the error originated, mirroring the teacher's
// own stack-capturing wrap.
type withStackTrace struct {
	err   error
	stack xerrors.Frame
}

func (e *withStackTrace) Error() string {
	return e.err.Error()
}

func (e *withStackTrace) Unwrap() error {
	return e.err
}

func (e *withStackTrace) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

func (e *withStackTrace) FormatError(p xerrors.Printer) (next error) {
	p.Print(e.err)
	e.stack.Format(p)
	return nil
}

// WithStackTrace wraps err with the caller's frame, skipping the
// WithStackTrace frame itself. Returns nil for a nil err.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}
	return &withStackTrace{
		err:   err,
		stack: xerrors.Caller(1),
	}
}

// Retryable reports whether err, however wrapped, is an error kind the
// retry engine may reattempt at all (as opposed to a programmer error).
func Retryable(err error) bool {
	var (
		transport *TransportError
		op        *OpError
		timeout   *TimeoutExpired
	)
	switch {
	case errors.As(err, &transport):
		return true
	case errors.As(err, &op):
		switch op.Code {
		case StatusAborted, StatusOverloaded, StatusUnavailable,
			StatusBadSession, StatusSessionBusy, StatusUndetermined:
			return true
		default:
			return false
		}
	case errors.As(err, &timeout):
		return false
	default:
		return false
	}
}
