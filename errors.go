package nexus

import (
	"errors"

	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

// IsTimeoutError reports whether err (however wrapped) is a deadline
// expiring inside the driver itself — a pool-acquire or withTimeout
// deadline, not a context cancellation from the caller.
func IsTimeoutError(err error) bool {
	var t *xerrors.TimeoutExpired
	return errors.As(err, &t)
}

// IsTransportError reports whether err originates below the operation
// envelope (dial failure, DEADLINE_EXCEEDED/UNAVAILABLE from gRPC).
func IsTransportError(err error) bool {
	var t *xerrors.TransportError
	return errors.As(err, &t)
}

// IsOperationError reports whether err is a status-coded failure
// returned inside a successfully delivered operation envelope, and
// returns the status code when it is.
func IsOperationError(err error) (code uint32, ok bool) {
	var op *xerrors.OpError
	if errors.As(err, &op) {
		return uint32(op.Code), true
	}
	return 0, false
}

// IsSchemeError reports whether err is a SCHEME_ERROR operation status,
// the status DropTable/RemoveDirectory tolerate for idempotent retries.
func IsSchemeError(err error) bool {
	return xerrors.IsSchemeError(err)
}

// IsRetryable reports whether the retry engine would reattempt err at
// all, for callers composing their own retry policy around a Client
// method outside of retry.Do.
func IsRetryable(err error) bool {
	return xerrors.Retryable(err)
}
