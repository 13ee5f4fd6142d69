// Package retry implements the declarative retry engine (spec component
// C7): a wrapper applied to retryable operations with per-error-class
// policy and bounded, jittered backoff. Grounded on the teacher's root
// retry.go (RetryChecker, LogBackoff, RetryMode).
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/nexusdb/nexus-go-sdk/internal/backoff"
	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

// Parameters configures a Do call. Zero values fall back to the
// package defaults.
type Parameters struct {
	MaxRetries     int
	FastBackoff    backoff.Backoff
	SlowBackoff    backoff.Backoff
	Deadline       time.Duration
	IdempotentOnly bool
}

const DefaultMaxRetries = 10

func defaults(p Parameters) Parameters {
	if p.MaxRetries == 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.FastBackoff == nil {
		p.FastBackoff = backoff.Fast
	}
	if p.SlowBackoff == nil {
		p.SlowBackoff = backoff.Slow
	}
	return p
}

// class is the outcome of classifying an error against spec §4.7's
// categories.
type class int

const (
	classFatal class = iota
	classRetryFast
	classRetrySlow
	classSessionBroken
)

func classify(err error) class {
	var opErr *xerrors.OpError
	if errors.As(err, &opErr) {
		if opErr.IsSessionBroken() {
			return classSessionBroken
		}
		switch opErr.Code {
		case xerrors.StatusAborted, xerrors.StatusOverloaded, xerrors.StatusSessionBusy:
			return classRetryFast
		case xerrors.StatusUnavailable, xerrors.StatusUndetermined:
			return classRetrySlow
		default:
			return classFatal
		}
	}

	var transport *xerrors.TransportError
	if errors.As(err, &transport) {
		return classRetrySlow
	}

	return classFatal
}

// Do wraps op with retry policy: it reattempts on retryable-fast and
// retryable-slow errors, stops on fatal or session-broken errors
// (session-broken is surfaced, not retried on the same session — the
// caller owns discarding it), and stops after MaxRetries retries (that
// is, MaxRetries+1 attempts) or when the cumulative elapsed time exceeds
// Deadline, whichever first.
func Do(ctx context.Context, op func(ctx context.Context) error, params Parameters) error {
	p := defaults(params)

	var deadlineAt time.Time
	if p.Deadline > 0 {
		deadlineAt = time.Now().Add(p.Deadline)
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		c := classify(lastErr)
		if c == classFatal || c == classSessionBroken {
			return lastErr
		}

		if attempt >= p.MaxRetries {
			return lastErr
		}
		if !deadlineAt.IsZero() && time.Now().After(deadlineAt) {
			return lastErr
		}

		var wait error
		switch c {
		case classRetryFast:
			if attempt == 0 {
				continue // retry without backoff the first time
			}
			wait = backoff.Wait(ctx, p.FastBackoff, attempt)
		case classRetrySlow:
			wait = backoff.Wait(ctx, p.SlowBackoff, attempt)
		}
		if wait != nil {
			return wait
		}
	}
}
