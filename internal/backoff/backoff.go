// Package backoff implements logarithmic backoff with jitter, the
// primitive the retry engine and the discovery repeater both build on.
package backoff

import (
	"context"
	"math/rand"
	"time"
)

// Backoff computes the delay before retry attempt i (0-based).
type Backoff interface {
	Delay(i int) time.Duration
}

type logBackoff struct {
	slotDuration time.Duration
	ceiling      uint
	jitterLimit  float64
}

// Option configures a logBackoff built by New.
type Option func(*logBackoff)

// WithSlotDuration sets the base unit multiplied by 2^attempt.
func WithSlotDuration(d time.Duration) Option {
	return func(b *logBackoff) { b.slotDuration = d }
}

// WithCeiling caps the exponent so delay growth is bounded.
func WithCeiling(ceiling uint) Option {
	return func(b *logBackoff) { b.ceiling = ceiling }
}

// WithJitterLimit sets the fraction of the computed delay that is fixed
// (as opposed to random); 1 means no jitter, 0 means fully random.
func WithJitterLimit(limit float64) Option {
	return func(b *logBackoff) { b.jitterLimit = limit }
}

// New builds a Backoff with the given options applied over sane
// defaults (5ms slot, ceiling 6, jitter limit 1, i.e. no jitter).
func New(opts ...Option) Backoff {
	b := &logBackoff{
		slotDuration: 5 * time.Millisecond,
		ceiling:      6,
		jitterLimit:  1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Delay implements delay = slot * 2^e, where e = min(i, ceiling) floored
// at 1, of which the jitterLimit fraction is fixed and the rest random.
func (b *logBackoff) Delay(i int) time.Duration {
	e := uint(i)
	if e > b.ceiling {
		e = b.ceiling
	}
	if e < 1 {
		e = 1
	}
	n := time.Duration(1 << e)
	d := b.slotDuration * n

	jitterLimit := b.jitterLimit
	if jitterLimit < 0 {
		jitterLimit = -jitterLimit
	}
	if jitterLimit > 1 {
		jitterLimit = 1
	}
	f := time.Duration(jitterLimit * float64(d))
	if f == d {
		return f
	}
	//nolint:gosec // jitter does not need to be cryptographically random
	return f + time.Duration(rand.Int63n(int64(d-f)))
}

// Fast is the preset used for errors that should be retried quickly
// (ABORTED, OVERLOADED): small slot, low ceiling.
var Fast = New(WithSlotDuration(5*time.Millisecond), WithCeiling(6))

// Slow is the preset used for client-transient errors (UNAVAILABLE,
// DEADLINE): larger slot, same ceiling.
var Slow = New(WithSlotDuration(1*time.Second), WithCeiling(6))

// Wait blocks for Delay(i) or until ctx is done, whichever comes first.
func Wait(ctx context.Context, b Backoff, i int) error {
	t := time.NewTimer(b.Delay(i))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
