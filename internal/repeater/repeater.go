// Package repeater drives a periodic background task with an immediate
// "force" escape hatch, used by discovery to refresh on its usual
// schedule but also right away when every known endpoint is pessimized.
package repeater

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nexusdb/nexus-go-sdk/internal/backoff"
)

// Repeater runs task on every tick of interval until Stop, and can be
// nudged to run immediately via Force.
type Repeater interface {
	Force()
	Stop()
}

type repeater struct {
	interval time.Duration
	task     func(ctx context.Context) error
	clock    clockwork.Clock

	cancel  context.CancelFunc
	force   chan struct{}
	stopped chan struct{}
}

// Option configures a repeater built by New.
type Option func(*repeater)

// WithClock injects a clock, for deterministic tests.
func WithClock(c clockwork.Clock) Option {
	return func(r *repeater) { r.clock = c }
}

// New starts a repeater running task every interval, plus immediately on
// start.
func New(interval time.Duration, task func(ctx context.Context) error, opts ...Option) Repeater {
	ctx, cancel := context.WithCancel(context.Background())
	r := &repeater{
		interval: interval,
		task:     task,
		clock:    clockwork.NewRealClock(),
		cancel:   cancel,
		force:    make(chan struct{}, 1),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.worker(ctx)
	return r
}

func (r *repeater) Force() {
	select {
	case r.force <- struct{}{}:
	default:
		// a force request is already pending.
	}
}

func (r *repeater) Stop() {
	r.cancel()
	<-r.stopped
}

func (r *repeater) worker(ctx context.Context) {
	defer close(r.stopped)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	forceBackoff := backoff.New(backoff.WithSlotDuration(500*time.Millisecond), backoff.WithCeiling(6))
	forceAttempt := 0

	run := func() {
		if err := r.task(ctx); err != nil {
			forceAttempt++
			r.scheduleRetry(ctx, forceBackoff.Delay(forceAttempt))
			return
		}
		forceAttempt = 0
	}

	run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			run()
		case <-r.force:
			run()
		}
	}
}

// scheduleRetry re-arms a force request after d, unless ctx ends first.
// A failed refresh must still escalate toward a retry even without an
// external Force() caller.
func (r *repeater) scheduleRetry(ctx context.Context, d time.Duration) {
	go func() {
		t := r.clock.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.Chan():
			r.Force()
		}
	}()
}
