package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDelayBounded(t *testing.T) {
	b := New(WithSlotDuration(time.Millisecond), WithCeiling(3), WithJitterLimit(1))
	for i := 0; i < 10; i++ {
		d := b.Delay(i)
		require.LessOrEqual(t, d, 8*time.Millisecond)
		require.Greater(t, d, time.Duration(0))
	}
}

func TestDelayMonotonicFloor(t *testing.T) {
	b := New(WithSlotDuration(time.Millisecond), WithCeiling(10), WithJitterLimit(1))
	// attempt 0 and 1 both floor to exponent 1.
	require.Equal(t, b.Delay(0), b.Delay(1))
	require.Greater(t, b.Delay(5), b.Delay(1))
}

func TestWaitRespectsContext(t *testing.T) {
	b := New(WithSlotDuration(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	err := Wait(ctx, b, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
