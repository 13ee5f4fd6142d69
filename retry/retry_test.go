package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nexusdb/nexus-go-sdk/internal/backoff"
	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

func fastParams(maxRetries int) Parameters {
	return Parameters{
		MaxRetries:  maxRetries,
		FastBackoff: backoff.New(backoff.WithSlotDuration(time.Microsecond)),
		SlowBackoff: backoff.New(backoff.WithSlotDuration(time.Microsecond)),
	}
}

func TestRetryBudgetSucceedsWithinLimit(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts <= 5 {
			return &xerrors.OpError{Code: xerrors.StatusOverloaded}
		}
		return nil
	}, fastParams(5))
	require.NoError(t, err)
	require.Equal(t, 6, attempts)
}

func TestRetryBudgetFailsBeyondLimit(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return &xerrors.OpError{Code: xerrors.StatusOverloaded}
	}, fastParams(3))
	require.Error(t, err)
	require.Equal(t, 4, attempts)
}

func TestFatalErrorNotRetried(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return &xerrors.OpError{Code: xerrors.StatusNotFound}
	}, fastParams(5))
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestSessionBrokenSurfacesWithoutRetryOnSameSession(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return &xerrors.OpError{Code: xerrors.StatusBadSession}
	}, fastParams(5))
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestDeadlineStopsRetrying(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		time.Sleep(2 * time.Millisecond)
		return &xerrors.OpError{Code: xerrors.StatusOverloaded}
	}, Parameters{
		MaxRetries:  1000,
		FastBackoff: backoff.New(backoff.WithSlotDuration(time.Microsecond)),
		SlowBackoff: backoff.New(backoff.WithSlotDuration(time.Microsecond)),
		Deadline:    5 * time.Millisecond,
	})
	require.Error(t, err)
	require.Less(t, attempts, 1000)
}
