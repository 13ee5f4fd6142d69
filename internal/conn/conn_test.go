package conn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

func TestWithTimeoutReturnsResultBeforeDeadline(t *testing.T) {
	got, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestWithTimeoutExpires(t *testing.T) {
	_, err := WithTimeout(context.Background(), time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	var timeout *xerrors.TimeoutExpired
	require.ErrorAs(t, err, &timeout)
}

func TestWithTimeoutPropagatesFnError(t *testing.T) {
	wantErr := errors.New("boom")
	_, err := WithTimeout(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestGRPCUnavailable(t *testing.T) {
	require.True(t, grpcUnavailable(status.Error(codes.Unavailable, "down")))
	require.True(t, grpcUnavailable(status.Error(codes.DeadlineExceeded, "timeout")))
	require.False(t, grpcUnavailable(status.Error(codes.NotFound, "missing")))
	require.False(t, grpcUnavailable(errors.New("not a status error")))
}
