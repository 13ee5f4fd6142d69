package xerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
		want bool
	}{
		{"transport", &TransportError{Err: errors.New("dial tcp: connection refused")}, true},
		{"overloaded", &OpError{Code: StatusOverloaded}, true},
		{"bad session", &OpError{Code: StatusBadSession}, true},
		{"not found", &OpError{Code: StatusNotFound}, false},
		{"timeout", &TimeoutExpired{Message: "deadline"}, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestIsSchemeError(t *testing.T) {
	require.True(t, IsSchemeError(&OpError{Code: StatusSchemeError}))
	require.False(t, IsSchemeError(&OpError{Code: StatusNotFound}))
}

func TestOpErrorIsSessionBroken(t *testing.T) {
	require.True(t, (&OpError{Code: StatusBadSession}).IsSessionBroken())
	require.True(t, (&OpError{Code: StatusSessionExpired}).IsSessionBroken())
	require.False(t, (&OpError{Code: StatusAborted}).IsSessionBroken())
}

func TestWithStackTrace(t *testing.T) {
	require.Nil(t, WithStackTrace(nil))
	err := WithStackTrace(&OpError{Code: StatusAborted})
	require.Error(t, err)
	require.Contains(t, err.Error(), "operation error")
}
