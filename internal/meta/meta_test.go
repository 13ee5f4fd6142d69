package meta

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexusdb/nexus-go-sdk/credentials"
)

func TestMDCarriesExactlyTheTwoRequiredHeaders(t *testing.T) {
	m := New("/Root/db", credentials.NewStatic("T"))

	md, err := m.MD(context.Background())
	require.NoError(t, err)

	require.Len(t, md, 2)
	require.Equal(t, []string{"/Root/db"}, md.Get(HeaderDatabase))
	require.Equal(t, []string{"T"}, md.Get(HeaderAuth))
}

func TestMDRebuildsOnlyWhenTokenChanges(t *testing.T) {
	var calls atomic.Int32
	tokens := []string{"A", "A", "B"}
	creds := credentials.Func(func(context.Context) (string, error) {
		i := calls.Add(1) - 1
		return tokens[i], nil
	})

	m := New("/Root/db", creds)

	first, err := m.MD(context.Background())
	require.NoError(t, err)
	second, err := m.MD(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)

	third, err := m.MD(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"B"}, third.Get(HeaderAuth))
}

func TestMDPropagatesCredentialsError(t *testing.T) {
	failing := errors.New("token unavailable")
	creds := credentials.Func(func(context.Context) (string, error) { return "", failing })

	m := New("/Root/db", creds)
	_, err := m.MD(context.Background())
	require.ErrorIs(t, err, failing)
}
