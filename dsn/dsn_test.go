package dsn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSecure(t *testing.T) {
	info, err := Parse("grpcs://ydb.example.com:2136/local")
	require.NoError(t, err)
	require.True(t, info.Secure)
	require.Equal(t, "ydb.example.com", info.Host)
	require.Equal(t, 2136, info.Port)
	require.Equal(t, "/local", info.Database)
}

func TestParseDefaultsPort(t *testing.T) {
	info, err := Parse("grpc://localhost/local")
	require.NoError(t, err)
	require.False(t, info.Secure)
	require.Equal(t, defaultPort, info.Port)
}

func TestParseRejectsUnknownScheme(t *testing.T) {
	_, err := Parse("http://localhost/local")
	require.Error(t, err)
}

func TestParseRejectsMissingDatabase(t *testing.T) {
	_, err := Parse("grpc://localhost:2135")
	require.Error(t, err)
}
