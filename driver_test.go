package nexus

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nexusdb/nexus-go-sdk/dsn"
)

func TestDialOptionsDefaultsToInsecureForPlainScheme(t *testing.T) {
	cfg := defaultConfig()
	opts := dialOptions(dsn.Info{Secure: false}, cfg)
	require.NotEmpty(t, opts)
}

func TestDialOptionsAppendsUserSuppliedOptionsLast(t *testing.T) {
	cfg := defaultConfig()
	marker := grpc.WithUserAgent("nexus-test")
	cfg.dialOptions = append(cfg.dialOptions, marker)

	opts := dialOptions(dsn.Info{Secure: true}, cfg)
	require.Equal(t, marker, opts[len(opts)-1])
}

func TestDefaultConfigUsesInsecureCredentialsHelper(t *testing.T) {
	// sanity: insecure.NewCredentials must be importable/usable the way
	// dialOptions uses it, since driver_test can't dial a real server.
	require.NotNil(t, insecure.NewCredentials())
}
