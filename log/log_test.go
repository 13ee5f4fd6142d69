package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nexusdb/nexus-go-sdk/log/kv"
)

func TestNopDiscardsEverything(t *testing.T) {
	l := Nop()
	l.Log(context.Background(), "anything", kv.String("k", "v"))
	require.Equal(t, l, l.WithName("x"))
}

func TestDefaultWritesAtOrAboveMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Default(&buf, WithMinLevel(WARN))

	l.Log(context.Background(), "info level dropped", kv.String("k", "v"))
	require.Empty(t, buf.String())

	l.WithName("pool").WithLevel(WARN).Log(context.Background(), "warn level kept", kv.Error(nil))
	require.Contains(t, buf.String(), "warn level kept")
	require.Contains(t, buf.String(), "pool")
}

func TestWithLevelEscalatesASingleCallSite(t *testing.T) {
	var buf bytes.Buffer
	l := Default(&buf, WithMinLevel(ERROR))

	ctx := WithLevel(context.Background(), ERROR)
	l.Log(ctx, "escalated", kv.String("k", "v"))
	require.Contains(t, buf.String(), "escalated")
}
