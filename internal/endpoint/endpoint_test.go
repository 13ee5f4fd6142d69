package endpoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func keys(es []*Endpoint) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Key()
	}
	return out
}

func TestDiff(t *testing.T) {
	a := New("host-a", 2135, "/db", 0)
	b := New("host-b", 2135, "/db", 0)
	c := New("host-c", 2135, "/db", 0)

	added, removed := Diff([]*Endpoint{a, b}, []*Endpoint{b, c})
	require.ElementsMatch(t, []string{"host-c:2135"}, keys(added))
	require.ElementsMatch(t, []string{"host-a:2135"}, keys(removed))
}

func TestDiffNoChange(t *testing.T) {
	a := New("host-a", 2135, "/db", 0)
	added, removed := Diff([]*Endpoint{a}, []*Endpoint{a})
	require.Empty(t, added)
	require.Empty(t, removed)
}

func TestPessimize(t *testing.T) {
	e := New("host-a", 2135, "/db", 0)
	now := time.Now()
	require.False(t, e.IsPessimized(now))

	e.Pessimize(now, time.Minute)
	require.True(t, e.IsPessimized(now.Add(time.Second)))
	require.False(t, e.IsPessimized(now.Add(2*time.Minute)))
}

func TestPessimizeExtendsNotShrinks(t *testing.T) {
	e := New("host-a", 2135, "/db", 0)
	now := time.Now()
	e.Pessimize(now, time.Minute)
	e.Pessimize(now, time.Second) // shorter, must not shrink the window
	require.True(t, e.IsPessimized(now.Add(30*time.Second)))
}
