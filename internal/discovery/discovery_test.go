package discovery

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"

	"github.com/nexusdb/nexus-go-sdk/internal/endpoint"
	"github.com/nexusdb/nexus-go-sdk/internal/wire"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeDiscoveryClient struct {
	listEndpoints func() (*wire.ListEndpointsResult, error)
}

func (f *fakeDiscoveryClient) ListEndpoints(ctx context.Context, in *wire.ListEndpointsRequest, opts ...grpc.CallOption) (*wire.ListEndpointsResponse, error) {
	result, err := f.listEndpoints()
	if err != nil {
		return nil, err
	}
	payload, _ := wire.EncodeResult(result)
	return &wire.ListEndpointsResponse{Operation: &wire.Operation{Ready: true, Result: payload}}, nil
}

func (f *fakeDiscoveryClient) WhoAmI(context.Context, *wire.WhoAmIRequest, ...grpc.CallOption) (*wire.WhoAmIResponse, error) {
	return nil, errors.New("not implemented")
}

func TestRefreshPublishesAddedAndRemoved(t *testing.T) {
	var round atomic.Int32
	client := &fakeDiscoveryClient{listEndpoints: func() (*wire.ListEndpointsResult, error) {
		if round.Add(1) == 1 {
			return &wire.ListEndpointsResult{Endpoints: []*wire.EndpointInfo{
				{Address: "a", Port: 1, LoadFactor: 0},
			}}, nil
		}
		return &wire.ListEndpointsResult{Endpoints: []*wire.EndpointInfo{
			{Address: "b", Port: 1, LoadFactor: 0},
		}}, nil
	}}

	type change struct{ added, removed []string }
	changes := make(chan change, 4)

	clock := clockwork.NewFakeClock()
	s := New(client, "/db", false, time.Minute,
		WithClock(clock),
		WithOnEndpointsChanged(func(added, removed []*endpoint.Endpoint) {
			c := change{}
			for _, e := range added {
				c.added = append(c.added, e.Key())
			}
			for _, e := range removed {
				c.removed = append(c.removed, e.Key())
			}
			changes <- c
		}),
	)
	defer s.Destroy()

	require.True(t, s.Ready(time.Second))

	// The first refresh publishes its own diff against the empty set.
	select {
	case c := <-changes:
		require.Equal(t, []string{"a:1"}, c.added)
		require.Empty(t, c.removed)
	case <-time.After(time.Second):
		t.Fatal("never observed the first refresh's diff")
	}

	clock.Advance(time.Minute)
	select {
	case c := <-changes:
		require.Equal(t, []string{"b:1"}, c.added)
		require.Equal(t, []string{"a:1"}, c.removed)
	case <-time.After(time.Second):
		t.Fatal("never observed the second refresh's diff")
	}
}

func TestGetEndpointPrefersLowestLoadFactor(t *testing.T) {
	client := &fakeDiscoveryClient{listEndpoints: func() (*wire.ListEndpointsResult, error) {
		return &wire.ListEndpointsResult{Endpoints: []*wire.EndpointInfo{
			{Address: "busy", Port: 1, LoadFactor: 0.9},
			{Address: "idle", Port: 1, LoadFactor: 0.1},
		}}, nil
	}}

	s := New(client, "/db", false, time.Hour, WithClock(clockwork.NewFakeClock()))
	defer s.Destroy()
	require.True(t, s.Ready(time.Second))

	ep, err := s.GetEndpoint()
	require.NoError(t, err)
	require.Equal(t, "idle:1", ep.Key())
}

func TestPessimizationSurvivesRefresh(t *testing.T) {
	client := &fakeDiscoveryClient{listEndpoints: func() (*wire.ListEndpointsResult, error) {
		return &wire.ListEndpointsResult{Endpoints: []*wire.EndpointInfo{
			{Address: "a", Port: 1, LoadFactor: 0},
			{Address: "b", Port: 1, LoadFactor: 0},
		}}, nil
	}}

	clock := clockwork.NewFakeClock()
	s := New(client, "/db", false, time.Minute,
		WithClock(clock), WithPessimizationDelay(time.Hour))
	defer s.Destroy()
	require.True(t, s.Ready(time.Second))

	before, err := s.GetEndpoint()
	require.NoError(t, err)

	// Pessimize whichever endpoint GetEndpoint handed back, the way
	// Driver.onTransportError does against a *conn.Conn's long-held
	// endpoint pointer, then force a couple more refreshes (well inside
	// the hour-long pessimization window). The same address must still
	// come back pessimized afterwards: its *Endpoint identity must
	// survive refresh, not be replaced by an equal-but-distinct object
	// that forgets the pessimization.
	s.Pessimize(before)

	clock.Advance(time.Minute)
	clock.Advance(time.Minute)

	require.Eventually(t, func() bool {
		for i := 0; i < 5; i++ {
			ep, err := s.GetEndpoint()
			require.NoError(t, err)
			if ep.Key() == before.Key() {
				return false
			}
		}
		return true
	}, time.Second, time.Millisecond)
}

func TestGetEndpointFailsBeforeFirstRefresh(t *testing.T) {
	client := &fakeDiscoveryClient{listEndpoints: func() (*wire.ListEndpointsResult, error) {
		return nil, errors.New("unreachable")
	}}

	s := New(client, "/db", false, time.Hour, WithClock(clockwork.NewFakeClock()))
	defer s.Destroy()

	_, err := s.GetEndpoint()
	require.Error(t, err)
}

func TestDestroyIsIdempotentAndFailsSubsequentGetEndpoint(t *testing.T) {
	client := &fakeDiscoveryClient{listEndpoints: func() (*wire.ListEndpointsResult, error) {
		return &wire.ListEndpointsResult{Endpoints: []*wire.EndpointInfo{{Address: "a", Port: 1}}}, nil
	}}

	s := New(client, "/db", false, time.Hour, WithClock(clockwork.NewFakeClock()))
	require.True(t, s.Ready(time.Second))

	s.Destroy()
	s.Destroy()

	_, err := s.GetEndpoint()
	require.Error(t, err)
}
