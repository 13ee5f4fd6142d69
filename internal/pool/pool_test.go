package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"

	"github.com/nexusdb/nexus-go-sdk/internal/endpoint"
	"github.com/nexusdb/nexus-go-sdk/internal/session"
	"github.com/nexusdb/nexus-go-sdk/internal/wire"
	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

// TestMain guards against leaking the keeper goroutine or a stuck
// waiter when a test forgets to Destroy its Pool.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeConn implements grpc.ClientConnInterface, delegating Invoke to a
// per-test function, so sessions can be built without a real server.
type fakeConn struct {
	invoke func(method string, reply any) error
}

func (f *fakeConn) Invoke(_ context.Context, method string, _, reply any, _ ...grpc.CallOption) error {
	if f.invoke == nil {
		return nil
	}
	return f.invoke(method, reply)
}

func (f *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

func okConn() *fakeConn {
	return &fakeConn{invoke: func(method string, reply any) error {
		switch r := reply.(type) {
		case *wire.DeleteSessionResponse:
			r.Operation = &wire.Operation{Ready: true}
		case *wire.KeepAliveResponse:
			r.Operation = &wire.Operation{Ready: true}
		}
		return nil
	}}
}

func countingFactory(limit int) (Factory, *int32) {
	var n int32
	return func(ctx context.Context) (*session.Session, error) {
		id := atomic.AddInt32(&n, 1)
		if limit > 0 && int(id) > limit {
			return nil, errors.New("factory: out of sessions")
		}
		ep := endpoint.New("host", 2135, "/db", 0)
		return session.New(fmtID(id), ep, okConn()), nil
	}, &n
}

func fmtID(n int32) string {
	const digits = "0123456789"
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return "sess-" + string(buf)
}

func TestAcquireCreatesUpToMaxSize(t *testing.T) {
	factory, _ := countingFactory(0)
	p := New(factory, 0, 2, time.Hour)
	defer p.Destroy(context.Background())

	s1, err := p.Acquire(context.Background(), 0)
	require.NoError(t, err)
	s2, err := p.Acquire(context.Background(), 0)
	require.NoError(t, err)
	require.NotSame(t, s1, s2)
}

func TestAcquireWaitsForReleaseThenSucceeds(t *testing.T) {
	factory, _ := countingFactory(1)
	p := New(factory, 0, 1, time.Hour)
	defer p.Destroy(context.Background())

	s1, err := p.Acquire(context.Background(), 0)
	require.NoError(t, err)

	done := make(chan *session.Session, 1)
	go func() {
		s, err := p.Acquire(context.Background(), time.Second)
		require.NoError(t, err)
		done <- s
	}()

	time.Sleep(20 * time.Millisecond)
	s1.Release()

	select {
	case s := <-done:
		require.Same(t, s1, s)
	case <-time.After(time.Second):
		t.Fatal("waiter never received the released session")
	}
}

func TestAcquireTimesOutWhenPoolExhausted(t *testing.T) {
	factory, _ := countingFactory(1)
	p := New(factory, 0, 1, time.Hour)
	defer p.Destroy(context.Background())

	_, err := p.Acquire(context.Background(), 0)
	require.NoError(t, err)

	_, err = p.Acquire(context.Background(), 10*time.Millisecond)
	require.Error(t, err)
	var timeout *xerrors.TimeoutExpired
	require.ErrorAs(t, err, &timeout)
}

func TestWithSessionReleasesOnSuccess(t *testing.T) {
	factory, _ := countingFactory(0)
	p := New(factory, 0, 1, time.Hour)
	defer p.Destroy(context.Background())

	var seen *session.Session
	err := p.WithSession(context.Background(), 0, func(_ context.Context, s *session.Session) error {
		seen = s
		return nil
	})
	require.NoError(t, err)

	s2, err := p.Acquire(context.Background(), 0)
	require.NoError(t, err)
	require.Same(t, seen, s2)
}

func TestWithSessionDiscardsOnFailure(t *testing.T) {
	factory, n := countingFactory(0)
	p := New(factory, 0, 1, time.Hour)
	defer p.Destroy(context.Background())

	failing := errors.New("callback failed")
	err := p.WithSession(context.Background(), 0, func(context.Context, *session.Session) error {
		return failing
	})
	require.ErrorIs(t, err, failing)

	require.Eventually(t, func() bool {
		return p.Stats().InUse == 0
	}, time.Second, time.Millisecond)

	_, err = p.Acquire(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(n))
}

func TestBrokenSessionIsEvicted(t *testing.T) {
	badConn := &fakeConn{invoke: func(method string, reply any) error {
		switch r := reply.(type) {
		case *wire.KeepAliveResponse:
			r.Operation = &wire.Operation{Ready: true, Status: wire.StatusCode(xerrors.StatusBadSession)}
		case *wire.DeleteSessionResponse:
			r.Operation = &wire.Operation{Ready: true}
		}
		return nil
	}}
	factory := func(context.Context) (*session.Session, error) {
		ep := endpoint.New("host", 2135, "/db", 0)
		return session.New("bad-session", ep, badConn), nil
	}

	p := New(factory, 0, 1, time.Hour)
	defer p.Destroy(context.Background())

	s, err := p.Acquire(context.Background(), 0)
	require.NoError(t, err)
	require.Error(t, s.KeepAlive(context.Background()))
	s.Release()

	require.Eventually(t, func() bool {
		st := p.Stats()
		return st.Idle == 0 && st.InUse == 0
	}, time.Second, time.Millisecond)
}
