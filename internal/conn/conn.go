// Package conn wraps a single endpoint's gRPC connection (spec
// component C2): it attaches auth metadata to every unary call, races
// calls against a timeout, and reports transport failures back to the
// endpoint so discovery can pessimize it.
package conn

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/nexusdb/nexus-go-sdk/internal/endpoint"
	"github.com/nexusdb/nexus-go-sdk/internal/meta"
	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

// OnTransportError is invoked whenever a unary call fails below the
// operation envelope (dial failure, DEADLINE_EXCEEDED, UNAVAILABLE).
type OnTransportError func(e *endpoint.Endpoint, err error)

// Conn adapts a *grpc.ClientConn bound to one Endpoint into the
// grpc.ClientConnInterface the generated wire clients expect, layering
// in auth metadata attachment and pessimization reporting.
type Conn struct {
	Endpoint *endpoint.Endpoint

	cc               *grpc.ClientConn
	meta             *meta.Meta
	onTransportError OnTransportError
}

// New dials e and wraps the resulting *grpc.ClientConn. dialOpts are
// forwarded to grpc.DialContext unchanged (credentials, keepalive, ...).
func New(
	ctx context.Context,
	e *endpoint.Endpoint,
	m *meta.Meta,
	onTransportError OnTransportError,
	dialOpts ...grpc.DialOption,
) (*Conn, error) {
	cc, err := grpc.DialContext(ctx, e.Addr(), dialOpts...)
	if err != nil {
		return nil, &xerrors.TransportError{Err: err}
	}
	return &Conn{
		Endpoint:         e,
		cc:               cc,
		meta:             m,
		onTransportError: onTransportError,
	}, nil
}

// Invoke implements grpc.ClientConnInterface, attaching auth metadata
// before delegating to the underlying *grpc.ClientConn, and reporting
// transport-level failures for pessimization.
func (c *Conn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	md, err := c.meta.MD(ctx)
	if err != nil {
		return err
	}
	ctx = metadata.NewOutgoingContext(ctx, md)

	err = c.cc.Invoke(ctx, method, args, reply, opts...)
	if err != nil {
		if isTransportLevel(err) {
			wrapped := &xerrors.TransportError{Err: err}
			if c.onTransportError != nil {
				c.onTransportError(c.Endpoint, wrapped)
			}
			return wrapped
		}
		return err
	}
	return nil
}

// NewStream implements grpc.ClientConnInterface for the streaming calls
// (StreamReadTable, StreamExecuteScanQuery) the Session surface exposes.
func (c *Conn) NewStream(
	ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	md, err := c.meta.MD(ctx)
	if err != nil {
		return nil, err
	}
	ctx = metadata.NewOutgoingContext(ctx, md)

	stream, err := c.cc.NewStream(ctx, desc, method, opts...)
	if err != nil && isTransportLevel(err) {
		wrapped := &xerrors.TransportError{Err: err}
		if c.onTransportError != nil {
			c.onTransportError(c.Endpoint, wrapped)
		}
		return nil, wrapped
	}
	return stream, err
}

// Close releases the underlying *grpc.ClientConn.
func (c *Conn) Close() error {
	return c.cc.Close()
}

// isTransportLevel reports whether err originates below the operation
// envelope: connectivity failures and deadline/cancellation from gRPC
// itself, as opposed to a status-coded operation error returned inside
// a successfully delivered response.
func isTransportLevel(err error) bool {
	return err == context.DeadlineExceeded || err == context.Canceled || grpcUnavailable(err)
}

// WithTimeout races fn against a timer, returning TimeoutExpired if the
// timer fires first; fn's own context is cancelled best-effort on
// timeout, mirroring the transport's withTimeout primitive from spec
// §4.2.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		val, err := fn(tctx)
		done <- result{val, err}
	}()

	select {
	case <-tctx.Done():
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, &xerrors.TimeoutExpired{Message: "withTimeout: deadline exceeded after " + d.String()}
	case r := <-done:
		return r.val, r.err
	}
}
