// Package nexus is the client-side runtime of a gRPC-based distributed
// SQL database driver: endpoint discovery, a bounded session pool, a
// declarative retry engine, and pluggable auth, grounded throughout on
// the teacher's root driver.go (Driver/Open, connection pool of
// *conn.Conn keyed by endpoint, graceful Close).
package nexus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	grpccredentials "google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nexusdb/nexus-go-sdk/dsn"
	"github.com/nexusdb/nexus-go-sdk/internal/conn"
	"github.com/nexusdb/nexus-go-sdk/internal/discovery"
	"github.com/nexusdb/nexus-go-sdk/internal/endpoint"
	"github.com/nexusdb/nexus-go-sdk/internal/meta"
	"github.com/nexusdb/nexus-go-sdk/internal/pool"
	"github.com/nexusdb/nexus-go-sdk/internal/session"
	"github.com/nexusdb/nexus-go-sdk/internal/wire"
	"github.com/nexusdb/nexus-go-sdk/log"
	"github.com/nexusdb/nexus-go-sdk/log/kv"
	"github.com/nexusdb/nexus-go-sdk/scheme"
	"github.com/nexusdb/nexus-go-sdk/table"
)

// Driver is the entry point: endpoint discovery, a shared session pool,
// and the public Table/Scheme clients built on top of it.
type Driver struct {
	database  string
	meta      *meta.Meta
	logger    log.Logger
	dialOpts  []grpc.DialOption
	discovery *discovery.Service

	connsMu sync.Mutex
	conns   map[string]*conn.Conn

	pool *pool.Pool

	Table  *table.Client
	Scheme *scheme.Client
}

// Open parses dsn, dials a bootstrap connection to discover the
// cluster's endpoints, and returns a ready Driver once the first
// discovery refresh completes. If dialTimeout elapses first, Open stops
// discovery and returns an error.
func Open(ctx context.Context, connStr string, opts ...Option) (*Driver, error) {
	info, err := dsn.Parse(connStr)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Driver{
		database: info.Database,
		meta:     meta.New(info.Database, cfg.credentials),
		logger:   cfg.logger,
		dialOpts: dialOptions(info, cfg),
		conns:    make(map[string]*conn.Conn),
	}

	bootstrapEp := endpoint.New(info.Host, info.Port, info.Database, 0)
	bootstrapConn, err := d.connFor(ctx, bootstrapEp)
	if err != nil {
		return nil, err
	}

	d.discovery = discovery.New(
		wire.NewDiscoveryServiceClient(bootstrapConn),
		info.Database,
		info.Secure,
		cfg.discoveryInterval,
		discovery.WithPessimizationDelay(cfg.pessimizationDelay),
		discovery.WithLogger(cfg.logger),
	)

	if !d.discovery.Ready(cfg.dialTimeout) {
		d.discovery.Destroy()
		return nil, fmt.Errorf("nexus: discovery did not become ready within %s", cfg.dialTimeout)
	}

	sessionFactory := func(ctx context.Context) (*session.Session, error) {
		ep, err := d.discovery.GetEndpoint()
		if err != nil {
			return nil, err
		}
		cc, err := d.connFor(ctx, ep)
		if err != nil {
			return nil, err
		}
		return session.NewFactory(ep, cc).Create(ctx)
	}

	d.pool = pool.New(
		sessionFactory,
		cfg.poolMinSize,
		cfg.poolMaxSize,
		cfg.poolKeepAlivePeriod,
		pool.WithLogger(cfg.logger),
	)

	d.Table = table.NewClient(d.pool, cfg.retryParams, cfg.poolAcquireTimeout)
	d.Scheme = scheme.NewClient(bootstrapConn, cfg.retryParams)

	return d, nil
}

// connFor returns the cached *conn.Conn for ep, dialing one the first
// time it is seen (double-checked locking, the same shape as the
// teacher's own connection-pool map).
func (d *Driver) connFor(ctx context.Context, ep *endpoint.Endpoint) (*conn.Conn, error) {
	key := ep.Key()

	d.connsMu.Lock()
	if c, ok := d.conns[key]; ok {
		d.connsMu.Unlock()
		return c, nil
	}
	d.connsMu.Unlock()

	c, err := conn.New(ctx, ep, d.meta, d.onTransportError, d.dialOpts...)
	if err != nil {
		return nil, err
	}

	d.connsMu.Lock()
	defer d.connsMu.Unlock()
	if existing, ok := d.conns[key]; ok {
		_ = c.Close()
		return existing, nil
	}
	d.conns[key] = c
	return c, nil
}

// onTransportError pessimizes the offending endpoint so discovery stops
// preferring it until the pessimization window elapses.
func (d *Driver) onTransportError(e *endpoint.Endpoint, err error) {
	d.logger.Log(context.Background(), "nexus: transport error, pessimizing endpoint", kv.String("endpoint", e.Addr()), kv.Error(err))
	if d.discovery != nil {
		d.discovery.Pessimize(e)
	}
}

// Ready reports whether discovery has completed at least one refresh,
// waiting up to timeout. Open has already waited for the first refresh,
// so on a Driver returned by Open this reports true at once.
func (d *Driver) Ready(timeout time.Duration) bool {
	return d.discovery.Ready(timeout)
}

// GetEndpoint exposes the current best endpoint, mainly for diagnostics.
func (d *Driver) GetEndpoint() (*endpoint.Endpoint, error) {
	return d.discovery.GetEndpoint()
}

// Close releases every resource Open acquired: the session pool, the
// discovery service, and every dialed connection.
func (d *Driver) Close(ctx context.Context) error {
	var firstErr error
	if err := d.pool.Destroy(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	d.discovery.Destroy()

	d.connsMu.Lock()
	defer d.connsMu.Unlock()
	for _, c := range d.conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func dialOptions(info dsn.Info, cfg config) []grpc.DialOption {
	opts := make([]grpc.DialOption, 0, len(cfg.dialOptions)+2)
	opts = append(opts, grpc.WithBlock())

	// A transport-credentials option supplied via WithGRPCDialOptions is
	// appended after this default and so takes precedence with it.
	if info.Secure {
		opts = append(opts, grpc.WithTransportCredentials(grpccredentials.NewTLS(nil)))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	opts = append(opts, cfg.dialOptions...)
	return opts
}
