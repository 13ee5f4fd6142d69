// Package discovery implements the endpoint discovery service (spec
// component C3): periodic ListEndpoints refresh, added/removed event
// publication, pessimization bookkeeping, and least-loaded endpoint
// selection. Grounded on the teacher's internal/discovery/discovery.go
// (client shape), cluster.go (diffEndpoints), and internal/repeater
// (periodic + force refresh).
package discovery

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nexusdb/nexus-go-sdk/internal/endpoint"
	"github.com/nexusdb/nexus-go-sdk/internal/repeater"
	"github.com/nexusdb/nexus-go-sdk/internal/wire"
	"github.com/nexusdb/nexus-go-sdk/log"
	"github.com/nexusdb/nexus-go-sdk/log/kv"
)

const (
	// DefaultPeriod is ENDPOINT_DISCOVERY_PERIOD from spec §4.3.
	DefaultPeriod = 60 * time.Second
	// DefaultPessimizationDelay is a small multiple of DefaultPeriod.
	DefaultPessimizationDelay = 60 * time.Second
)

// OnEndpointsChanged is invoked with the endpoints added and removed by
// a refresh, letting consumers (e.g. per-endpoint session factories)
// invalidate caches.
type OnEndpointsChanged func(added, removed []*endpoint.Endpoint)

// Service maintains the current endpoint set for one database.
type Service struct {
	client             wire.DiscoveryServiceClient
	database           string
	ssl                bool
	pessimizationDelay time.Duration
	clock              clockwork.Clock
	logger             log.Logger
	onChanged          OnEndpointsChanged

	mu        sync.RWMutex
	endpoints []*endpoint.Endpoint
	closed    bool

	ready     chan struct{}
	readyOnce sync.Once

	repeater repeater.Repeater
}

// Option configures a Service built by New.
type Option func(*Service)

func WithPessimizationDelay(d time.Duration) Option {
	return func(s *Service) { s.pessimizationDelay = d }
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithOnEndpointsChanged(f OnEndpointsChanged) Option {
	return func(s *Service) { s.onChanged = f }
}

// New starts a Service, issuing an immediate ListEndpoints refresh and
// then one every period.
func New(client wire.DiscoveryServiceClient, database string, ssl bool, period time.Duration, opts ...Option) *Service {
	s := &Service{
		client:             client,
		database:           database,
		ssl:                ssl,
		pessimizationDelay: DefaultPessimizationDelay,
		clock:              clockwork.NewRealClock(),
		logger:             log.Nop(),
		ready:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if period == 0 {
		period = DefaultPeriod
	}
	s.repeater = repeater.New(period, s.refresh, repeater.WithClock(s.clock))
	return s
}

func (s *Service) refresh(ctx context.Context) error {
	resp, err := s.client.ListEndpoints(ctx, &wire.ListEndpointsRequest{Database: s.database})
	if err != nil {
		s.logger.Log(ctx, "discovery: ListEndpoints failed", kv.Error(err))
		return err
	}

	var result wire.ListEndpointsResult
	if err := wire.DecodeResult(resp.Operation, &result); err != nil {
		return err
	}

	s.mu.Lock()
	existing := make(map[string]*endpoint.Endpoint, len(s.endpoints))
	for _, e := range s.endpoints {
		existing[e.Key()] = e
	}

	next := make([]*endpoint.Endpoint, 0, len(result.Endpoints))
	for _, e := range result.Endpoints {
		if e.Ssl != s.ssl {
			continue
		}
		ep := endpoint.New(e.Address, int(e.Port), s.database, e.LoadFactor)
		if prior, ok := existing[ep.Key()]; ok {
			// Reuse the same object so pessimization state set on it
			// (possibly via a pointer a conn.Conn is still holding)
			// survives this refresh instead of being discarded with a
			// freshly constructed Endpoint.
			prior.UpdateLoadFactor(e.LoadFactor)
			ep = prior
		}
		next = append(next, ep)
	}

	prev := s.endpoints
	s.endpoints = next
	s.mu.Unlock()

	if s.onChanged != nil {
		added, removed := endpoint.Diff(prev, next)
		if len(added) > 0 || len(removed) > 0 {
			s.onChanged(added, removed)
		}
	}

	s.readyOnce.Do(func() { close(s.ready) })
	return nil
}

// Ready resolves true once the first successful refresh completes,
// false if timeout elapses first.
func (s *Service) Ready(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.ready:
		return true
	case <-t.C:
		return false
	}
}

// GetEndpoint returns a non-pessimized endpoint chosen by lowest
// loadFactor, ties broken randomly. If every known endpoint is
// pessimized, it forces an immediate refresh and then picks the best
// available anyway (spec §4.3 selection order).
func (s *Service) GetEndpoint() (*endpoint.Endpoint, error) {
	s.mu.RLock()
	closed := s.closed
	endpoints := s.endpoints
	s.mu.RUnlock()

	if closed {
		return nil, errDestroyed
	}
	if len(endpoints) == 0 {
		return nil, errNoEndpoints
	}

	now := s.clock.Now()
	e, ok := bestEndpoint(endpoints, now)
	if ok {
		return e, nil
	}

	// All pessimized: force a refresh and fall back to the least-bad
	// endpoint regardless of pessimization.
	s.repeater.Force()
	e, _ = bestEndpoint(endpoints, now)
	return e, nil
}

// Pessimize marks e undesirable for routing for pessimizationDelay.
func (s *Service) Pessimize(e *endpoint.Endpoint) {
	e.Pessimize(s.clock.Now(), s.pessimizationDelay)
}

// Destroy cancels the periodic refresh and any in-flight refresh.
// Subsequent GetEndpoint calls fail.
func (s *Service) Destroy() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.repeater.Stop()
}

func bestEndpoint(endpoints []*endpoint.Endpoint, now time.Time) (*endpoint.Endpoint, bool) {
	var (
		candidates []*endpoint.Endpoint
		best       float32
	)
	for _, e := range endpoints {
		if e.IsPessimized(now) {
			continue
		}
		lf := e.LoadFactor()
		switch {
		case len(candidates) == 0 || lf < best:
			candidates = []*endpoint.Endpoint{e}
			best = lf
		case lf == best:
			candidates = append(candidates, e)
		}
	}
	if len(candidates) > 0 {
		return candidates[rand.Intn(len(candidates))], true
	}

	// nothing is eligible: pick lowest loadFactor regardless of
	// pessimization, so callers always get something to try.
	if len(endpoints) == 0 {
		return nil, false
	}
	choice := endpoints[0]
	for _, e := range endpoints[1:] {
		if e.LoadFactor() < choice.LoadFactor() {
			choice = e
		}
	}
	return choice, false
}

var (
	errDestroyed   = errors.New("discovery: service has been destroyed")
	errNoEndpoints = errors.New("discovery: no endpoints known yet")
)
