// Package pool implements the bounded session pool (spec component C6):
// per-endpoint creation via an injected factory, a FIFO waiter queue
// with timeout, prepopulation, a keepalive scheduler, and broken-session
// eviction. Grounded on the teacher's table/pool.go (SessionPool):
// index map + idle list + waiter queue + keeper goroutine.
package pool

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/nexusdb/nexus-go-sdk/internal/session"
	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
	"github.com/nexusdb/nexus-go-sdk/log"
	"github.com/nexusdb/nexus-go-sdk/log/kv"
)

// Factory creates one new session, on whatever endpoint the driver's
// discovery/balancing decides is best. create() is retryable and
// pessimizable by the caller, per spec §4.4.
type Factory func(ctx context.Context) (*session.Session, error)

const (
	DefaultMinSize             = 5
	DefaultMaxSize             = 20
	DefaultKeepAlivePeriod     = 5 * time.Minute
	DefaultCreateSessionTimeout = 5 * time.Second
	DefaultDeleteTimeout        = 5 * time.Second
	DefaultKeepAliveTimeout     = 5 * time.Second
)

// Stats is an idle/in-use/limit snapshot, SPEC_FULL.md §7's supplemented
// Pool.Stats() feature.
type Stats struct {
	Idle    int
	InUse   int
	MinSize int
	MaxSize int
}

// Pool is the bounded session pool.
type Pool struct {
	factory Factory
	minSize int
	maxSize int

	createSessionTimeout time.Duration
	deleteTimeout        time.Duration
	keepAliveTimeout     time.Duration
	keepAlivePeriod      time.Duration

	clock  clockwork.Clock
	logger log.Logger

	mu                   sync.Mutex
	sessions             map[*session.Session]struct{}
	idle                 *list.List // of *session.Session
	idleElem             map[*session.Session]*list.Element
	waiters              *list.List // of chan *session.Session
	newSessionsRequested int
	sessionsBeingDeleted int
	closed               bool

	keeperStop chan struct{}
	keeperDone chan struct{}
}

// Option configures a Pool built by New.
type Option func(*Pool)

func WithClock(c clockwork.Clock) Option           { return func(p *Pool) { p.clock = c } }
func WithLogger(l log.Logger) Option                { return func(p *Pool) { p.logger = l } }
func WithCreateSessionTimeout(d time.Duration) Option {
	return func(p *Pool) { p.createSessionTimeout = d }
}
func WithDeleteTimeout(d time.Duration) Option { return func(p *Pool) { p.deleteTimeout = d } }
func WithKeepAliveTimeout(d time.Duration) Option {
	return func(p *Pool) { p.keepAliveTimeout = d }
}

// New builds a Pool and schedules prepopulation of minSize sessions
// (fire-and-forget; failures are not fatal to the pool).
func New(factory Factory, minSize, maxSize int, keepAlivePeriod time.Duration, opts ...Option) *Pool {
	if minSize == 0 {
		minSize = DefaultMinSize
	}
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}
	if keepAlivePeriod == 0 {
		keepAlivePeriod = DefaultKeepAlivePeriod
	}

	p := &Pool{
		factory:              factory,
		minSize:              minSize,
		maxSize:              maxSize,
		keepAlivePeriod:      keepAlivePeriod,
		createSessionTimeout: DefaultCreateSessionTimeout,
		deleteTimeout:        DefaultDeleteTimeout,
		keepAliveTimeout:     DefaultKeepAliveTimeout,
		clock:                clockwork.NewRealClock(),
		logger:               log.Nop(),
		sessions:             make(map[*session.Session]struct{}),
		idle:                 list.New(),
		idleElem:             make(map[*session.Session]*list.Element),
		waiters:              list.New(),
		keeperStop:           make(chan struct{}),
		keeperDone:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	go p.keeper()
	p.prepopulate()

	return p
}

func (p *Pool) prepopulate() {
	for i := 0; i < p.minSize; i++ {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), p.createSessionTimeout)
			defer cancel()
			s, err := p.createAndRegister(ctx)
			if err != nil {
				p.logger.Log(ctx, "pool: prepopulation create failed", kv.Error(err))
				return
			}
			p.onRelease(s)
		}()
	}
}

// errSessionPoolOverflow is returned when the pool is already at
// maxSize and no idle session is available.
var errSessionPoolOverflow = fmt.Errorf("pool: session pool overflow")

var errPoolClosed = fmt.Errorf("pool: pool has been closed")

// enoughSpace reports whether one more session may be created without
// exceeding maxSize, per spec §3's invariant
// |sessions| + newSessionsRequested - sessionsBeingDeleted <= maxLimit.
func (p *Pool) enoughSpace() bool {
	return len(p.sessions)+p.newSessionsRequested-p.sessionsBeingDeleted < p.maxSize
}

func (p *Pool) createAndRegister(ctx context.Context) (*session.Session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errPoolClosed
	}
	if !p.enoughSpace() {
		p.mu.Unlock()
		return nil, errSessionPoolOverflow
	}
	p.newSessionsRequested++
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.createSessionTimeout)
	defer cancel()
	s, err := p.factory(ctx)

	p.mu.Lock()
	p.newSessionsRequested--
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	if p.closed {
		p.mu.Unlock()
		_ = s.Delete(context.Background())
		return nil, errPoolClosed
	}
	s.SetListeners(p.onRelease, p.onBroken)
	p.sessions[s] = struct{}{}
	p.mu.Unlock()

	return s, nil
}

// Acquire implements spec §4.6's acquisition algorithm: scan idle, else
// create if there's room, else enqueue a waiter with an optional
// timeout.
func (p *Pool) Acquire(ctx context.Context, timeout time.Duration) (*session.Session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errPoolClosed
	}
	if s := p.popIdleLocked(); s != nil {
		p.mu.Unlock()
		s.Acquire()
		return s, nil
	}
	if p.enoughSpace() {
		p.mu.Unlock()
		s, err := p.createAndRegister(ctx)
		if err != nil {
			if err == errSessionPoolOverflow {
				return p.waitForSession(ctx, timeout)
			}
			return nil, err
		}
		s.Acquire()
		return s, nil
	}

	ch := make(chan *session.Session, 1)
	elem := p.waiters.PushBack(ch)
	p.mu.Unlock()

	return p.awaitWaiter(ctx, elem, ch, timeout)
}

func (p *Pool) waitForSession(ctx context.Context, timeout time.Duration) (*session.Session, error) {
	p.mu.Lock()
	if s := p.popIdleLocked(); s != nil {
		p.mu.Unlock()
		s.Acquire()
		return s, nil
	}
	ch := make(chan *session.Session, 1)
	elem := p.waiters.PushBack(ch)
	p.mu.Unlock()
	return p.awaitWaiter(ctx, elem, ch, timeout)
}

func (p *Pool) awaitWaiter(ctx context.Context, elem *list.Element, ch chan *session.Session, timeout time.Duration) (*session.Session, error) {
	var timer *time.Timer
	var timerC <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case s, ok := <-ch:
		if !ok || s == nil {
			return nil, errPoolClosed
		}
		s.Acquire()
		return s, nil
	case <-timerC:
		p.removeWaiterLocked(elem)
		return nil, &xerrors.TimeoutExpired{
			Message: fmt.Sprintf("No session became available within timeout of %d ms", timeout.Milliseconds()),
		}
	case <-ctx.Done():
		p.removeWaiterLocked(elem)
		return nil, ctx.Err()
	}
}

func (p *Pool) removeWaiterLocked(elem *list.Element) {
	p.mu.Lock()
	p.waiters.Remove(elem)
	p.mu.Unlock()

	// onRelease may have handed a session to this waiter just before it
	// gave up; pass that session on instead of losing it.
	select {
	case s, ok := <-elem.Value.(chan *session.Session):
		if ok && s != nil {
			p.onRelease(s)
		}
	default:
	}
}

func (p *Pool) popIdleLocked() *session.Session {
	front := p.idle.Front()
	if front == nil {
		return nil
	}
	s := front.Value.(*session.Session)
	p.idle.Remove(front)
	delete(p.idleElem, s)
	return s
}

// onRelease hands s to the head waiter if one is queued, otherwise
// parks it idle. Installed as this session's SESSION_RELEASE
// subscription at creation time.
func (p *Pool) onRelease(s *session.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if front := p.waiters.Front(); front != nil {
		p.waiters.Remove(front)
		ch := front.Value.(chan *session.Session)
		ch <- s
		return
	}
	elem := p.idle.PushBack(s)
	p.idleElem[s] = elem
}

// onBroken evicts s asynchronously (spec §4.6 broken-session eviction).
// Installed as this session's SESSION_BROKEN subscription.
func (p *Pool) onBroken(s *session.Session) {
	p.mu.Lock()
	if elem, ok := p.idleElem[s]; ok {
		p.idle.Remove(elem)
		delete(p.idleElem, s)
	}
	p.sessionsBeingDeleted++
	p.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.deleteTimeout)
		defer cancel()
		if err := s.Delete(ctx); err != nil {
			p.logger.Log(ctx, "pool: delete of broken session failed", kv.Error(err))
		}

		p.mu.Lock()
		delete(p.sessions, s)
		p.sessionsBeingDeleted--
		p.mu.Unlock()
	}()
}

// WithSession acquires a session, runs fn, releases on success and
// deletes on failure (to avoid leaking a potentially-broken session),
// then rethrows. No retry happens at this layer by design — see
// DESIGN.md's Open Questions: callers compose retry.Do around
// WithSession themselves.
func (p *Pool) WithSession(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, s *session.Session) error) error {
	s, err := p.Acquire(ctx, timeout)
	if err != nil {
		return err
	}

	if err := fn(ctx, s); err != nil {
		p.discard(s)
		return err
	}
	s.Release()
	return nil
}

// discard removes s from circulation without waiting for the keepalive
// scheduler to notice it is broken.
func (p *Pool) discard(s *session.Session) {
	p.mu.Lock()
	p.sessionsBeingDeleted++
	p.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.deleteTimeout)
		defer cancel()
		_ = s.Delete(ctx)

		p.mu.Lock()
		delete(p.sessions, s)
		p.sessionsBeingDeleted--
		p.mu.Unlock()
	}()
}

// keeper fires KeepAlive on every current session once per
// keepAlivePeriod, fanned out with a bounded errgroup.
func (p *Pool) keeper() {
	defer close(p.keeperDone)

	ticker := p.clock.NewTicker(p.keepAlivePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-p.keeperStop:
			return
		case <-ticker.Chan():
			p.keepAliveAll()
		}
	}
}

func (p *Pool) keepAliveAll() {
	p.mu.Lock()
	targets := make([]*session.Session, 0, len(p.sessions))
	for s := range p.sessions {
		if st := s.Status(); st == session.Broken || st == session.Deleted {
			continue
		}
		targets = append(targets, s)
	}
	p.mu.Unlock()

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(8)
	for _, s := range targets {
		s := s
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, p.keepAliveTimeout)
			defer cancel()
			if err := s.KeepAlive(ctx); err != nil {
				p.logger.Log(ctx, "pool: keepalive failed", kv.String("session", s.ID()), kv.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Stats returns an idle/in-use/limit snapshot.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Idle:    p.idle.Len(),
		InUse:   len(p.sessions) - p.idle.Len(),
		MinSize: p.minSize,
		MaxSize: p.maxSize,
	}
}

// Destroy cancels the keepalive timer and awaits deletion of every
// current session; after Destroy, all operations fail.
func (p *Pool) Destroy(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	sessions := make([]*session.Session, 0, len(p.sessions))
	for s := range p.sessions {
		sessions = append(sessions, s)
	}
	for e := p.waiters.Front(); e != nil; e = e.Next() {
		close(e.Value.(chan *session.Session))
	}
	p.waiters.Init()
	p.mu.Unlock()

	close(p.keeperStop)
	<-p.keeperDone

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, s := range sessions {
		s := s
		g.Go(func() error {
			return s.Delete(gctx)
		})
	}
	return g.Wait()
}
