// Package session implements the per-endpoint session factory and the
// stateful session handle (spec components C4+C5): DDL, transaction,
// and query operations over a single server-side session, grounded on
// the teacher's table/session.go and the Session interface in
// table/table.go.
package session

import (
	"context"
	stdpath "path"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"

	"github.com/nexusdb/nexus-go-sdk/internal/endpoint"
	"github.com/nexusdb/nexus-go-sdk/internal/wire"
	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

// Status is the session's lifecycle state, spec §3/§4.5.
type Status int32

const (
	Free Status = iota
	Acquired
	Broken
	Deleted
)

func (s Status) String() string {
	switch s {
	case Free:
		return "free"
	case Acquired:
		return "acquired"
	case Broken:
		return "broken"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Session is a stateful handle to a server-side session bound for life
// to the endpoint it was created on.
type Session struct {
	id       string
	endpoint *endpoint.Endpoint
	table    wire.TableServiceClient

	status    atomic.Int32
	lastUsage atomic.Int64

	// onRelease/onBroken are installed exactly once, by the pool, right
	// after creation — no back-pointer to the pool is needed, the
	// session simply notifies whoever subscribed.
	listenersMu sync.Mutex
	onRelease   func(*Session)
	onBroken    func(*Session)

	deleteOnce sync.Once
}

// New wraps cc (already bound to ep) as a Session with the given
// server-assigned id. Status starts Free.
func New(id string, ep *endpoint.Endpoint, cc grpc.ClientConnInterface) *Session {
	s := &Session{
		id:       id,
		endpoint: ep,
		table:    wire.NewTableServiceClient(cc),
	}
	s.status.Store(int32(Free))
	s.lastUsage.Store(time.Now().Unix())
	return s
}

// SetListeners installs the pool's subscription to this session's
// lifecycle events. Must be called at most once, before the session is
// handed to any caller.
func (s *Session) SetListeners(onRelease, onBroken func(*Session)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.onRelease = onRelease
	s.onBroken = onBroken
}

func (s *Session) ID() string                { return s.id }
func (s *Session) Endpoint() *endpoint.Endpoint { return s.endpoint }
func (s *Session) Status() Status            { return Status(s.status.Load()) }
func (s *Session) LastUsage() time.Time      { return time.Unix(s.lastUsage.Load(), 0) }

func (s *Session) touch() { s.lastUsage.Store(time.Now().Unix()) }

// composePath prefixes a caller-supplied relative path with this
// session's database (spec §4.5: "path composed as database/path"),
// the way every table op but keepAlive addresses its target.
func (s *Session) composePath(path string) string {
	return stdpath.Join(s.endpoint.Database, path)
}

// Acquire transitions Free -> Acquired. Callers (the pool) must already
// hold whatever lock protects the pool's view of this session's status;
// Acquire itself only guards against acquiring a non-Free session.
func (s *Session) Acquire() bool {
	return s.status.CompareAndSwap(int32(Free), int32(Acquired))
}

// Release transitions Acquired -> Free and notifies the pool so it can
// hand the session to a waiter (SESSION_RELEASE, spec §4.5).
func (s *Session) Release() {
	if !s.status.CompareAndSwap(int32(Acquired), int32(Free)) {
		return
	}
	s.listenersMu.Lock()
	onRelease := s.onRelease
	s.listenersMu.Unlock()
	if onRelease != nil {
		onRelease(s)
	}
}

// markBroken transitions to Broken (from any non-terminal state) and
// notifies the pool (SESSION_BROKEN, spec §4.5).
func (s *Session) markBroken() {
	for {
		cur := Status(s.status.Load())
		if cur == Broken || cur == Deleted {
			return
		}
		if s.status.CompareAndSwap(int32(cur), int32(Broken)) {
			break
		}
	}
	s.listenersMu.Lock()
	onBroken := s.onBroken
	s.listenersMu.Unlock()
	if onBroken != nil {
		onBroken(s)
	}
}

// Delete is idempotent: a no-op once already Deleted, otherwise it sets
// Deleted and issues DeleteSession.
func (s *Session) Delete(ctx context.Context) error {
	var err error
	s.deleteOnce.Do(func() {
		s.status.Store(int32(Deleted))
		_, err = s.table.DeleteSession(ctx, &wire.DeleteSessionRequest{
			SessionId:       s.id,
			OperationParams: syncParams(0),
		})
	})
	return err
}

func syncParams(timeout time.Duration) *wire.OperationParams {
	return &wire.OperationParams{OperationTimeout: timeout, Mode: wire.ModeSync}
}

// classify turns a completed Operation into an error (nil if the status
// was success), marking the session Broken when the server tagged the
// failure as session-scoped.
func (s *Session) classify(op *wire.Operation) error {
	if op == nil {
		return &xerrors.EmptyPayload{Field: "operation"}
	}
	code := xerrors.StatusCode(op.Status)
	if code == xerrors.StatusUnknown && op.Ready {
		return nil
	}
	opErr := &xerrors.OpError{Code: code, Issues: op.Issues}
	if opErr.IsSessionBroken() {
		s.markBroken()
	}
	return opErr
}

// KeepAlive pings the session; a bad-session status marks it Broken so
// the pool can evict and replace it (spec §4.6 keepalive scheduler).
func (s *Session) KeepAlive(ctx context.Context) error {
	resp, err := s.table.KeepAlive(ctx, &wire.KeepAliveRequest{
		SessionId:       s.id,
		OperationParams: syncParams(0),
	})
	if err != nil {
		s.markBroken()
		return err
	}
	if err := s.classify(resp.Operation); err != nil {
		return err
	}
	s.touch()
	return nil
}

// CreateTable composes path as database/path per spec §4.5.
func (s *Session) CreateTable(ctx context.Context, path string, desc *wire.TableDescription) error {
	resp, err := s.table.CreateTable(ctx, &wire.CreateTableRequest{
		SessionId:       s.id,
		Path:            s.composePath(path),
		Columns:         desc.Columns,
		PrimaryKey:      desc.PrimaryKey,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return err
	}
	return s.classify(resp.Operation)
}

// DropTable tolerates a scheme-error status as success-equivalent, so
// dropping an already-absent table is idempotent (spec §8 law).
func (s *Session) DropTable(ctx context.Context, path string) error {
	resp, err := s.table.DropTable(ctx, &wire.DropTableRequest{
		SessionId:       s.id,
		Path:            s.composePath(path),
		OperationParams: syncParams(0),
	})
	if err != nil {
		return err
	}
	if err := s.classify(resp.Operation); err != nil && !xerrors.IsSchemeError(err) {
		return err
	}
	return nil
}

func (s *Session) AlterTable(ctx context.Context, path string, addColumns []*wire.Column, dropColumns []string) error {
	resp, err := s.table.AlterTable(ctx, &wire.AlterTableRequest{
		SessionId:       s.id,
		Path:            s.composePath(path),
		AddColumns:      addColumns,
		DropColumns:     dropColumns,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return err
	}
	return s.classify(resp.Operation)
}

func (s *Session) CopyTable(ctx context.Context, src, dst string) error {
	resp, err := s.table.CopyTable(ctx, &wire.CopyTableRequest{
		SessionId:       s.id,
		SourcePath:      s.composePath(src),
		DestinationPath: s.composePath(dst),
		OperationParams: syncParams(0),
	})
	if err != nil {
		return err
	}
	return s.classify(resp.Operation)
}

func (s *Session) CopyTables(ctx context.Context, items []*wire.CopyTableRequest) error {
	composed := make([]*wire.CopyTableRequest, len(items))
	for i, item := range items {
		c := *item
		c.SourcePath = s.composePath(item.SourcePath)
		c.DestinationPath = s.composePath(item.DestinationPath)
		composed[i] = &c
	}
	resp, err := s.table.CopyTables(ctx, &wire.CopyTablesRequest{
		SessionId:       s.id,
		Items:           composed,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return err
	}
	return s.classify(resp.Operation)
}

func (s *Session) RenameTables(ctx context.Context, items []*wire.RenameTableItem) error {
	composed := make([]*wire.RenameTableItem, len(items))
	for i, item := range items {
		c := *item
		c.SourcePath = s.composePath(item.SourcePath)
		c.DestinationPath = s.composePath(item.DestinationPath)
		composed[i] = &c
	}
	resp, err := s.table.RenameTables(ctx, &wire.RenameTablesRequest{
		SessionId:       s.id,
		Items:           composed,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return err
	}
	return s.classify(resp.Operation)
}

func (s *Session) DescribeTable(ctx context.Context, path string) (*wire.TableDescription, error) {
	resp, err := s.table.DescribeTable(ctx, &wire.DescribeTableRequest{
		SessionId:       s.id,
		Path:            s.composePath(path),
		OperationParams: syncParams(0),
	})
	if err != nil {
		return nil, err
	}
	if err := s.classify(resp.Operation); err != nil {
		return nil, err
	}
	var result wire.DescribeTableResult
	if err := wire.DecodeResult(resp.Operation, &result); err != nil {
		return nil, err
	}
	return result.Self, nil
}

func (s *Session) DescribeTableOptions(ctx context.Context) (*wire.DescribeTableOptionsResult, error) {
	resp, err := s.table.DescribeTableOptions(ctx, &wire.DescribeTableOptionsRequest{
		OperationParams: syncParams(0),
	})
	if err != nil {
		return nil, err
	}
	if err := s.classify(resp.Operation); err != nil {
		return nil, err
	}
	var result wire.DescribeTableOptionsResult
	if err := wire.DecodeResult(resp.Operation, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BeginTransaction fails if the server returns an empty txMeta (spec
// §4.5).
func (s *Session) BeginTransaction(ctx context.Context, settings *wire.TransactionSettings) (string, error) {
	resp, err := s.table.BeginTransaction(ctx, &wire.BeginTransactionRequest{
		SessionId:       s.id,
		TxSettings:      settings,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return "", err
	}
	if err := s.classify(resp.Operation); err != nil {
		return "", err
	}
	var result wire.BeginTransactionResult
	if err := wire.DecodeResult(resp.Operation, &result); err != nil {
		return "", err
	}
	if result.TxMeta == nil || result.TxMeta.Id == "" {
		return "", &xerrors.EmptyPayload{Field: "txMeta"}
	}
	return result.TxMeta.Id, nil
}

func (s *Session) CommitTransaction(ctx context.Context, txID string) error {
	resp, err := s.table.CommitTransaction(ctx, &wire.CommitTransactionRequest{
		SessionId:       s.id,
		TxId:            txID,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return err
	}
	return s.classify(resp.Operation)
}

func (s *Session) RollbackTransaction(ctx context.Context, txID string) error {
	resp, err := s.table.RollbackTransaction(ctx, &wire.RollbackTransactionRequest{
		SessionId:       s.id,
		TxId:            txID,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return err
	}
	return s.classify(resp.Operation)
}

func (s *Session) PrepareQuery(ctx context.Context, yql string) (string, error) {
	resp, err := s.table.PrepareDataQuery(ctx, &wire.PrepareDataQueryRequest{
		SessionId:       s.id,
		YqlText:         yql,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return "", err
	}
	if err := s.classify(resp.Operation); err != nil {
		return "", err
	}
	var result wire.PrepareDataQueryResult
	if err := wire.DecodeResult(resp.Operation, &result); err != nil {
		return "", err
	}
	return result.QueryId, nil
}

// ExecuteQuery accepts either a prepared queryId or raw YQL text, plus an
// optional tx control; wire.AutoTx is used when txControl is nil (spec
// §4.5's AUTO_TX).
func (s *Session) ExecuteQuery(
	ctx context.Context,
	query *wire.Query,
	params map[string]any,
	txControl *wire.TransactionControl,
) (*wire.ExecuteDataQueryResult, error) {
	if txControl == nil {
		txControl = wire.AutoTx
	}
	resp, err := s.table.ExecuteDataQuery(ctx, &wire.ExecuteDataQueryRequest{
		SessionId:       s.id,
		TxControl:       txControl,
		Query:           query,
		Parameters:      params,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return nil, err
	}
	if err := s.classify(resp.Operation); err != nil {
		return nil, err
	}
	var result wire.ExecuteDataQueryResult
	if err := wire.DecodeResult(resp.Operation, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Explain returns a query's AST/plan without executing it (supplemented
// feature, SPEC_FULL.md §7).
func (s *Session) Explain(ctx context.Context, yql string) (*wire.ExplainDataQueryResult, error) {
	resp, err := s.table.ExplainDataQuery(ctx, &wire.ExplainDataQueryRequest{
		SessionId:       s.id,
		YqlText:         yql,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return nil, err
	}
	if err := s.classify(resp.Operation); err != nil {
		return nil, err
	}
	var result wire.ExplainDataQueryResult
	if err := wire.DecodeResult(resp.Operation, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Session) ExecuteSchemeQuery(ctx context.Context, yql string) error {
	resp, err := s.table.ExecuteSchemeQuery(ctx, &wire.ExecuteSchemeQueryRequest{
		SessionId:       s.id,
		YqlText:         yql,
		OperationParams: syncParams(0),
	})
	if err != nil {
		return err
	}
	return s.classify(resp.Operation)
}
