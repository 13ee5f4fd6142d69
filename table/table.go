// Package table is the public DDL/DML surface (spec §4.5/§4.6): a
// Client composes the session pool and retry engine so callers never
// see a raw *session.Session, grounded on the teacher's table/table.go
// (the Client/Session interface split) and table/pool.go (retryBackoff,
// Client.Do).
package table

import (
	"context"
	"time"

	"github.com/nexusdb/nexus-go-sdk/internal/pool"
	"github.com/nexusdb/nexus-go-sdk/internal/session"
	"github.com/nexusdb/nexus-go-sdk/internal/wire"
	"github.com/nexusdb/nexus-go-sdk/retry"
)

// Column describes one column of a table.
type Column struct {
	Name string
	Type string
}

// TableDescription is a table's schema, built with NewTableDescription
// and the With* options below.
type TableDescription struct {
	Columns    []Column
	PrimaryKey []string
}

// TableOption configures a TableDescription, per the teacher's
// options.CreateTableOption functional-option pattern.
type TableOption func(*TableDescription)

func WithColumn(name, typ string) TableOption {
	return func(d *TableDescription) { d.Columns = append(d.Columns, Column{Name: name, Type: typ}) }
}

func WithPrimaryKeyColumn(names ...string) TableOption {
	return func(d *TableDescription) { d.PrimaryKey = append(d.PrimaryKey, names...) }
}

func NewTableDescription(opts ...TableOption) TableDescription {
	var d TableDescription
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d TableDescription) toWire() *wire.TableDescription {
	cols := make([]*wire.Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = &wire.Column{Name: c.Name, Type: c.Type}
	}
	return &wire.TableDescription{Columns: cols, PrimaryKey: d.PrimaryKey}
}

func fromWire(wd *wire.TableDescription) TableDescription {
	if wd == nil {
		return TableDescription{}
	}
	cols := make([]Column, len(wd.Columns))
	for i, c := range wd.Columns {
		cols[i] = Column{Name: c.Name, Type: c.Type}
	}
	return TableDescription{Columns: cols, PrimaryKey: wd.PrimaryKey}
}

// TxControl selects AUTO_TX (the zero value) or an explicit transaction
// mode/commit pair, per spec §3's TransactionHandle.
type TxControl struct {
	mode     wire.TransactionMode
	commit   bool
	explicit bool
}

func SerializableReadWrite() TxControl {
	return TxControl{mode: wire.TransactionModeSerializableReadWrite, explicit: true}
}
func OnlineReadOnly() TxControl { return TxControl{mode: wire.TransactionModeOnlineReadOnly, explicit: true} }
func StaleReadOnly() TxControl  { return TxControl{mode: wire.TransactionModeStaleReadOnly, explicit: true} }

// WithCommit marks the transaction to auto-commit at statement end.
func (c TxControl) WithCommit() TxControl { c.commit = true; return c }

func (c TxControl) toWire() *wire.TransactionControl {
	if !c.explicit {
		return wire.AutoTx
	}
	return &wire.TransactionControl{
		Settings: &wire.TransactionSettings{Mode: c.mode},
		CommitTx: c.commit,
	}
}

// ResultSet is one statement's rows, spec §4.5's Result type.
type ResultSet struct {
	Columns []Column
	Rows    []map[string]any
}

// QueryResult is ExecuteDataQuery's full result: the transaction id (for
// callers chaining further statements in the same tx) plus one
// ResultSet per statement.
type QueryResult struct {
	TxID       string
	ResultSets []ResultSet
}

// ExplainResult is the supplemented Explain operation's output
// (SPEC_FULL.md §7).
type ExplainResult struct {
	QueryAST  string
	QueryPlan string
}

// Client is the public table-service surface. All operations go through
// pool.WithSession, wrapped in retry.Do, so fatal/session-broken errors
// surface directly and retryable ones are retried per Parameters.
type Client struct {
	pool          *pool.Pool
	retryParams   retry.Parameters
	acquireTimeout time.Duration
}

func NewClient(p *pool.Pool, retryParams retry.Parameters, acquireTimeout time.Duration) *Client {
	return &Client{pool: p, retryParams: retryParams, acquireTimeout: acquireTimeout}
}

// Do runs fn against a pooled session with retry applied, per spec §9's
// resolved Open Question: the pool's WithSession never retries on its
// own, callers (or this Client) compose retry.Do around it.
func (c *Client) Do(ctx context.Context, fn func(ctx context.Context, s *session.Session) error) error {
	return retry.Do(ctx, func(ctx context.Context) error {
		return c.pool.WithSession(ctx, c.acquireTimeout, fn)
	}, c.retryParams)
}

func (c *Client) CreateTable(ctx context.Context, path string, desc TableDescription) error {
	return c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		return s.CreateTable(ctx, path, desc.toWire())
	})
}

func (c *Client) DropTable(ctx context.Context, path string) error {
	return c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		return s.DropTable(ctx, path)
	})
}

func (c *Client) AlterTable(ctx context.Context, path string, addColumns []Column, dropColumns []string) error {
	return c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		add := make([]*wire.Column, len(addColumns))
		for i, col := range addColumns {
			add[i] = &wire.Column{Name: col.Name, Type: col.Type}
		}
		return s.AlterTable(ctx, path, add, dropColumns)
	})
}

func (c *Client) CopyTable(ctx context.Context, src, dst string) error {
	return c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		return s.CopyTable(ctx, src, dst)
	})
}

// CopyTables copies multiple tables atomically (supplemented feature,
// SPEC_FULL.md §7).
func (c *Client) CopyTables(ctx context.Context, srcToDst map[string]string) error {
	items := make([]*wire.CopyTableRequest, 0, len(srcToDst))
	for src, dst := range srcToDst {
		items = append(items, &wire.CopyTableRequest{SourcePath: src, DestinationPath: dst})
	}
	return c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		return s.CopyTables(ctx, items)
	})
}

// RenameItem is one source/destination pair for RenameTables.
type RenameItem struct {
	Source      string
	Destination string
	Replace     bool
}

func (c *Client) RenameTables(ctx context.Context, items []RenameItem) error {
	wireItems := make([]*wire.RenameTableItem, len(items))
	for i, it := range items {
		wireItems[i] = &wire.RenameTableItem{SourcePath: it.Source, DestinationPath: it.Destination, Replace: it.Replace}
	}
	return c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		return s.RenameTables(ctx, wireItems)
	})
}

func (c *Client) DescribeTable(ctx context.Context, path string) (TableDescription, error) {
	var desc TableDescription
	err := c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		wd, err := s.DescribeTable(ctx, path)
		if err != nil {
			return err
		}
		desc = fromWire(wd)
		return nil
	})
	return desc, err
}

func (c *Client) DescribeTableOptions(ctx context.Context) ([]string, error) {
	var presets []string
	err := c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		result, err := s.DescribeTableOptions(ctx)
		if err != nil {
			return err
		}
		presets = result.TableProfilePresets
		return nil
	})
	return presets, err
}

// ExecuteQuery runs raw YQL text under txControl (AUTO_TX by default).
func (c *Client) ExecuteQuery(ctx context.Context, yql string, params map[string]any, txControl TxControl) (QueryResult, error) {
	var out QueryResult
	err := c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		result, err := s.ExecuteQuery(ctx, &wire.Query{YqlText: yql}, params, txControl.toWire())
		if err != nil {
			return err
		}
		out = fromWireResult(result)
		return nil
	})
	return out, err
}

// PrepareQuery compiles yql once and returns a queryId for repeated
// ExecutePrepared calls.
func (c *Client) PrepareQuery(ctx context.Context, yql string) (string, error) {
	var queryID string
	err := c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		id, err := s.PrepareQuery(ctx, yql)
		if err != nil {
			return err
		}
		queryID = id
		return nil
	})
	return queryID, err
}

func (c *Client) ExecutePrepared(ctx context.Context, queryID string, params map[string]any, txControl TxControl) (QueryResult, error) {
	var out QueryResult
	err := c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		result, err := s.ExecuteQuery(ctx, &wire.Query{QueryId: queryID}, params, txControl.toWire())
		if err != nil {
			return err
		}
		out = fromWireResult(result)
		return nil
	})
	return out, err
}

// Explain returns a query's AST/plan without executing it (supplemented
// feature, SPEC_FULL.md §7).
func (c *Client) Explain(ctx context.Context, yql string) (ExplainResult, error) {
	var out ExplainResult
	err := c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		result, err := s.Explain(ctx, yql)
		if err != nil {
			return err
		}
		out = ExplainResult{QueryAST: result.QueryAst, QueryPlan: result.QueryPlan}
		return nil
	})
	return out, err
}

func (c *Client) ExecuteSchemeQuery(ctx context.Context, yql string) error {
	return c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		return s.ExecuteSchemeQuery(ctx, yql)
	})
}

// BeginTransaction opens an explicit (non-auto-commit) transaction and
// returns its id for CommitTransaction/RollbackTransaction. TxControl has
// no variant carrying an existing transaction id, and each Client call
// acquires its own pooled session, so a later call is not guaranteed to
// run on the session that began the transaction.
func (c *Client) BeginTransaction(ctx context.Context, settings TxControl) (txID string, err error) {
	err = c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		id, err := s.BeginTransaction(ctx, &wire.TransactionSettings{Mode: settings.mode})
		if err != nil {
			return err
		}
		txID = id
		return nil
	})
	return txID, err
}

func (c *Client) CommitTransaction(ctx context.Context, txID string) error {
	return c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		return s.CommitTransaction(ctx, txID)
	})
}

func (c *Client) RollbackTransaction(ctx context.Context, txID string) error {
	return c.Do(ctx, func(ctx context.Context, s *session.Session) error {
		return s.RollbackTransaction(ctx, txID)
	})
}

func fromWireResult(r *wire.ExecuteDataQueryResult) QueryResult {
	out := QueryResult{}
	if r.TxMeta != nil {
		out.TxID = r.TxMeta.Id
	}
	out.ResultSets = make([]ResultSet, len(r.ResultSets))
	for i, rs := range r.ResultSets {
		cols := make([]Column, len(rs.Columns))
		for j, c := range rs.Columns {
			cols[j] = Column{Name: c.Name, Type: c.Type}
		}
		out.ResultSets[i] = ResultSet{Columns: cols, Rows: rs.Rows}
	}
	return out
}
