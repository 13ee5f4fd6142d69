package wire

import (
	"context"

	"google.golang.org/grpc"
)

// Column describes one column of a table.
type Column struct {
	Name string
	Type string
}

// TableDescription is the wire shape of a table's schema.
type TableDescription struct {
	Columns        []*Column
	PrimaryKey     []string
}

type CreateSessionRequest struct {
	OperationParams *OperationParams
}

type CreateSessionResponse struct {
	Operation *Operation
}

type CreateSessionResult struct {
	SessionId string
}

type DeleteSessionRequest struct {
	SessionId       string
	OperationParams *OperationParams
}

type DeleteSessionResponse struct {
	Operation *Operation
}

type KeepAliveRequest struct {
	SessionId       string
	OperationParams *OperationParams
}

type KeepAliveResponse struct {
	Operation *Operation
}

type SessionStatus int32

const (
	SessionStatusUnspecified SessionStatus = iota
	SessionStatusReady
	SessionStatusBusy
)

type KeepAliveResult struct {
	SessionStatus SessionStatus
}

type CreateTableRequest struct {
	SessionId       string
	Path            string
	Columns         []*Column
	PrimaryKey      []string
	OperationParams *OperationParams
}

type CreateTableResponse struct {
	Operation *Operation
}

type DropTableRequest struct {
	SessionId       string
	Path            string
	OperationParams *OperationParams
}

type DropTableResponse struct {
	Operation *Operation
}

type AlterTableRequest struct {
	SessionId       string
	Path            string
	AddColumns      []*Column
	DropColumns     []string
	OperationParams *OperationParams
}

type AlterTableResponse struct {
	Operation *Operation
}

type CopyTableRequest struct {
	SessionId       string
	SourcePath      string
	DestinationPath string
	OmitIndexes     bool
	OperationParams *OperationParams
}

type CopyTableResponse struct {
	Operation *Operation
}

type CopyTablesRequest struct {
	SessionId       string
	Items           []*CopyTableRequest
	OperationParams *OperationParams
}

type CopyTablesResponse struct {
	Operation *Operation
}

type RenameTablesRequest struct {
	SessionId       string
	Items           []*RenameTableItem
	OperationParams *OperationParams
}

type RenameTableItem struct {
	SourcePath      string
	DestinationPath string
	Replace         bool
}

type RenameTablesResponse struct {
	Operation *Operation
}

type DescribeTableRequest struct {
	SessionId       string
	Path            string
	OperationParams *OperationParams
}

type DescribeTableResponse struct {
	Operation *Operation
}

type DescribeTableResult struct {
	Self       *TableDescription
}

type DescribeTableOptionsRequest struct {
	OperationParams *OperationParams
}

type DescribeTableOptionsResponse struct {
	Operation *Operation
}

type DescribeTableOptionsResult struct {
	TableProfilePresets []string
}

type TransactionSettings struct {
	Mode TransactionMode
}

type TransactionMode int32

const (
	TransactionModeUnspecified TransactionMode = iota
	TransactionModeSerializableReadWrite
	TransactionModeOnlineReadOnly
	TransactionModeStaleReadOnly
)

// TransactionControl is the tagged variant spec.md §3 calls
// TransactionHandle: either a reference to an already-open transaction,
// or settings for a new one plus whether to auto-commit.
type TransactionControl struct {
	TxID     string // non-empty selects the Existing{txId} variant
	Settings *TransactionSettings
	CommitTx bool
}

// AutoTx is the default control used when executeQuery omits one:
// begin serializable read-write, commit at statement end.
var AutoTx = &TransactionControl{
	Settings: &TransactionSettings{Mode: TransactionModeSerializableReadWrite},
	CommitTx: true,
}

type BeginTransactionRequest struct {
	SessionId       string
	TxSettings      *TransactionSettings
	OperationParams *OperationParams
}

type BeginTransactionResponse struct {
	Operation *Operation
}

type BeginTransactionResult struct {
	TxMeta *TransactionMeta
}

type TransactionMeta struct {
	Id string
}

type CommitTransactionRequest struct {
	SessionId       string
	TxId            string
	OperationParams *OperationParams
}

type CommitTransactionResponse struct {
	Operation *Operation
}

type RollbackTransactionRequest struct {
	SessionId       string
	TxId            string
	OperationParams *OperationParams
}

type RollbackTransactionResponse struct {
	Operation *Operation
}

type PrepareDataQueryRequest struct {
	SessionId       string
	YqlText         string
	OperationParams *OperationParams
}

type PrepareDataQueryResponse struct {
	Operation *Operation
}

type PrepareDataQueryResult struct {
	QueryId string
}

type Query struct {
	YqlText string
	QueryId string
}

type ExecuteDataQueryRequest struct {
	SessionId       string
	TxControl       *TransactionControl
	Query           *Query
	Parameters      map[string]any
	OperationParams *OperationParams
}

type ExecuteDataQueryResponse struct {
	Operation *Operation
}

type ExecuteDataQueryResult struct {
	TxMeta     *TransactionMeta
	ResultSets []*ResultSet
}

type ResultSet struct {
	Columns []*Column
	Rows    []map[string]any
}

type ExplainDataQueryRequest struct {
	SessionId       string
	YqlText         string
	OperationParams *OperationParams
}

type ExplainDataQueryResponse struct {
	Operation *Operation
}

type ExplainDataQueryResult struct {
	QueryAst  string
	QueryPlan string
}

type ExecuteSchemeQueryRequest struct {
	SessionId       string
	YqlText         string
	OperationParams *OperationParams
}

type ExecuteSchemeQueryResponse struct {
	Operation *Operation
}

// TableServiceClient is the generated-style stub for the table service,
// covering session lifecycle, DDL, and query execution.
type TableServiceClient interface {
	CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error)
	DeleteSession(ctx context.Context, in *DeleteSessionRequest, opts ...grpc.CallOption) (*DeleteSessionResponse, error)
	KeepAlive(ctx context.Context, in *KeepAliveRequest, opts ...grpc.CallOption) (*KeepAliveResponse, error)
	CreateTable(ctx context.Context, in *CreateTableRequest, opts ...grpc.CallOption) (*CreateTableResponse, error)
	DropTable(ctx context.Context, in *DropTableRequest, opts ...grpc.CallOption) (*DropTableResponse, error)
	AlterTable(ctx context.Context, in *AlterTableRequest, opts ...grpc.CallOption) (*AlterTableResponse, error)
	CopyTable(ctx context.Context, in *CopyTableRequest, opts ...grpc.CallOption) (*CopyTableResponse, error)
	CopyTables(ctx context.Context, in *CopyTablesRequest, opts ...grpc.CallOption) (*CopyTablesResponse, error)
	RenameTables(ctx context.Context, in *RenameTablesRequest, opts ...grpc.CallOption) (*RenameTablesResponse, error)
	DescribeTable(ctx context.Context, in *DescribeTableRequest, opts ...grpc.CallOption) (*DescribeTableResponse, error)
	DescribeTableOptions(ctx context.Context, in *DescribeTableOptionsRequest, opts ...grpc.CallOption) (*DescribeTableOptionsResponse, error)
	BeginTransaction(ctx context.Context, in *BeginTransactionRequest, opts ...grpc.CallOption) (*BeginTransactionResponse, error)
	CommitTransaction(ctx context.Context, in *CommitTransactionRequest, opts ...grpc.CallOption) (*CommitTransactionResponse, error)
	RollbackTransaction(ctx context.Context, in *RollbackTransactionRequest, opts ...grpc.CallOption) (*RollbackTransactionResponse, error)
	PrepareDataQuery(ctx context.Context, in *PrepareDataQueryRequest, opts ...grpc.CallOption) (*PrepareDataQueryResponse, error)
	ExecuteDataQuery(ctx context.Context, in *ExecuteDataQueryRequest, opts ...grpc.CallOption) (*ExecuteDataQueryResponse, error)
	ExplainDataQuery(ctx context.Context, in *ExplainDataQueryRequest, opts ...grpc.CallOption) (*ExplainDataQueryResponse, error)
	ExecuteSchemeQuery(ctx context.Context, in *ExecuteSchemeQueryRequest, opts ...grpc.CallOption) (*ExecuteSchemeQueryResponse, error)
}

type tableServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTableServiceClient(cc grpc.ClientConnInterface) TableServiceClient {
	return &tableServiceClient{cc: cc}
}

func (c *tableServiceClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/nexus.table.v1.TableService/"+method, in, out, opts...)
}

func (c *tableServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error) {
	out := new(CreateSessionResponse)
	if err := c.invoke(ctx, "CreateSession", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) DeleteSession(ctx context.Context, in *DeleteSessionRequest, opts ...grpc.CallOption) (*DeleteSessionResponse, error) {
	out := new(DeleteSessionResponse)
	if err := c.invoke(ctx, "DeleteSession", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) KeepAlive(ctx context.Context, in *KeepAliveRequest, opts ...grpc.CallOption) (*KeepAliveResponse, error) {
	out := new(KeepAliveResponse)
	if err := c.invoke(ctx, "KeepAlive", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) CreateTable(ctx context.Context, in *CreateTableRequest, opts ...grpc.CallOption) (*CreateTableResponse, error) {
	out := new(CreateTableResponse)
	if err := c.invoke(ctx, "CreateTable", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) DropTable(ctx context.Context, in *DropTableRequest, opts ...grpc.CallOption) (*DropTableResponse, error) {
	out := new(DropTableResponse)
	if err := c.invoke(ctx, "DropTable", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) AlterTable(ctx context.Context, in *AlterTableRequest, opts ...grpc.CallOption) (*AlterTableResponse, error) {
	out := new(AlterTableResponse)
	if err := c.invoke(ctx, "AlterTable", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) CopyTable(ctx context.Context, in *CopyTableRequest, opts ...grpc.CallOption) (*CopyTableResponse, error) {
	out := new(CopyTableResponse)
	if err := c.invoke(ctx, "CopyTable", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) CopyTables(ctx context.Context, in *CopyTablesRequest, opts ...grpc.CallOption) (*CopyTablesResponse, error) {
	out := new(CopyTablesResponse)
	if err := c.invoke(ctx, "CopyTables", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) RenameTables(ctx context.Context, in *RenameTablesRequest, opts ...grpc.CallOption) (*RenameTablesResponse, error) {
	out := new(RenameTablesResponse)
	if err := c.invoke(ctx, "RenameTables", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) DescribeTable(ctx context.Context, in *DescribeTableRequest, opts ...grpc.CallOption) (*DescribeTableResponse, error) {
	out := new(DescribeTableResponse)
	if err := c.invoke(ctx, "DescribeTable", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) DescribeTableOptions(ctx context.Context, in *DescribeTableOptionsRequest, opts ...grpc.CallOption) (*DescribeTableOptionsResponse, error) {
	out := new(DescribeTableOptionsResponse)
	if err := c.invoke(ctx, "DescribeTableOptions", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) BeginTransaction(ctx context.Context, in *BeginTransactionRequest, opts ...grpc.CallOption) (*BeginTransactionResponse, error) {
	out := new(BeginTransactionResponse)
	if err := c.invoke(ctx, "BeginTransaction", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) CommitTransaction(ctx context.Context, in *CommitTransactionRequest, opts ...grpc.CallOption) (*CommitTransactionResponse, error) {
	out := new(CommitTransactionResponse)
	if err := c.invoke(ctx, "CommitTransaction", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) RollbackTransaction(ctx context.Context, in *RollbackTransactionRequest, opts ...grpc.CallOption) (*RollbackTransactionResponse, error) {
	out := new(RollbackTransactionResponse)
	if err := c.invoke(ctx, "RollbackTransaction", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) PrepareDataQuery(ctx context.Context, in *PrepareDataQueryRequest, opts ...grpc.CallOption) (*PrepareDataQueryResponse, error) {
	out := new(PrepareDataQueryResponse)
	if err := c.invoke(ctx, "PrepareDataQuery", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) ExecuteDataQuery(ctx context.Context, in *ExecuteDataQueryRequest, opts ...grpc.CallOption) (*ExecuteDataQueryResponse, error) {
	out := new(ExecuteDataQueryResponse)
	if err := c.invoke(ctx, "ExecuteDataQuery", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) ExplainDataQuery(ctx context.Context, in *ExplainDataQueryRequest, opts ...grpc.CallOption) (*ExplainDataQueryResponse, error) {
	out := new(ExplainDataQueryResponse)
	if err := c.invoke(ctx, "ExplainDataQuery", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tableServiceClient) ExecuteSchemeQuery(ctx context.Context, in *ExecuteSchemeQueryRequest, opts ...grpc.CallOption) (*ExecuteSchemeQueryResponse, error) {
	out := new(ExecuteSchemeQueryResponse)
	if err := c.invoke(ctx, "ExecuteSchemeQuery", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
