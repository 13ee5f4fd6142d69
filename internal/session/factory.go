package session

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nexusdb/nexus-go-sdk/internal/endpoint"
	"github.com/nexusdb/nexus-go-sdk/internal/wire"
	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

// Factory creates sessions against one endpoint's connection (spec
// component C4). create() is itself retryable and pessimizable by the
// caller — the factory just issues the RPC.
type Factory struct {
	endpoint *endpoint.Endpoint
	cc       grpc.ClientConnInterface
	table    wire.TableServiceClient
}

func NewFactory(ep *endpoint.Endpoint, cc grpc.ClientConnInterface) *Factory {
	return &Factory{
		endpoint: ep,
		cc:       cc,
		table:    wire.NewTableServiceClient(cc),
	}
}

func (f *Factory) Endpoint() *endpoint.Endpoint { return f.endpoint }

// Create issues CreateSession and constructs a Session bound to this
// endpoint's connection.
func (f *Factory) Create(ctx context.Context) (*Session, error) {
	resp, err := f.table.CreateSession(ctx, &wire.CreateSessionRequest{
		OperationParams: syncParams(0),
	})
	if err != nil {
		return nil, err
	}
	if !resp.Operation.Ready || resp.Operation.Status != 0 {
		return nil, &xerrors.OpError{Code: xerrors.StatusCode(resp.Operation.Status), Issues: resp.Operation.Issues}
	}

	var result wire.CreateSessionResult
	if err := wire.DecodeResult(resp.Operation, &result); err != nil {
		return nil, err
	}
	if result.SessionId == "" {
		return nil, &xerrors.EmptyPayload{Field: "sessionId"}
	}

	return New(result.SessionId, f.endpoint, f.cc), nil
}
