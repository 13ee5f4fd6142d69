package wire

import (
	"context"

	"google.golang.org/grpc"
)

// ListEndpointsRequest asks for the current set of serving nodes for a
// database.
type ListEndpointsRequest struct {
	Database string
	Service  []string
}

type ListEndpointsResponse struct {
	Operation *Operation
}

type ListEndpointsResult struct {
	Endpoints     []*EndpointInfo
	SelfLocation  string
}

// EndpointInfo is the wire shape of one serving node, decoded out of a
// ListEndpointsResult.
type EndpointInfo struct {
	Address    string
	Port       uint32
	LoadFactor float32
	Ssl        bool
	Location   string
	NodeId     uint32
}

// WhoAmIRequest / WhoAmIResponse round out the discovery surface with an
// identity check used by integration tests in the pack this driver is
// modeled on.
type WhoAmIRequest struct {
	IncludeGroups bool
}

type WhoAmIResponse struct {
	Operation *Operation
}

type WhoAmIResult struct {
	User   string
	Groups []string
}

// DiscoveryServiceClient is the generated-style stub for the discovery
// service, exposing the two unary RPCs this driver depends on.
type DiscoveryServiceClient interface {
	ListEndpoints(ctx context.Context, in *ListEndpointsRequest, opts ...grpc.CallOption) (*ListEndpointsResponse, error)
	WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*WhoAmIResponse, error)
}

type discoveryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDiscoveryServiceClient(cc grpc.ClientConnInterface) DiscoveryServiceClient {
	return &discoveryServiceClient{cc: cc}
}

func (c *discoveryServiceClient) ListEndpoints(
	ctx context.Context, in *ListEndpointsRequest, opts ...grpc.CallOption,
) (*ListEndpointsResponse, error) {
	out := new(ListEndpointsResponse)
	if err := c.cc.Invoke(ctx, "/nexus.discovery.v1.DiscoveryService/ListEndpoints", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *discoveryServiceClient) WhoAmI(
	ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption,
) (*WhoAmIResponse, error) {
	out := new(WhoAmIResponse)
	if err := c.cc.Invoke(ctx, "/nexus.discovery.v1.DiscoveryService/WhoAmI", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
