package wire

import (
	"context"

	"google.golang.org/grpc"
)

type MakeDirectoryRequest struct {
	Path            string
	OperationParams *OperationParams
}

type MakeDirectoryResponse struct {
	Operation *Operation
}

type RemoveDirectoryRequest struct {
	Path            string
	OperationParams *OperationParams
}

type RemoveDirectoryResponse struct {
	Operation *Operation
}

type ListDirectoryRequest struct {
	Path            string
	OperationParams *OperationParams
}

type ListDirectoryResponse struct {
	Operation *Operation
}

type Entry struct {
	Name string
	Type EntryType
}

type EntryType int32

const (
	EntryTypeUnspecified EntryType = iota
	EntryTypeDirectory
	EntryTypeTable
)

type ListDirectoryResult struct {
	Self     *Entry
	Children []*Entry
}

type DescribeDirectoryRequest struct {
	Path            string
	OperationParams *OperationParams
}

type DescribeDirectoryResponse struct {
	Operation *Operation
}

type DescribeDirectoryResult struct {
	Self *Entry
}

// SchemeServiceClient covers namespace operations that address the
// schema tree rather than a specific table; its requests carry no
// session id.
type SchemeServiceClient interface {
	MakeDirectory(ctx context.Context, in *MakeDirectoryRequest, opts ...grpc.CallOption) (*MakeDirectoryResponse, error)
	RemoveDirectory(ctx context.Context, in *RemoveDirectoryRequest, opts ...grpc.CallOption) (*RemoveDirectoryResponse, error)
	ListDirectory(ctx context.Context, in *ListDirectoryRequest, opts ...grpc.CallOption) (*ListDirectoryResponse, error)
	DescribeDirectory(ctx context.Context, in *DescribeDirectoryRequest, opts ...grpc.CallOption) (*DescribeDirectoryResponse, error)
}

type schemeServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSchemeServiceClient(cc grpc.ClientConnInterface) SchemeServiceClient {
	return &schemeServiceClient{cc: cc}
}

func (c *schemeServiceClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/nexus.scheme.v1.SchemeService/"+method, in, out, opts...)
}

func (c *schemeServiceClient) MakeDirectory(ctx context.Context, in *MakeDirectoryRequest, opts ...grpc.CallOption) (*MakeDirectoryResponse, error) {
	out := new(MakeDirectoryResponse)
	if err := c.invoke(ctx, "MakeDirectory", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schemeServiceClient) RemoveDirectory(ctx context.Context, in *RemoveDirectoryRequest, opts ...grpc.CallOption) (*RemoveDirectoryResponse, error) {
	out := new(RemoveDirectoryResponse)
	if err := c.invoke(ctx, "RemoveDirectory", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schemeServiceClient) ListDirectory(ctx context.Context, in *ListDirectoryRequest, opts ...grpc.CallOption) (*ListDirectoryResponse, error) {
	out := new(ListDirectoryResponse)
	if err := c.invoke(ctx, "ListDirectory", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schemeServiceClient) DescribeDirectory(ctx context.Context, in *DescribeDirectoryRequest, opts ...grpc.CallOption) (*DescribeDirectoryResponse, error) {
	out := new(DescribeDirectoryResponse)
	if err := c.invoke(ctx, "DescribeDirectory", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
