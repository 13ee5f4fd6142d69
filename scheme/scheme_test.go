package scheme

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/nexusdb/nexus-go-sdk/internal/wire"
	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
	"github.com/nexusdb/nexus-go-sdk/retry"
)

type fakeConn struct {
	invoke func(method string, reply any) error
}

func (f *fakeConn) Invoke(_ context.Context, method string, _, reply any, _ ...grpc.CallOption) error {
	return f.invoke(method, reply)
}

func (f *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

func TestMakeAndDescribeDirectory(t *testing.T) {
	c := NewClient(&fakeConn{invoke: func(method string, reply any) error {
		switch r := reply.(type) {
		case *wire.MakeDirectoryResponse:
			r.Operation = &wire.Operation{Ready: true}
		case *wire.DescribeDirectoryResponse:
			result := wire.DescribeDirectoryResult{Self: &wire.Entry{Name: "dir", Type: wire.EntryTypeDirectory}}
			payload, _ := wire.EncodeResult(result)
			r.Operation = &wire.Operation{Ready: true, Result: payload}
		}
		return nil
	}}, retry.Parameters{MaxRetries: 1})

	require.NoError(t, c.MakeDirectory(context.Background(), "/db/dir"))

	entry, err := c.DescribeDirectory(context.Background(), "/db/dir")
	require.NoError(t, err)
	require.Equal(t, "dir", entry.Name)
	require.Equal(t, EntryTypeDirectory, entry.Type)
}

func TestRemoveDirectoryTreatsSchemeErrorAsSuccess(t *testing.T) {
	c := NewClient(&fakeConn{invoke: func(method string, reply any) error {
		r := reply.(*wire.RemoveDirectoryResponse)
		r.Operation = &wire.Operation{Ready: true, Status: wire.StatusCode(xerrors.StatusSchemeError)}
		return nil
	}}, retry.Parameters{MaxRetries: 1})

	require.NoError(t, c.RemoveDirectory(context.Background(), "/db/missing"))
}

func TestListDirectoryReturnsChildren(t *testing.T) {
	c := NewClient(&fakeConn{invoke: func(method string, reply any) error {
		r := reply.(*wire.ListDirectoryResponse)
		result := wire.ListDirectoryResult{
			Self: &wire.Entry{Name: "root", Type: wire.EntryTypeDirectory},
			Children: []*wire.Entry{
				{Name: "a", Type: wire.EntryTypeTable},
				{Name: "b", Type: wire.EntryTypeDirectory},
			},
		}
		payload, _ := wire.EncodeResult(result)
		r.Operation = &wire.Operation{Ready: true, Result: payload}
		return nil
	}}, retry.Parameters{MaxRetries: 1})

	dir, err := c.ListDirectory(context.Background(), "/db")
	require.NoError(t, err)
	require.Len(t, dir.Children, 2)
	require.Equal(t, "a", dir.Children[0].Name)
}
