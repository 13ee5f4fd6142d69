// Package scheme is the namespace/directory surface (SPEC_FULL.md §7's
// supplemented scheme directory operations): MakeDirectory,
// RemoveDirectory, ListDirectory, DescribeDirectory. These address the
// schema tree rather than a specific table, so — per spec §1's explicit
// allowance — they reuse the table client's retry plumbing without
// going through the session pool.
package scheme

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nexusdb/nexus-go-sdk/internal/wire"
	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
	"github.com/nexusdb/nexus-go-sdk/retry"
)

// EntryType classifies a directory entry.
type EntryType int32

const (
	EntryTypeUnspecified EntryType = iota
	EntryTypeDirectory
	EntryTypeTable
)

// Entry is one scheme-tree node.
type Entry struct {
	Name string
	Type EntryType
}

func fromWireEntry(e *wire.Entry) *Entry {
	if e == nil {
		return nil
	}
	return &Entry{Name: e.Name, Type: EntryType(e.Type)}
}

// Directory is ListDirectory's result: the directory itself plus its
// immediate children.
type Directory struct {
	Self     *Entry
	Children []*Entry
}

// Client is the public scheme-service surface.
type Client struct {
	client      wire.SchemeServiceClient
	retryParams retry.Parameters
}

// NewClient wraps cc (typically *internal/conn.Conn, which implements
// grpc.ClientConnInterface) as a scheme-service client.
func NewClient(cc grpc.ClientConnInterface, retryParams retry.Parameters) *Client {
	return &Client{client: wire.NewSchemeServiceClient(cc), retryParams: retryParams}
}

func (c *Client) do(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, fn, c.retryParams)
}

func (c *Client) MakeDirectory(ctx context.Context, path string) error {
	return c.do(ctx, func(ctx context.Context) error {
		resp, err := c.client.MakeDirectory(ctx, &wire.MakeDirectoryRequest{Path: path})
		if err != nil {
			return err
		}
		return classify(resp.Operation)
	})
}

// RemoveDirectory tolerates removing an already-absent directory, the
// same idempotence law DropTable honors (spec §8).
func (c *Client) RemoveDirectory(ctx context.Context, path string) error {
	return c.do(ctx, func(ctx context.Context) error {
		resp, err := c.client.RemoveDirectory(ctx, &wire.RemoveDirectoryRequest{Path: path})
		if err != nil {
			return err
		}
		if err := classify(resp.Operation); err != nil && !xerrors.IsSchemeError(err) {
			return err
		}
		return nil
	})
}

func (c *Client) ListDirectory(ctx context.Context, path string) (Directory, error) {
	var out Directory
	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.client.ListDirectory(ctx, &wire.ListDirectoryRequest{Path: path})
		if err != nil {
			return err
		}
		if err := classify(resp.Operation); err != nil {
			return err
		}
		var result wire.ListDirectoryResult
		if err := wire.DecodeResult(resp.Operation, &result); err != nil {
			return err
		}
		out.Self = fromWireEntry(result.Self)
		out.Children = make([]*Entry, len(result.Children))
		for i, child := range result.Children {
			out.Children[i] = fromWireEntry(child)
		}
		return nil
	})
	return out, err
}

func (c *Client) DescribeDirectory(ctx context.Context, path string) (*Entry, error) {
	var out *Entry
	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.client.DescribeDirectory(ctx, &wire.DescribeDirectoryRequest{Path: path})
		if err != nil {
			return err
		}
		if err := classify(resp.Operation); err != nil {
			return err
		}
		var result wire.DescribeDirectoryResult
		if err := wire.DecodeResult(resp.Operation, &result); err != nil {
			return err
		}
		out = fromWireEntry(result.Self)
		return nil
	})
	return out, err
}

func classify(op *wire.Operation) error {
	if op == nil {
		return &xerrors.EmptyPayload{Field: "operation"}
	}
	code := xerrors.StatusCode(op.Status)
	if code == xerrors.StatusUnknown && op.Ready {
		return nil
	}
	return &xerrors.OpError{Code: code, Issues: op.Issues}
}
