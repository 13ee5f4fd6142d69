// Package wire holds the generated-style client stubs for this driver's
// three gRPC services (discovery, scheme, table). A real deployment produces this
// package with protoc against the server's own IDL, the way the
// upstream SDKs this driver is modeled on vendor their generated stubs;
// here it is hand-maintained in-repo since there is no IDL to compile.
//
// Concrete row/value marshalling is an opaque serialization collaborator
// per this driver's scope: DecodeResult stands in for it rather than
// reimplementing protobuf reflection by hand.
package wire

import (
	"encoding/json"
	"time"

	"google.golang.org/protobuf/types/known/anypb"
)

// OperationParams mirrors the envelope every unary call attaches,
// carrying the server-side operation deadline independent of the
// client's own context deadline.
type OperationParams struct {
	OperationTimeout     time.Duration
	OperationCancelAfter time.Duration
	Mode                 OperationMode
}

type OperationMode int

const (
	ModeUnspecified OperationMode = iota
	ModeSync
	ModeAsync
)

// Operation is the envelope every response carries: whether the
// operation completed, its status, human-readable issues, and an opaque
// result payload.
type Operation struct {
	ID       string
	Ready    bool
	Status   StatusCode
	Issues   string
	Result   *anypb.Any
	Session  string // session id this operation is scoped to, if any
}

// StatusCode mirrors internal/xerrors.StatusCode without importing it,
// to keep wire free of the business-logic package; internal/session and
// scheme convert it to xerrors.StatusCode when classifying a response.
type StatusCode uint32

// DecodeResult unmarshals op.Result.Value into out. Real row/value
// codecs are out of this driver's scope; this stands in for one.
func DecodeResult(op *Operation, out any) error {
	if op.Result == nil || len(op.Result.Value) == 0 {
		return errEmptyResult
	}
	return json.Unmarshal(op.Result.Value, out)
}

// EncodeResult is the encode side used by tests to build fixtures.
func EncodeResult(v any) (*anypb.Any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &anypb.Any{Value: b}, nil
}

var errEmptyResult = &emptyResultError{}

type emptyResultError struct{}

func (*emptyResultError) Error() string { return "wire: operation result is empty" }
