package conn

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// grpcUnavailable reports whether err is a gRPC status error carrying a
// connectivity-level code, as opposed to an application status embedded
// in a successfully delivered response.
func grpcUnavailable(err error) bool {
	s, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled, codes.Unknown:
		return true
	default:
		return false
	}
}
