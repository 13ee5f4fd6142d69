// Package credentials defines the driver's auth provider abstraction
// (spec component C1) and its Static/Multi variants. The IAM and
// instance-metadata variants live in iam.go and metadata.go.
package credentials

import (
	"context"
	"errors"
)

// ErrNoCredentials is returned by Multi when none of its members could
// produce a token and none of them returned an error either (should not
// happen given a non-empty chain, kept defensive like the teacher's own
// multiCredentials).
var ErrNoCredentials = errors.New("credentials: no credentials provider produced a token")

// Credentials produces the bearer token attached to every unary call as
// the x-ydb-auth-ticket header. Implementations must tolerate concurrent
// callers during a refresh.
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// Func adapts a plain function to Credentials.
type Func func(ctx context.Context) (string, error)

func (f Func) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static returns a fixed token unchanged on every call.
type Static struct {
	Token_ string
}

func NewStatic(token string) *Static {
	return &Static{Token_: token}
}

func (s *Static) Token(context.Context) (string, error) {
	return s.Token_, nil
}

// multi tries each credentials provider in order, returning the first
// success; if all fail it returns the last error observed.
type multi struct {
	cs []Credentials
}

// Multi builds an ordered fallback chain, flattening any nested Multi so
// the resulting chain is flat.
func Multi(cs ...Credentials) Credentials {
	var flat []Credentials
	for _, c := range cs {
		if m, ok := c.(*multi); ok {
			flat = append(flat, m.cs...)
			continue
		}
		flat = append(flat, c)
	}
	return &multi{cs: flat}
}

func (m *multi) Token(ctx context.Context) (string, error) {
	var lastErr error
	for _, c := range m.cs {
		token, err := c.Token(ctx)
		if err == nil {
			return token, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return "", ErrNoCredentials
	}
	return "", lastErr
}
