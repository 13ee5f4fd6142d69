// Package meta attaches per-request auth metadata to outgoing gRPC
// calls, grounded on the teacher's root meta.go.
package meta

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc/metadata"

	"github.com/nexusdb/nexus-go-sdk/credentials"
)

// The two headers every unary call carries, no more and no fewer.
const (
	HeaderDatabase = "x-ydb-database"
	HeaderAuth     = "x-ydb-auth-ticket"
)

// Meta builds the metadata.MD attached to every unary call: the fixed
// database header plus a bearer ticket refreshed from Credentials. It
// rebuilds the cached MD only when the token actually changes, avoiding
// a metadata.MD allocation on every call in the common case.
type Meta struct {
	credentials credentials.Credentials
	database    string

	mu    sync.RWMutex
	token string
	curr  metadata.MD
}

func New(database string, creds credentials.Credentials) *Meta {
	return &Meta{
		credentials: creds,
		database:    database,
	}
}

// MD returns the metadata to attach to an outgoing call: exactly the
// database and auth-ticket headers, nothing else.
func (m *Meta) MD(ctx context.Context) (metadata.MD, error) {
	token, err := m.credentials.Token(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if token == m.token && m.curr != nil {
		md := m.curr
		m.mu.RUnlock()
		return md, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if token != m.token || m.curr == nil {
		m.curr = metadata.Join(
			metadata.Pairs(HeaderDatabase, m.database),
			metadata.Pairs(HeaderAuth, token),
		)
		m.token = token
	}
	return m.curr, nil
}

// Database is the fixed database path attached to every call.
func (m *Meta) Database() string {
	return m.database
}

func (m *Meta) String() string {
	return fmt.Sprintf("meta(database=%s)", m.database)
}
