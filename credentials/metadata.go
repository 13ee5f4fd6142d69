package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

const (
	metadataURL       = "http://169.254.169.254/computeMetadata/v1/instance/service-accounts/default/token"
	metadataMaxTries  = 5
	metadataRetryWait = 2 * time.Second
)

// TokenService is the platform-provided collaborator the Metadata
// variant delegates to. The driver only calls Token; there is no
// separate initialization hook.
type TokenService interface {
	Token(ctx context.Context) (string, time.Duration, error)
}

// httpTokenService fetches a token from the instance metadata service,
// grounded on the teacher's auth/iam/http.go metaCall.
type httpTokenService struct {
	client *http.Client
}

func newHTTPTokenService() *httpTokenService {
	return &httpTokenService{
		client: &http.Client{
			Timeout: defaultRequestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   time.Second,
					KeepAlive: -1,
				}).DialContext,
			},
		},
	}
}

type metadataResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *httpTokenService) Token(ctx context.Context) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Metadata-Flavor", "Google")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, &xerrors.TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", 0, fmt.Errorf("instance metadata: no service account bound to this instance")
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("instance metadata: status %d: %s", resp.StatusCode, data)
	}

	var out metadataResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", 0, err
	}
	if out.AccessToken == "" {
		return "", 0, &xerrors.EmptyPayload{Field: "access_token"}
	}
	return out.AccessToken, time.Duration(out.ExpiresIn) * time.Second, nil
}

// Metadata is the instance-metadata auth variant: if no token is cached
// yet it polls the token service up to metadataMaxTries times, otherwise
// it serves the cached token until the TTL reported with it runs out.
type Metadata struct {
	service   TokenService
	retryWait time.Duration

	mu       sync.Mutex
	cached   string
	expireAt time.Time
}

// NewMetadata builds a Metadata credentials provider backed by the
// platform instance metadata service.
func NewMetadata() *Metadata {
	return &Metadata{service: newHTTPTokenService(), retryWait: metadataRetryWait}
}

// NewMetadataWithService is exposed for tests to inject a fake
// TokenService instead of a real HTTP call.
func NewMetadataWithService(s TokenService) *Metadata {
	return &Metadata{service: s, retryWait: metadataRetryWait}
}

func (m *Metadata) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if m.cached != "" && now.Before(m.expireAt) {
		return m.cached, nil
	}

	var lastErr error
	for attempt := 0; attempt < metadataMaxTries; attempt++ {
		token, ttl, err := m.service.Token(ctx)
		if err == nil {
			m.cached = token
			m.expireAt = now.Add(ttl)
			return token, nil
		}
		lastErr = err

		if attempt == metadataMaxTries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.retryWait):
		}
	}
	return "", fmt.Errorf("instance metadata: failed after %d tries: %w", metadataMaxTries, lastErr)
}
