package credentials

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/nexusdb/nexus-go-sdk/internal/xerrors"
)

const (
	defaultJWTTTL         = time.Hour
	defaultIAMTokenTTL    = 2 * time.Minute
	defaultRequestTimeout = 10 * time.Second
)

// IAM exchanges a signed JWT for a short-lived IAM token at a token
// endpoint, caching the result until it expires. Concurrent callers
// during a refresh block on mu rather than each issuing their own
// exchange RPC, satisfying the single-flight requirement.
type IAM struct {
	ServiceAccountID string
	AccessKeyID       string
	PrivateKey        *rsa.PrivateKey
	TokenEndpoint     string

	JWTTTL         time.Duration
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	Client         *http.Client

	mu        sync.Mutex
	cached    string
	issuedAt  time.Time
}

// NewIAM builds an IAM credentials provider with the teacher's defaults:
// 1h JWT TTL, 2min cached-token TTL, 10s exchange timeout.
func NewIAM(serviceAccountID, accessKeyID string, key *rsa.PrivateKey, tokenEndpoint string) *IAM {
	return &IAM{
		ServiceAccountID: serviceAccountID,
		AccessKeyID:      accessKeyID,
		PrivateKey:       key,
		TokenEndpoint:    tokenEndpoint,
		JWTTTL:           defaultJWTTTL,
		TokenTTL:         defaultIAMTokenTTL,
		RequestTimeout:   defaultRequestTimeout,
		Client:           &http.Client{Timeout: defaultRequestTimeout},
	}
}

func (c *IAM) expired(now time.Time) bool {
	ttl := c.TokenTTL
	if ttl == 0 {
		ttl = defaultIAMTokenTTL
	}
	return c.cached == "" || now.Sub(c.issuedAt) > ttl
}

// Token returns the cached IAM token, refreshing it first if expired.
func (c *IAM) Token(ctx context.Context) (string, error) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.expired(now) {
		return c.cached, nil
	}

	assertion, err := c.signJWT(now)
	if err != nil {
		return "", xerrors.WithStackTrace(err)
	}

	token, err := c.exchange(ctx, assertion)
	if err != nil {
		return "", xerrors.WithStackTrace(err)
	}

	c.cached = token
	c.issuedAt = now
	return token, nil
}

func (c *IAM) signJWT(now time.Time) (string, error) {
	ttl := c.JWTTTL
	if ttl == 0 {
		ttl = defaultJWTTTL
	}
	claims := jwt.RegisteredClaims{
		Issuer:    c.ServiceAccountID,
		Audience:  jwt.ClaimStrings{c.TokenEndpoint},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodPS256, claims)
	token.Header["kid"] = c.AccessKeyID
	return token.SignedString(c.PrivateKey)
}

type exchangeRequest struct {
	JWT string `json:"jwt"`
}

type exchangeResponse struct {
	IAMToken  string `json:"iamToken"`
	ExpiresAt string `json:"expiresAt"`
}

func (c *IAM) exchange(ctx context.Context, assertion string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout())
	defer cancel()

	body, err := json.Marshal(exchangeRequest{JWT: assertion})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", &xerrors.TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("iam token exchange failed: status %d: %s", resp.StatusCode, data)
	}

	var out exchangeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", err
	}
	if out.IAMToken == "" {
		return "", &xerrors.EmptyPayload{Field: "iamToken"}
	}
	return out.IAMToken, nil
}

func (c *IAM) requestTimeout() time.Duration {
	if c.RequestTimeout == 0 {
		return defaultRequestTimeout
	}
	return c.RequestTimeout
}

func (c *IAM) httpClient() *http.Client {
	if c.Client == nil {
		return &http.Client{Timeout: c.requestTimeout()}
	}
	return c.Client
}
