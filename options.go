package nexus

import (
	"time"

	"google.golang.org/grpc"

	"github.com/nexusdb/nexus-go-sdk/credentials"
	"github.com/nexusdb/nexus-go-sdk/internal/discovery"
	"github.com/nexusdb/nexus-go-sdk/internal/pool"
	"github.com/nexusdb/nexus-go-sdk/log"
	"github.com/nexusdb/nexus-go-sdk/retry"
)

// config collects every Option's effect before Open builds the driver.
type config struct {
	credentials credentials.Credentials
	logger      log.Logger

	discoveryInterval  time.Duration
	pessimizationDelay time.Duration

	poolMinSize         int
	poolMaxSize         int
	poolKeepAlivePeriod time.Duration
	poolAcquireTimeout  time.Duration

	dialTimeout time.Duration
	dialOptions []grpc.DialOption

	retryParams retry.Parameters
}

func defaultConfig() config {
	return config{
		credentials:         credentials.NewStatic(""),
		logger:              log.Nop(),
		discoveryInterval:   discovery.DefaultPeriod,
		pessimizationDelay:  discovery.DefaultPessimizationDelay,
		poolMinSize:         pool.DefaultMinSize,
		poolMaxSize:         pool.DefaultMaxSize,
		poolKeepAlivePeriod: pool.DefaultKeepAlivePeriod,
		poolAcquireTimeout:  10 * time.Second,
		dialTimeout:         5 * time.Second,
		retryParams:         retry.Parameters{MaxRetries: retry.DefaultMaxRetries},
	}
}

// Option configures the Driver built by Open.
type Option func(*config)

func WithCredentials(c credentials.Credentials) Option {
	return func(cfg *config) { cfg.credentials = c }
}

func WithLogger(l log.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

// WithDiscoveryInterval overrides ENDPOINT_DISCOVERY_PERIOD (spec §4.3).
func WithDiscoveryInterval(d time.Duration) Option {
	return func(cfg *config) { cfg.discoveryInterval = d }
}

func WithPessimizationDelay(d time.Duration) Option {
	return func(cfg *config) { cfg.pessimizationDelay = d }
}

// WithSessionPoolSizeLimit sets the pool's prepopulated floor and
// accept-no-more ceiling (spec §3's minLimit/maxLimit).
func WithSessionPoolSizeLimit(min, max int) Option {
	return func(cfg *config) { cfg.poolMinSize = min; cfg.poolMaxSize = max }
}

func WithSessionPoolKeepAlivePeriod(d time.Duration) Option {
	return func(cfg *config) { cfg.poolKeepAlivePeriod = d }
}

// WithSessionPoolAcquireTimeout bounds how long Table operations
// wait for a session to free up before failing with IsTimeoutError.
func WithSessionPoolAcquireTimeout(d time.Duration) Option {
	return func(cfg *config) { cfg.poolAcquireTimeout = d }
}

func WithDialTimeout(d time.Duration) Option {
	return func(cfg *config) { cfg.dialTimeout = d }
}

// WithGRPCDialOptions appends raw grpc.DialOptions (transport
// credentials, keepalive parameters, interceptors, ...) to every dial.
func WithGRPCDialOptions(opts ...grpc.DialOption) Option {
	return func(cfg *config) { cfg.dialOptions = append(cfg.dialOptions, opts...) }
}

func WithRetryParameters(p retry.Parameters) Option {
	return func(cfg *config) { cfg.retryParams = p }
}
