// Package dsn parses the driver's connection string,
// grpc[s]://host:port/database?param=value, into a structured Info
// (SPEC_FULL.md §5.3). The scheme names the wire transport (plain or
// TLS gRPC), not the product.
package dsn

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Info is a parsed connection string.
type Info struct {
	Secure   bool
	Host     string
	Port     int
	Database string
	Params   url.Values
}

const defaultPort = 2135

// Parse accepts "grpc://host:port/database" or "grpcs://host:port/database",
// with an optional "?key=value" query string carried through as Params.
func Parse(raw string) (Info, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Info{}, fmt.Errorf("dsn: %w", err)
	}

	var secure bool
	switch u.Scheme {
	case "grpc":
		secure = false
	case "grpcs":
		secure = true
	default:
		return Info{}, fmt.Errorf("dsn: unsupported scheme %q, want grpc or grpcs", u.Scheme)
	}

	if u.Host == "" {
		return Info{}, fmt.Errorf("dsn: missing host")
	}
	host := u.Hostname()
	port := defaultPort
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Info{}, fmt.Errorf("dsn: invalid port %q: %w", p, err)
		}
		port = n
	}

	database := strings.TrimSuffix(u.Path, "/")
	if database == "" {
		return Info{}, fmt.Errorf("dsn: missing database path")
	}

	return Info{
		Secure:   secure,
		Host:     host,
		Port:     port,
		Database: database,
		Params:   u.Query(),
	}, nil
}
