// Package log defines the Logger handle injected into Driver, Pool,
// Session, and Discovery, grounded on the teacher's own log package
// shape (log/driver.go, log/structural.go): an injected handle, never a
// process-wide global.
package log

import (
	"context"

	"github.com/nexusdb/nexus-go-sdk/log/kv"
)

type Level int

const (
	QUIET Level = iota
	TRACE
	DEBUG
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "QUIET"
	}
}

// Logger is the structured logging seam every component depends on.
// WithName scopes a child logger to a component path (e.g.
// "driver.pool"), the way the teacher's trace hooks tag each component.
type Logger interface {
	Log(ctx context.Context, msg string, fields ...kv.Field)
	WithLevel(level Level) Logger
	WithName(name string) Logger
}

type levelKey struct{}

// WithLevel tags ctx with a minimum level for this call, letting a
// single call site escalate from its default (e.g. a failed RPC logging
// at WARN instead of the component's configured level).
func WithLevel(ctx context.Context, level Level) context.Context {
	return context.WithValue(ctx, levelKey{}, level)
}

func levelFromContext(ctx context.Context, fallback Level) Level {
	if l, ok := ctx.Value(levelKey{}).(Level); ok {
		return l
	}
	return fallback
}

type nopLogger struct{}

func (nopLogger) Log(context.Context, string, ...kv.Field) {}
func (n nopLogger) WithLevel(Level) Logger                 { return n }
func (n nopLogger) WithName(string) Logger                 { return n }

// Nop returns a Logger that discards everything, the default when no
// logger is configured.
func Nop() Logger { return nopLogger{} }
