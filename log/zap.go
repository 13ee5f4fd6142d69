package log

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nexusdb/nexus-go-sdk/log/kv"
)

// zapLogger backs the injected Logger handle with go.uber.org/zap's
// leveled core. The teacher's own default sink is bespoke; zap is
// already a real dependency of the surrounding pack and is the
// idiomatic choice for a leveled, structured sink (see DESIGN.md).
type zapLogger struct {
	l     *zap.Logger
	name  string
	level Level
}

type Option func(*options)

type options struct {
	level Level
}

func WithMinLevel(level Level) Option {
	return func(o *options) { o.level = level }
}

// Default builds a Logger writing JSON lines to w at or above the
// configured minimum level (INFO if unset).
func Default(w io.Writer, opts ...Option) Logger {
	o := &options{level: INFO}
	for _, opt := range opts {
		opt(o)
	}

	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), toZapLevel(o.level))
	return &zapLogger{l: zap.New(core), level: INFO}
}

func (z *zapLogger) Log(ctx context.Context, msg string, fields ...kv.Field) {
	level := levelFromContext(ctx, z.level)
	ce := z.l.Check(toZapLevel(level), msg)
	if ce == nil {
		return
	}
	zf := make([]zap.Field, 0, len(fields)+1)
	if z.name != "" {
		zf = append(zf, zap.String("component", z.name))
	}
	for _, f := range fields {
		zf = append(zf, zap.Any(f.Key, f.Value))
	}
	ce.Write(zf...)
}

func (z *zapLogger) WithLevel(level Level) Logger {
	return &zapLogger{l: z.l, name: z.name, level: level}
}

func (z *zapLogger) WithName(name string) Logger {
	full := name
	if z.name != "" {
		full = z.name + "." + name
	}
	return &zapLogger{l: z.l, name: full, level: z.level}
}

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case TRACE, DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InvalidLevel
	}
}
