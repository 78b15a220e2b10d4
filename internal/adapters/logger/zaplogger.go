package logger

import (
	"context"
	"fmt"
	"io"

	"github.com/Rigaud3000/StarTrader/internal/ports"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements ports.Logger on top of a zap JSON logger.
type ZapLogger struct {
	logger *zap.Logger
}

var (
	_ ports.Logger = (*ZapLogger)(nil)
	_ ports.Logger = (*StdLogger)(nil)
)

// NewZapLogger builds a production zap logger (JSON to stderr) at the given level.
func NewZapLogger(level LogLevel, service string) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &ZapLogger{logger: l.With(zap.String("service", service))}, nil
}

// NewZapLoggerWithWriter writes JSON lines to w.
func NewZapLoggerWithWriter(w io.Writer, level LogLevel) *ZapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level.zapLevel())
	return &ZapLogger{logger: zap.New(core)}
}

// NewZapLoggerFromCore wraps an existing zap core.
func NewZapLoggerFromCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{logger: zap.New(core)}
}

// Named returns a child logger; zap records the dotted name under "logger".
func (z *ZapLogger) Named(component string) ports.Logger {
	return &ZapLogger{logger: z.logger.Named(component)}
}

func (z *ZapLogger) fields(ctx context.Context, fields []map[string]interface{}) []zap.Field {
	var out []zap.Field
	if id := RequestID(ctx); id != "" {
		out = append(out, zap.String("requestID", id))
	}
	if len(fields) > 0 {
		for k, v := range fields[0] {
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}

// Debug logs a message at Debug level.
func (z *ZapLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	z.logger.Debug(msg, z.fields(ctx, fields)...)
}

// Info logs a message at Info level.
func (z *ZapLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	z.logger.Info(msg, z.fields(ctx, fields)...)
}

// Warn logs a message at Warning level.
func (z *ZapLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	z.logger.Warn(msg, z.fields(ctx, fields)...)
}

// Error logs an error message at Error level.
func (z *ZapLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	z.logger.Error(msg, append(z.fields(ctx, fields), zap.Error(err))...)
}

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}
