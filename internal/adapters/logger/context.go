package logger

import (
	"context"

	"github.com/Rigaud3000/StarTrader/internal/ports"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID added to every log line.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Named scopes l to a component when the implementation supports it.
func Named(l ports.Logger, component string) ports.Logger {
	if n, ok := l.(interface{ Named(string) ports.Logger }); ok {
		return n.Named(component)
	}
	return l
}
