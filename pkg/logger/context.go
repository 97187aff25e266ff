package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Request-scoped loggers travel two ways: handlers read them from the echo
// context, and services read them from the context.Context they are handed.
// RequestContext bridges the two so a service call logs with its request id.

type ctxKey struct{}

// EchoKey is the echo context key holding the request-scoped logger
const EchoKey = "logger"

func orGlobal(l *zap.Logger, ok bool) *zap.Logger {
	if !ok || l == nil {
		return GetLogger()
	}
	return l
}

// FromContext returns the logger carried by ctx, or the global one
func FromContext(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(ctxKey{}).(*zap.Logger)
	return orGlobal(l, ok)
}

// WithContext returns a copy of ctx carrying l
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromEcho returns the logger the request middleware stored on c,
// falling back to whatever the request context carries
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(EchoKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return FromContext(c.Request().Context())
}

// RequestContext returns the request's context with the echo logger attached
func RequestContext(c echo.Context) context.Context {
	return WithContext(c.Request().Context(), FromEcho(c))
}
