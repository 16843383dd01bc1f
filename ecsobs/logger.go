// Package ecsobs holds the observability surface used by rendergraph
// and app: a structured zap logger and a
// Prometheus metrics sink, both defaulting to a no-op so the core never
// pays for observability it wasn't asked for.
package ecsobs

import "go.uber.org/zap"

// NewNopLogger returns a zap.Logger that discards everything, the
// default until a caller opts in with WithLogger.
func NewNopLogger() *zap.Logger {
	return zap.NewNop()
}

// Logger wraps the shared *zap.Logger so call sites don't need to
// thread the nil-check around: a zero-value Logger logs nothing.
type Logger struct {
	z *zap.Logger
}

// NewLogger wraps z, falling back to a no-op logger if z is nil.
func NewLogger(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return Logger{z: z}
}

// Warn logs msg at warn level with the given structured fields.
func (l Logger) Warn(msg string, fields ...zap.Field) {
	if l.z == nil {
		return
	}
	l.z.Warn(msg, fields...)
}

// Error logs msg at error level with the given structured fields.
func (l Logger) Error(msg string, fields ...zap.Field) {
	if l.z == nil {
		return
	}
	l.z.Error(msg, fields...)
}

// Info logs msg at info level with the given structured fields.
func (l Logger) Info(msg string, fields ...zap.Field) {
	if l.z == nil {
		return
	}
	l.z.Info(msg, fields...)
}
