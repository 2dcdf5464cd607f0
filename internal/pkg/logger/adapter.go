package logger

import "wallet_enricher/internal/app/port"

// slogAdapter implements port.Logger on top of the package level functions,
// optionally prefixing every record with fixed attributes.
type slogAdapter struct {
	attrs []any
}

// NewSlogAdapter creates a port.Logger backed by the global slog logger.
func NewSlogAdapter(attrs ...any) port.Logger {
	return &slogAdapter{attrs: attrs}
}

func (a *slogAdapter) with(args []any) []any {
	if len(a.attrs) == 0 {
		return args
	}
	out := make([]any, 0, len(a.attrs)+len(args))
	out = append(out, a.attrs...)
	return append(out, args...)
}

// Info logs a message at info level with the adapter's attributes prepended.
func (a *slogAdapter) Info(msg string, args ...any) {
	Info(msg, a.with(args)...)
}

// Debug logs a message at debug level with the adapter's attributes prepended.
func (a *slogAdapter) Debug(msg string, args ...any) {
	Debug(msg, a.with(args)...)
}

// Warn logs a message at warn level with the adapter's attributes prepended.
func (a *slogAdapter) Warn(msg string, args ...any) {
	Warn(msg, a.with(args)...)
}

// Error logs a message at error level with the adapter's attributes prepended.
func (a *slogAdapter) Error(msg string, args ...any) {
	Error(msg, a.with(args)...)
}
