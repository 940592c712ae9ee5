// Package logging defines a minimal structured-logging interface used across
// the project. The default implementation wraps log/slog.
package logging

// Logger is a structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Warn("storage write failed", "path", path, "error", err)
type Logger interface {
	// Debug logs a diagnostic message.
	Debug(msg string, args ...any)

	// Info logs an informational message.
	Info(msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(msg string, args ...any)

	// Error logs an error message for failures.
	Error(msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
