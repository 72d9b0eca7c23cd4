// Package logging defines the structured-logging interface shared by the CLI
// client and the API server, so the sync and HTTP layers do not depend on a
// concrete logging backend.
package logging

import "context"

// Logger is a context-aware, structured logger. The client logs to the
// terminal in text form, the server as JSON; both sides pass key-value args:
//
//	log.Warn(ctx, "sync run failed", "job", name, "error", err)
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
