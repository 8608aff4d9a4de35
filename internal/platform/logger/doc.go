// Package logger configures the application's slog-based structured logging
// and provides helpers for carrying a scoped logger through a context.
package logger
