package phy

import "log/slog"

// Logger receives diagnostics about the devices in this package, never the
// traces themselves. A Tracer reports a failing trace output at Debug; Bridge
// reports start and stop at Info and per-direction device errors at Debug.
//
// *slog.Logger satisfies Logger.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}

// defaultLogger is used when no LoggerOption or BridgeLoggerOption is given.
func defaultLogger() Logger {
	return slog.Default()
}
