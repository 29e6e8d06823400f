// Package logger provides structured logging for the hub.
//
// It wraps log/slog with:
//
//   - JSON (default) and text output formats
//   - a process-wide level that can be changed at runtime
//   - automatic redaction of access token secrets and secret-looking keys
//   - context propagation of the request ID and the acting user
package logger
