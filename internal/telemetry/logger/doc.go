// Package logger provides structured logging for litekv.
//
//   - logger.go: slog handler construction and the runtime level
//   - context.go: connection and request IDs carried in context
//   - redact.go: masking of stored values and secrets
//
// JSON is the default output; text is available for terminals.
package logger
