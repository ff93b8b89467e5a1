// Package logger provides structured logging for SlotKV.
//
//   - logger.go: log/slog handler setup and a process-wide level
//   - context.go: logger and operation ID propagation through context
//   - redact.go: payload and secret redaction
//
// Slot blobs and stored values are user data. Attributes carrying them are
// replaced by their size before they reach the handler.
package logger
