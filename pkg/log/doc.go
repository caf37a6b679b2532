// Package log provides traffic capture and console logging for tubes.
//
// Capture records what crossed a connection: every chunk read from the peer,
// every send, connection state changes and I/O errors. It is separate from
// operational logging (slog); a capture is a complete machine-readable trace
// that can be replayed with the tube-log tool.
//
// # Basic Usage
//
// Transports accept a Logger in their config:
//
//	// During development: print events via slog
//	cfg.Capture = log.NewSlogAdapter(slog.Default())
//
//	// Keep a trace on disk
//	cfg.Capture, _ = log.NewFileLogger("session.tlog")
//
//	// Both
//	cfg.Capture = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - Data: raw bytes read or sent (DataEvent)
//   - State: connection lifecycle (StateChangeEvent)
//   - Error: I/O failures (ErrorEventData)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .tlog extension.
//
// # Console
//
// NewConsoleLogger returns an slog.Logger that prints operator-facing
// diagnostics in the familiar "[*] message" style.
package log
