// Package tube provides buffered, scriptable I/O over a byte-stream peer.
//
// A transport only has to provide four primitives (see Transport):
//   - FillBuffer pulls whatever the peer has sent into the transport's Buffer
//   - Buffer exposes that Buffer
//   - RawSend writes bytes to the peer
//   - Close tears the connection down
//
// Everything else (Recv, RecvN, RecvUntil, RecvLine, Clean, Send, SendLine and
// the interactive bridge) lives in Tube and is written once against those
// primitives, so every transport behaves identically.
//
// # Layering
//
//	┌────────────────────────────────┐
//	│  Tube (recv/send/interactive)  │
//	├────────────────────────────────┤
//	│  Transport (4 primitives)      │
//	├────────────────────────────────┤
//	│  Buffer (FIFO, push-back)      │
//	└────────────────────────────────┘
//
// # Timeouts
//
// A FillBuffer whose timeout expires with nothing read returns (0, nil).
// Callers tell "nothing yet" apart from "connection broken" only by that
// zero-versus-error result. NoTimeout blocks until at least one read
// completes or fails.
//
// # Delimiters
//
// RecvUntil returns everything up to and including the delimiter and leaves
// the rest buffered. It waits forever for the delimiter to arrive.
package tube
