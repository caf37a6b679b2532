// Package transport provides the TCP transports behind a tube.
//
// Three types implement tube.Transport:
//   - Sock wraps an already-connected net.Conn and its private Buffer
//   - Remote dials a host and port and delegates everything to its Sock
//   - Listener binds immediately but accepts its single peer lazily, on the
//     first primitive call
//
// # Reads
//
// FillBuffer reads in ChunkSize pieces and keeps reading while the peer has
// more immediately available, so a single fill drains what already sits in
// the kernel receive buffer. An expired read timeout is not an error.
//
// # Duplicates
//
// Sock.Duplicate returns a second handle on the same connection with its own
// Buffer. All handles share one close state: closing any of them shuts the
// stream down in both directions exactly once, and every handle then fails
// with net.ErrClosed.
//
// # Capture
//
// Every chunk read, every send and every state change is reported to the
// configured log.Logger under the connection's ID.
package transport
