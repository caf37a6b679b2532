package tube

import "time"

// NoTimeout makes FillBuffer block until at least one read completes or fails.
const NoTimeout time.Duration = 0

// Transport is the capability set every tube is built on.
// Implemented by transport.Sock, transport.Remote and transport.Listener.
type Transport interface {
	// FillBuffer pulls newly available bytes into Buffer and returns how many
	// were read. An expired timeout with nothing read returns (0, nil).
	FillBuffer(timeout time.Duration) (int, error)

	// Buffer returns the transport's pending-read buffer.
	Buffer() *Buffer

	// RawSend writes data to the peer unchanged.
	RawSend(data []byte) error

	// Close shuts the connection down. Buffered bytes stay readable.
	Close() error
}

// Duplicator is implemented by transports that can hand out a second,
// independent handle to the same connection. The new handle has its own
// empty Buffer. The interactive bridge needs it to read and write
// concurrently.
type Duplicator interface {
	Duplicate() (Transport, error)
}
