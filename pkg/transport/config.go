package transport

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pwngo/pwn/pkg/log"
)

// Transport constants.
const (
	// ChunkSize is the size of a single read inside FillBuffer.
	ChunkSize = 1024

	// DrainTimeout bounds the follow-up reads FillBuffer issues after a full chunk.
	DrainTimeout = 10 * time.Millisecond

	// DefaultListenHost binds all IPv4 interfaces.
	DefaultListenHost = "0.0.0.0"
)

// Transport errors.
var (
	// ErrShortWrite indicates the stream accepted fewer bytes than were sent.
	ErrShortWrite = errors.New("short write")

	// ErrListenerClosed indicates the listener was closed before a peer connected.
	ErrListenerClosed = errors.New("listener closed")
)

// Config configures a transport.
type Config struct {
	// ConnectTimeout bounds Dial (0 = no timeout beyond the context).
	ConnectTimeout time.Duration

	// ConnectionID identifies the connection in capture events.
	// A random UUID is used when empty.
	ConnectionID string

	// Capture receives traffic events (optional).
	Capture log.Logger

	// Logger is the optional logger for diagnostics.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// withDefaults fills in the connection ID and a no-op capture.
func (c Config) withDefaults() Config {
	if c.ConnectionID == "" {
		c.ConnectionID = uuid.New().String()
	}
	if c.Capture == nil {
		c.Capture = log.NoopLogger{}
	}
	return c
}

func (c Config) info(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Info(msg, args...)
	}
}

func (c Config) debug(msg string, args ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, args...)
	}
}
