package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pwngo/pwn/pkg/log"
	"github.com/pwngo/pwn/pkg/tube"
)

// stream is the connection shared by a Sock and its duplicates.
type stream struct {
	conn      net.Conn
	closeOnce sync.Once
	closeErr  error
}

// halfCloser is implemented by *net.TCPConn.
type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// close shuts both directions down and releases the connection.
// It reports whether this call did the work.
func (s *stream) close() (bool, error) {
	first := false
	s.closeOnce.Do(func() {
		first = true
		if hc, ok := s.conn.(halfCloser); ok {
			_ = hc.CloseRead()
			_ = hc.CloseWrite()
		}
		s.closeErr = s.conn.Close()
	})
	return first, s.closeErr
}

// Sock is a connected byte stream with a private Buffer.
type Sock struct {
	stream *stream
	buffer *tube.Buffer
	config Config
	role   log.Role
	chunk  []byte
}

// NewSock wraps an already-connected stream.
func NewSock(conn net.Conn, config Config) *Sock {
	return newSock(conn, config.withDefaults(), log.RoleUnknown, nil)
}

func newSock(conn net.Conn, config Config, role log.Role, buffer *tube.Buffer) *Sock {
	if buffer == nil {
		buffer = tube.NewBuffer()
	}
	return &Sock{
		stream: &stream{conn: conn},
		buffer: buffer,
		config: config,
		role:   role,
		chunk:  make([]byte, ChunkSize),
	}
}

// ConnectionID returns the capture ID of the connection.
func (s *Sock) ConnectionID() string {
	return s.config.ConnectionID
}

// LocalAddr returns the local network address.
func (s *Sock) LocalAddr() net.Addr {
	return s.stream.conn.LocalAddr()
}

// RemoteAddr returns the peer's network address.
func (s *Sock) RemoteAddr() net.Addr {
	return s.stream.conn.RemoteAddr()
}

// Buffer returns the Sock's pending-read buffer.
func (s *Sock) Buffer() *tube.Buffer {
	return s.buffer
}

// FillBuffer reads everything the peer has made available, waiting up to
// timeout for the first byte (tube.NoTimeout waits forever).
//
// It returns the number of bytes added to the Buffer. An expired timeout is
// not an error. If a read fails after some bytes were read, those bytes are
// reported and the failure surfaces on the next call.
func (s *Sock) FillBuffer(timeout time.Duration) (int, error) {
	conn := s.stream.conn

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return 0, s.readError(err)
	}

	total := 0
	for {
		n, err := conn.Read(s.chunk)
		if n > 0 {
			data := s.chunk[:n]
			s.buffer.Add(data)
			total += n
			s.logData(log.DirectionIn, data)
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) || total > 0 {
				return total, nil
			}
			return 0, s.readError(err)
		}
		if n < ChunkSize {
			return total, nil
		}

		// A full chunk: more may be waiting, but don't block for it.
		next := time.Now().Add(DrainTimeout)
		if !deadline.IsZero() && deadline.Before(next) {
			next = deadline
		}
		if err := conn.SetReadDeadline(next); err != nil {
			return total, nil
		}
	}
}

// readError records a read failure and returns it unchanged so callers can
// match io.EOF and net.ErrClosed.
func (s *Sock) readError(err error) error {
	s.logError(err, "read")
	return err
}

// RawSend writes data in a single write. A short write is an error and is
// not retried.
func (s *Sock) RawSend(data []byte) error {
	n, err := s.stream.conn.Write(data)
	if n > 0 {
		s.logData(log.DirectionOut, data[:n])
	}
	if err != nil {
		s.logError(err, "write")
		return fmt.Errorf("write failed: %w", err)
	}
	if n != len(data) {
		err := fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(data))
		s.logError(err, "write")
		return err
	}
	return nil
}

// Close shuts the stream down in both directions. Buffered bytes remain
// readable from the Buffer. Closing any duplicate closes them all.
func (s *Sock) Close() error {
	first, err := s.stream.close()
	if first {
		s.logState(log.StateConnected, log.StateClosed, "")
		s.config.debug("Closed connection", "conn_id", s.config.ConnectionID)
	}
	return err
}

// Duplicate returns a second handle on the same connection with its own
// empty Buffer.
func (s *Sock) Duplicate() (tube.Transport, error) {
	return &Sock{
		stream: s.stream,
		buffer: tube.NewBuffer(),
		config: s.config,
		role:   s.role,
		chunk:  make([]byte, ChunkSize),
	}, nil
}

func (s *Sock) event(category log.Category, direction log.Direction) log.Event {
	ev := log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.config.ConnectionID,
		Direction:    direction,
		Category:     category,
		LocalRole:    s.role,
	}
	if addr := s.stream.conn.LocalAddr(); addr != nil {
		ev.LocalAddr = addr.String()
	}
	if addr := s.stream.conn.RemoteAddr(); addr != nil {
		ev.RemoteAddr = addr.String()
	}
	return ev
}

func (s *Sock) logData(direction log.Direction, data []byte) {
	ev := s.event(log.CategoryData, direction)
	ev.Data = log.NewDataEvent(data)
	s.config.Capture.Log(ev)
}

func (s *Sock) logState(oldState, newState, reason string) {
	ev := s.event(log.CategoryState, log.DirectionIn)
	ev.StateChange = &log.StateChangeEvent{
		OldState: oldState,
		NewState: newState,
		Reason:   reason,
	}
	s.config.Capture.Log(ev)
}

func (s *Sock) logError(err error, context string) {
	direction := log.DirectionIn
	if context == "write" {
		direction = log.DirectionOut
	}
	ev := s.event(log.CategoryError, direction)
	ev.Error = &log.ErrorEventData{
		Message: err.Error(),
		Context: context,
	}
	s.config.Capture.Log(ev)
}
