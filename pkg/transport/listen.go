package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pwngo/pwn/pkg/log"
	"github.com/pwngo/pwn/pkg/tube"
)

// Listener is a bound TCP endpoint that accepts exactly one peer.
//
// Binding happens in Listen; the accept is deferred to the first call of any
// tube primitive (FillBuffer, Buffer, RawSend, Duplicate). Every later call
// reuses the same Sock. The listening socket is closed once the peer is
// accepted.
type Listener struct {
	config   Config
	listener net.Listener
	addr     net.Addr
	buffer   *tube.Buffer

	mu     sync.Mutex
	sock   *Sock
	closed atomic.Bool
}

// Listen binds host:port and starts listening. An empty host binds all
// interfaces and port 0 lets the OS pick; Addr reports the result right away.
func Listen(host string, port int, config Config) (*Listener, error) {
	config = config.withDefaults()
	if host == "" {
		host = DefaultListenHost
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	config.debug("Trying to bind", "addr", address)

	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen failed: %w", err)
	}

	l := &Listener{
		config:   config,
		listener: ln,
		addr:     ln.Addr(),
		buffer:   tube.NewBuffer(),
	}
	config.info("Waiting for connections on " + l.addr.String())
	config.Capture.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: config.ConnectionID,
		Category:     log.CategoryState,
		LocalRole:    log.RoleServer,
		LocalAddr:    l.addr.String(),
		StateChange:  &log.StateChangeEvent{NewState: log.StateListening},
	})
	return l, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.addr
}

// Port returns the bound TCP port.
func (l *Listener) Port() int {
	if tcp, ok := l.addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// ConnectionID returns the capture ID used for the accepted connection.
func (l *Listener) ConnectionID() string {
	return l.config.ConnectionID
}

// WaitForConnection blocks until the peer is accepted. It returns
// ErrListenerClosed if Close is called first.
func (l *Listener) WaitForConnection() error {
	_, err := l.accept()
	return err
}

// Accepted reports whether the peer has been accepted.
func (l *Listener) Accepted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sock != nil
}

// accept returns the peer's Sock, accepting it on first use.
// A failed accept is not remembered; the next call tries again.
func (l *Listener) accept() (*Sock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sock != nil {
		return l.sock, nil
	}
	if l.closed.Load() {
		return nil, ErrListenerClosed
	}

	conn, err := l.listener.Accept()
	if err != nil {
		if l.closed.Load() {
			return nil, ErrListenerClosed
		}
		return nil, fmt.Errorf("accept failed: %w", err)
	}
	// Single connection: stop listening.
	_ = l.listener.Close()

	l.sock = newSock(conn, l.config, log.RoleServer, l.buffer)
	l.sock.logState(log.StateListening, log.StateConnected, "")
	l.config.info("Got connection from " + conn.RemoteAddr().String())
	return l.sock, nil
}

// FillBuffer accepts the peer if needed, then fills from it.
func (l *Listener) FillBuffer(timeout time.Duration) (int, error) {
	sock, err := l.accept()
	if err != nil {
		return 0, err
	}
	return sock.FillBuffer(timeout)
}

// Buffer accepts the peer if needed and returns its Buffer.
// The Buffer exists from construction, so it is valid even if the accept fails.
func (l *Listener) Buffer() *tube.Buffer {
	if _, err := l.accept(); err != nil {
		l.config.debug("Deferred accept failed", "error", err)
	}
	return l.buffer
}

// RawSend accepts the peer if needed, then sends to it.
func (l *Listener) RawSend(data []byte) error {
	sock, err := l.accept()
	if err != nil {
		return err
	}
	return sock.RawSend(data)
}

// Duplicate accepts the peer if needed and duplicates its Sock.
func (l *Listener) Duplicate() (tube.Transport, error) {
	sock, err := l.accept()
	if err != nil {
		return nil, err
	}
	return sock.Duplicate()
}

// Close closes the accepted Sock, or stops listening if no peer has
// connected yet. It never waits for a peer.
func (l *Listener) Close() error {
	l.closed.Store(true)
	lerr := l.listener.Close()

	l.mu.Lock()
	sock := l.sock
	l.mu.Unlock()

	if sock != nil {
		return sock.Close()
	}
	if errors.Is(lerr, net.ErrClosed) {
		return nil
	}
	return lerr
}
