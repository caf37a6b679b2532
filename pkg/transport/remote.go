package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/pwngo/pwn/pkg/log"
)

// Remote is a Sock obtained by dialing a host and port.
// All tube primitives are the Sock's; host and port are kept for diagnostics.
type Remote struct {
	*Sock
	host string
	port int
}

// Dial connects to host:port. Resolution and connect failures are returned
// as-is (wrapped) and never retried.
func Dial(ctx context.Context, host string, port int, config Config) (*Remote, error) {
	config = config.withDefaults()
	address := net.JoinHostPort(host, strconv.Itoa(port))

	config.info("Opening connection to " + address)
	config.Capture.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: config.ConnectionID,
		Direction:    log.DirectionOut,
		Category:     log.CategoryState,
		LocalRole:    log.RoleClient,
		RemoteAddr:   address,
		StateChange:  &log.StateChangeEvent{NewState: log.StateConnecting},
	})

	// Apply timeout from config if context doesn't have one
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		config.Capture.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: config.ConnectionID,
			Direction:    log.DirectionOut,
			Category:     log.CategoryError,
			LocalRole:    log.RoleClient,
			RemoteAddr:   address,
			Error:        &log.ErrorEventData{Message: err.Error(), Context: "dial"},
		})
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	sock := newSock(conn, config, log.RoleClient, nil)
	sock.logState(log.StateConnecting, log.StateConnected, "")
	config.debug("Connected", "addr", address, "conn_id", config.ConnectionID)

	return &Remote{Sock: sock, host: host, port: port}, nil
}

// Host returns the host the Remote was dialed with.
func (r *Remote) Host() string {
	return r.host
}

// Port returns the port the Remote was dialed with.
func (r *Remote) Port() int {
	return r.port
}

// String returns "host:port".
func (r *Remote) String() string {
	return net.JoinHostPort(r.host, strconv.Itoa(r.port))
}
