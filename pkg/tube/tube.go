package tube

import (
	"log/slog"
	"time"
)

// Tube defaults.
const (
	// DefaultPollInterval is the fill timeout RecvUntil uses between scans.
	DefaultPollInterval = 50 * time.Millisecond

	// DefaultCleanTimeout is the per-read budget the interactive reader uses.
	DefaultCleanTimeout = 100 * time.Millisecond

	// DefaultPrompt is shown by the interactive prompt.
	DefaultPrompt = "$ "
)

// Config configures a Tube.
type Config struct {
	// PollInterval is the fill timeout between delimiter scans (default: 50ms).
	PollInterval time.Duration

	// CleanTimeout is the read budget of each interactive reader pass (default: 100ms).
	CleanTimeout time.Duration

	// Prompt is the interactive prompt string (default: "$ ").
	Prompt string

	// Logger is the optional logger for diagnostics.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns the default tube configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		CleanTimeout: DefaultCleanTimeout,
		Prompt:       DefaultPrompt,
	}
}

// Tube implements the receive, send and interactive operations on top of a
// Transport. The algorithms are shared by every transport.
//
// A Tube is not safe for concurrent use, matching the Buffer it drains.
type Tube struct {
	transport Transport
	config    Config
}

// New wraps a transport. Zero config fields take their defaults.
func New(t Transport, config Config) *Tube {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.CleanTimeout <= 0 {
		config.CleanTimeout = DefaultCleanTimeout
	}
	if config.Prompt == "" {
		config.Prompt = DefaultPrompt
	}
	return &Tube{transport: t, config: config}
}

// Transport returns the wrapped transport.
func (t *Tube) Transport() Transport {
	return t.transport
}

// Recv blocks until a read completes and returns everything buffered.
// It does not guarantee more than one byte.
func (t *Tube) Recv() ([]byte, error) {
	return t.recv(0, NoTimeout)
}

// RecvN performs a single blocking fill and returns at most n bytes.
// It does not wait for n bytes to arrive; use RecvExactly for that.
func (t *Tube) RecvN(n int) ([]byte, error) {
	return t.recv(n, NoTimeout)
}

func (t *Tube) recv(n int, timeout time.Duration) ([]byte, error) {
	if _, err := t.transport.FillBuffer(timeout); err != nil {
		return nil, err
	}
	return t.transport.Buffer().Get(n), nil
}

// RecvExactly fills until n bytes are buffered and returns exactly n bytes.
// On a read error the bytes gathered so far stay buffered.
func (t *Tube) RecvExactly(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	buf := t.transport.Buffer()
	for buf.Len() < n {
		if _, err := t.transport.FillBuffer(NoTimeout); err != nil {
			return nil, err
		}
	}
	if n == 0 {
		return []byte{}, nil
	}
	return buf.Get(n), nil
}

// RecvUntil waits until delim has been received and returns everything up to
// and including it. Bytes after the delimiter stay buffered.
//
// RecvUntil blocks until the delimiter shows up or a read fails.
func (t *Tube) RecvUntil(delim []byte) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrEmptyDelimiter
	}
	for {
		buf := t.transport.Buffer()
		if pos := buf.Index(delim); pos >= 0 {
			return buf.Get(pos + len(delim)), nil
		}
		if _, err := t.transport.FillBuffer(t.config.PollInterval); err != nil {
			return nil, err
		}
	}
}

// RecvLine receives up to and including the next newline.
func (t *Tube) RecvLine() ([]byte, error) {
	return t.RecvUntil([]byte{'\n'})
}

// RecvRepeat keeps filling with the given timeout until a read returns
// nothing, then returns everything buffered.
//
// A read error after data was gathered is reported as the end of the data;
// the error is returned only when nothing was buffered.
func (t *Tube) RecvRepeat(timeout time.Duration) ([]byte, error) {
	buf := t.transport.Buffer()
	for {
		n, err := t.transport.FillBuffer(timeout)
		if err != nil {
			if buf.Len() > 0 {
				return buf.Get(0), nil
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return buf.Get(0), nil
}

// Clean returns everything the peer has sent within the timeout.
// A zero timeout only drains what is already buffered and issues no read.
func (t *Tube) Clean(timeout time.Duration) ([]byte, error) {
	if timeout == 0 {
		return t.transport.Buffer().Get(0), nil
	}
	return t.RecvRepeat(timeout)
}

// Unget pushes data back so the next receive returns it first.
func (t *Tube) Unget(data []byte) {
	t.transport.Buffer().Unget(data)
}

// Send writes data to the peer.
func (t *Tube) Send(data []byte) error {
	if t.config.Logger != nil {
		t.config.Logger.Debug("Sending bytes", "count", len(data))
	}
	return t.transport.RawSend(data)
}

// SendLine writes data followed by a newline.
func (t *Tube) SendLine(data []byte) error {
	line := make([]byte, 0, len(data)+1)
	line = append(line, data...)
	line = append(line, '\n')
	return t.Send(line)
}

// Close closes the transport. Bytes already buffered can still be read
// with Clean(0).
func (t *Tube) Close() error {
	return t.transport.Close()
}
