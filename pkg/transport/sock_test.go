package transport

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwngo/pwn/pkg/log"
	"github.com/pwngo/pwn/pkg/tube"
)

func TestSockFillTimeoutIsZero(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	s := NewSock(a, Config{})
	defer s.Close()

	n, err := s.FillBuffer(20 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, s.Buffer().Len())
}

func TestSockFillReadsAvailable(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	s := NewSock(a, Config{})
	defer s.Close()

	go func() { _, _ = b.Write([]byte("hello")) }()

	n, err := s.FillBuffer(tube.NoTimeout)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("hello"), s.Buffer().Bytes())
}

func TestSockFillLargePayload(t *testing.T) {
	l, r := pair(t, Config{}, Config{})

	payload := bytes.Repeat([]byte("A"), 3*ChunkSize+17)
	require.NoError(t, r.RawSend(payload))

	tb := tube.New(l, tube.DefaultConfig())
	got, err := tb.RecvExactly(len(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSockFillEOF(t *testing.T) {
	l, r := pair(t, Config{}, Config{})

	require.NoError(t, r.RawSend([]byte("bye")))
	require.NoError(t, r.Close())

	tb := tube.New(l, tube.DefaultConfig())
	got, err := tb.RecvExactly(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("bye"), got)

	// Drained: the next read reports the peer's close.
	n, err := l.FillBuffer(tube.NoTimeout)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSockSendAfterCloseFails(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	s := NewSock(a, Config{})

	require.NoError(t, s.Close())
	err := s.RawSend([]byte("x"))
	assert.Error(t, err)
}

func TestSockCloseIsIdempotent(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	rec := &recorder{}
	s := NewSock(a, Config{Capture: rec})

	require.NoError(t, s.Close())
	_ = s.Close()

	assert.Equal(t, []string{"CLOSED"}, rec.states())
}

func TestSockConnectionID(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	s := NewSock(a, Config{ConnectionID: "fixed"})
	defer s.Close()
	assert.Equal(t, "fixed", s.ConnectionID())

	generated := NewSock(b, Config{})
	assert.Len(t, generated.ConnectionID(), 36)
}

func TestDuplicateSharesConnection(t *testing.T) {
	l, r := pair(t, Config{}, Config{})

	dup, err := r.Duplicate()
	require.NoError(t, err)
	assert.NotSame(t, r.Buffer(), dup.Buffer())

	require.NoError(t, dup.RawSend([]byte("via dup\n")))

	tb := tube.New(l, tube.DefaultConfig())
	line, err := tb.RecvLine()
	require.NoError(t, err)
	assert.Equal(t, []byte("via dup\n"), line)
}

func TestDuplicateCloseClosesBoth(t *testing.T) {
	l, r := pair(t, Config{}, Config{})

	dup, err := r.Duplicate()
	require.NoError(t, err)
	require.NoError(t, dup.Close())

	assert.Error(t, r.RawSend([]byte("x")))

	_, err = r.FillBuffer(tube.NoTimeout)
	assert.Error(t, err)

	// The peer sees the stream end.
	_, err = l.FillBuffer(time.Second)
	assert.ErrorIs(t, err, io.EOF)

	// Closing the original afterwards is harmless.
	assert.NoError(t, r.Close())
}

func TestSockCapturesTraffic(t *testing.T) {
	lrec, rrec := &recorder{}, &recorder{}
	l, r := pair(t, Config{Capture: lrec}, Config{Capture: rrec})

	require.NoError(t, r.RawSend([]byte("ping")))
	tb := tube.New(l, tube.DefaultConfig())
	got, err := tb.RecvExactly(4)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), got)

	assert.Equal(t, []byte("ping"), rrec.data(log.DirectionOut))
	assert.Equal(t, []byte("ping"), lrec.data(log.DirectionIn))
	assert.Equal(t, []string{"CONNECTING", "CONNECTED"}, rrec.states())
	assert.Equal(t, []string{"LISTENING", "CONNECTED"}, lrec.states())
}
