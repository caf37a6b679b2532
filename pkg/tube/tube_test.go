package tube

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	tb := New(newFake(), Config{})

	assert.Equal(t, DefaultPollInterval, tb.config.PollInterval)
	assert.Equal(t, DefaultCleanTimeout, tb.config.CleanTimeout)
	assert.Equal(t, DefaultPrompt, tb.config.Prompt)
}

func TestRecvReturnsEverythingBuffered(t *testing.T) {
	f := newFake(fill{data: []byte("abc")})
	f.buffer.Add([]byte(">"))
	tb := New(f, DefaultConfig())

	got, err := tb.Recv()
	require.NoError(t, err)
	assert.Equal(t, []byte(">abc"), got)
	assert.Equal(t, []time.Duration{NoTimeout}, f.timeouts)
}

func TestRecvNIsSingleShot(t *testing.T) {
	f := newFake(fill{data: []byte("ab")}, fill{data: []byte("cd")})
	tb := New(f, DefaultConfig())

	got, err := tb.RecvN(4)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), got)
	assert.Equal(t, 1, f.fills())
}

func TestRecvNLeavesRemainder(t *testing.T) {
	f := newFake(fill{data: []byte("abcdef")})
	tb := New(f, DefaultConfig())

	got, err := tb.RecvN(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), got)
	assert.Equal(t, []byte("cdef"), f.buffer.Bytes())
}

func TestRecvPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	tb := New(newFake(fill{err: boom}), DefaultConfig())

	_, err := tb.Recv()
	assert.ErrorIs(t, err, boom)
}

func TestRecvExactly(t *testing.T) {
	f := newFake(fill{data: []byte("ab")}, fill{data: []byte("cd")}, fill{data: []byte("ef")})
	tb := New(f, DefaultConfig())

	got, err := tb.RecvExactly(5)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcde"), got)
	assert.Equal(t, []byte("f"), f.buffer.Bytes())
}

func TestRecvExactlyKeepsDataOnError(t *testing.T) {
	f := newFake(fill{data: []byte("ab")})
	tb := New(f, DefaultConfig())

	_, err := tb.RecvExactly(4)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []byte("ab"), f.buffer.Bytes())
}

func TestRecvExactlyZeroAndNegative(t *testing.T) {
	f := newFake()
	tb := New(f, DefaultConfig())

	got, err := tb.RecvExactly(0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, f.fills())

	_, err = tb.RecvExactly(-1)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestRecvUntilConsumesThroughDelimiter(t *testing.T) {
	f := newFake(fill{data: []byte("user")}, fill{data: []byte("name: rest")})
	tb := New(f, DefaultConfig())

	got, err := tb.RecvUntil([]byte(": "))
	require.NoError(t, err)
	assert.Equal(t, []byte("username: "), got)
	assert.Equal(t, []byte("rest"), f.buffer.Bytes())
}

func TestRecvUntilUsesPollInterval(t *testing.T) {
	f := newFake(fill{}, fill{}, fill{data: []byte("ok\n")})
	tb := New(f, Config{PollInterval: 7 * time.Millisecond})

	got, err := tb.RecvLine()
	require.NoError(t, err)
	assert.Equal(t, []byte("ok\n"), got)
	assert.Equal(t, []time.Duration{
		7 * time.Millisecond, 7 * time.Millisecond, 7 * time.Millisecond,
	}, f.timeouts)
}

func TestRecvUntilScansBufferFirst(t *testing.T) {
	f := newFake()
	f.buffer.Add([]byte("a\nb\n"))
	tb := New(f, DefaultConfig())

	first, err := tb.RecvLine()
	require.NoError(t, err)
	second, err := tb.RecvLine()
	require.NoError(t, err)

	assert.Equal(t, []byte("a\n"), first)
	assert.Equal(t, []byte("b\n"), second)
	assert.Equal(t, 0, f.fills())
}

func TestRecvUntilEmptyDelimiter(t *testing.T) {
	tb := New(newFake(), DefaultConfig())

	_, err := tb.RecvUntil(nil)
	assert.ErrorIs(t, err, ErrEmptyDelimiter)
}

func TestRecvUntilError(t *testing.T) {
	boom := errors.New("reset")
	f := newFake(fill{data: []byte("partial"), err: boom})
	tb := New(f, DefaultConfig())

	_, err := tb.RecvUntil([]byte("\n"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []byte("partial"), f.buffer.Bytes())
}

func TestRecvRepeatStopsOnEmptyRead(t *testing.T) {
	f := newFake(fill{data: []byte("a")}, fill{data: []byte("b")}, fill{}, fill{data: []byte("late")})
	tb := New(f, DefaultConfig())

	got, err := tb.RecvRepeat(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), got)
	assert.Equal(t, 3, f.fills())
}

func TestRecvRepeatKeepsDataOnError(t *testing.T) {
	f := newFake(fill{data: []byte("data")}, fill{err: io.EOF})
	tb := New(f, DefaultConfig())

	got, err := tb.RecvRepeat(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestRecvRepeatErrorWhenEmpty(t *testing.T) {
	f := newFake(fill{err: io.EOF})
	tb := New(f, DefaultConfig())

	_, err := tb.RecvRepeat(10 * time.Millisecond)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCleanZeroDoesNotRead(t *testing.T) {
	f := newFake(fill{data: []byte("unread")})
	f.buffer.Add([]byte("abc"))
	tb := New(f, DefaultConfig())

	got, err := tb.Clean(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
	assert.Equal(t, 0, f.fills())
}

func TestCleanWithTimeout(t *testing.T) {
	f := newFake(fill{data: []byte("x")})
	tb := New(f, DefaultConfig())

	got, err := tb.Clean(5 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestUngetIsReadFirst(t *testing.T) {
	f := newFake()
	f.buffer.Add([]byte("world\n"))
	tb := New(f, DefaultConfig())

	tb.Unget([]byte("hello "))
	got, err := tb.RecvLine()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world\n"), got)
}

func TestSendLine(t *testing.T) {
	f := newFake()
	tb := New(f, DefaultConfig())

	data := make([]byte, 4, 16)
	copy(data, "test")
	require.NoError(t, tb.SendLine(data))
	require.NoError(t, tb.Send([]byte("raw")))

	assert.Equal(t, [][]byte{[]byte("test\n"), []byte("raw")}, f.sent)
	assert.Equal(t, []byte("test"), data)
}

func TestSendError(t *testing.T) {
	f := newFake()
	f.sendErr = errors.New("broken pipe")
	tb := New(f, DefaultConfig())

	assert.ErrorIs(t, tb.SendLine([]byte("x")), f.sendErr)
}

func TestCloseKeepsBufferedData(t *testing.T) {
	f := newFake()
	f.buffer.Add([]byte("left"))
	tb := New(f, DefaultConfig())

	require.NoError(t, tb.Close())
	assert.True(t, f.closed)

	got, err := tb.Clean(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("left"), got)
}

func TestBridgeNeedsDuplicator(t *testing.T) {
	tb := New(newFake(), DefaultConfig())

	err := tb.Bridge(nil, io.Discard)
	assert.ErrorIs(t, err, ErrNotDuplicable)
}
