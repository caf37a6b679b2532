package tube

import (
	"io"
	"sync"
	"time"
)

// fill is one scripted FillBuffer result.
type fill struct {
	data []byte
	err  error
}

// fakeTransport replays scripted fills. Once the script is exhausted a
// timed fill returns (0, nil) and an untimed fill returns io.EOF.
type fakeTransport struct {
	buffer *Buffer
	script []fill

	mu       sync.Mutex
	timeouts []time.Duration
	sent     [][]byte
	sendErr  error
	closed   bool
}

func newFake(script ...fill) *fakeTransport {
	return &fakeTransport{buffer: NewBuffer(), script: script}
}

func (f *fakeTransport) FillBuffer(timeout time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.timeouts = append(f.timeouts, timeout)
	if len(f.script) == 0 {
		if timeout == NoTimeout {
			return 0, io.EOF
		}
		return 0, nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	f.buffer.Add(next.data)
	return len(next.data), next.err
}

func (f *fakeTransport) Buffer() *Buffer {
	return f.buffer
}

func (f *fakeTransport) RawSend(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, append([]byte(nil), data...))
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

func (f *fakeTransport) fills() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.timeouts)
}

var _ Transport = (*fakeTransport)(nil)
