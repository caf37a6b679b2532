package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pwngo/pwn/pkg/log"
)

// recorder is a capture logger that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recorder) Log(event log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, ev := range r.events {
		if ev.StateChange != nil {
			out = append(out, ev.StateChange.NewState)
		}
	}
	return out
}

func (r *recorder) data(direction log.Direction) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []byte
	for _, ev := range r.events {
		if ev.Data != nil && ev.Direction == direction {
			out = append(out, ev.Data.Data...)
		}
	}
	return out
}

// pair returns a listener on loopback and a Remote dialed to it.
func pair(t *testing.T, lcfg, rcfg Config) (*Listener, *Remote) {
	t.Helper()

	l, err := Listen("127.0.0.1", 0, lcfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := Dial(ctx, "127.0.0.1", l.Port(), rcfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return l, r
}
