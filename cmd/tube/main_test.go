package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwngo/pwn/pkg/config"
	"github.com/pwngo/pwn/pkg/discovery"
	"github.com/pwngo/pwn/pkg/packing"
	"github.com/pwngo/pwn/pkg/transport"
)

func TestParsePort(t *testing.T) {
	port, err := parsePort("1337")
	require.NoError(t, err)
	assert.Equal(t, 1337, port)

	for _, bad := range []string{"0", "65536", "http", "-1"} {
		_, err := parsePort(bad)
		assert.Error(t, err, bad)
	}
}

func TestPackValues(t *testing.T) {
	out, err := packValues(config.Default(), "amd64", 0, []string{"0x401136"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x36, 0x11, 0x40, 0, 0, 0, 0, 0}, out)

	out, err = packValues(config.Default(), "", 16, []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0}, out)

	_, err = packValues(config.Default(), "", 8, []string{"256"})
	assert.ErrorIs(t, err, packing.ErrOverflow)

	_, err = packValues(config.Default(), "pdp11", 0, []string{"1"})
	assert.ErrorIs(t, err, packing.ErrUnknownArch)
}

func TestRunPackQuoted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runPack([]string{"-arch", "powerpc", "0x41424344"}, &buf))
	assert.Equal(t, "\"ABCD\"\n", buf.String())

	buf.Reset()
	require.NoError(t, runPack([]string{"-raw", "0x41"}, &buf))
	assert.Equal(t, []byte{0x41, 0, 0, 0}, buf.Bytes())
}

func TestGlobalFlagsOverrideConfig(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "tube.yaml")
	require.NoError(t, writeFile(path, "log_level: warn\ncapture: file.tlog\n"))

	fs, g := newFlagSet("connect", "", "test")
	fs.SetOutput(new(bytes.Buffer))
	require.NoError(t, fs.Parse([]string{"-config", path, "-log-level", "debug"}))

	cfg, err := g.load(fs)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "file.tlog", cfg.Capture)
}

func TestGlobalFlagsRejectBadLevel(t *testing.T) {
	fs, g := newFlagSet("connect", "", "test")
	fs.Init("connect", flag.ContinueOnError)
	require.NoError(t, fs.Parse([]string{"-log-level", "loud"}))

	_, err := g.load(fs)
	assert.Error(t, err)
}

func TestSessionCapture(t *testing.T) {
	cfg := config.Default()
	cfg.Capture = filepath.Join(t.TempDir(), "s.tlog")

	s, err := newSession(cfg)
	require.NoError(t, err)
	require.NotNil(t, s.capture)
	assert.NoError(t, s.finish(nil))
}

func TestSessionWithoutCapture(t *testing.T) {
	s, err := newSession(config.Default())
	require.NoError(t, err)
	assert.Nil(t, s.capture)
	assert.NoError(t, s.Close())
}

func TestPrintServices(t *testing.T) {
	results := make(chan *discovery.Service, 1)
	results <- &discovery.Service{Instance: "tube-4444", Addresses: []string{"10.0.0.2"}, Port: 4444, ID: "abc"}
	close(results)

	var buf bytes.Buffer
	require.NoError(t, printServices(&buf, results))
	assert.Contains(t, buf.String(), "tube-4444")
	assert.Contains(t, buf.String(), "10.0.0.2:4444")
	assert.Contains(t, buf.String(), "id=abc")

	empty := make(chan *discovery.Service)
	close(empty)
	buf.Reset()
	require.NoError(t, printServices(&buf, empty))
	assert.Equal(t, "No listeners found\n", buf.String())
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// fakeAdvertiser records the advert lifecycle.
type fakeAdvertiser struct {
	mu      sync.Mutex
	infos   []discovery.ListenerInfo
	stopped int
}

func (f *fakeAdvertiser) Advertise(info discovery.ListenerInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, info)
	return nil
}

func (f *fakeAdvertiser) StopAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

func (f *fakeAdvertiser) state() ([]discovery.ListenerInfo, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]discovery.ListenerInfo(nil), f.infos...), f.stopped
}

func TestAwaitPeerWithdrawsAdvert(t *testing.T) {
	s, err := newSession(config.Default())
	require.NoError(t, err)
	defer s.Close()

	l, err := transport.Listen("127.0.0.1", 0, transport.Config{})
	require.NoError(t, err)
	defer l.Close()

	adv := &fakeAdvertiser{}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r, err := transport.Dial(ctx, "127.0.0.1", l.Port(), transport.Config{})
		if err == nil {
			defer r.Close()
			_ = r.RawSend([]byte("hi"))
		}
	}()

	require.NoError(t, s.awaitPeer(context.Background(), l, adv))
	assert.True(t, l.Accepted())

	infos, stopped := adv.state()
	require.Len(t, infos, 1)
	assert.Equal(t, l.Port(), infos[0].Port)
	assert.Equal(t, l.ConnectionID(), infos[0].ID)
	assert.Equal(t, 1, stopped, "advert must be gone once the peer is accepted")
}

func TestAwaitPeerCanceled(t *testing.T) {
	s, err := newSession(config.Default())
	require.NoError(t, err)
	defer s.Close()

	l, err := transport.Listen("127.0.0.1", 0, transport.Config{})
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	adv := &fakeAdvertiser{}
	time.AfterFunc(20*time.Millisecond, cancel)

	err = s.awaitPeer(ctx, l, adv)
	assert.ErrorIs(t, err, transport.ErrListenerClosed)

	_, stopped := adv.state()
	assert.Equal(t, 1, stopped)
}

func TestAwaitPeerWithoutAdvertiser(t *testing.T) {
	s, err := newSession(config.Default())
	require.NoError(t, err)
	defer s.Close()

	l, err := transport.Listen("127.0.0.1", 0, transport.Config{})
	require.NoError(t, err)
	defer l.Close()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if r, err := transport.Dial(ctx, "127.0.0.1", l.Port(), transport.Config{}); err == nil {
			defer r.Close()
			_ = r.RawSend([]byte("hi"))
		}
	}()

	require.NoError(t, s.awaitPeer(context.Background(), l, nil))
	assert.True(t, l.Accepted())
}

func TestSessionConsoleRedirect(t *testing.T) {
	cfg := config.Default()
	cfg.NoColor = true
	s, err := newSession(cfg)
	require.NoError(t, err)
	defer s.Close()

	var buf bytes.Buffer
	s.console.redirect(&buf)
	s.logger.Info("Switching to interactive mode")
	s.console.redirect(os.Stderr)
	s.logger.Info("back on stderr")

	assert.Contains(t, buf.String(), "[*] Switching to interactive mode")
	assert.NotContains(t, buf.String(), "back on stderr")
}
