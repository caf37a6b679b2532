package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pwngo/pwn/pkg/transport"
	"github.com/pwngo/pwn/pkg/tube"
)

func runConnect(args []string) error {
	fs, g := newFlagSet("connect", "<host> <port>", "Connect to host:port and hand the session to the terminal")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("host and port required")
	}
	host := fs.Arg(0)
	port, err := parsePort(fs.Arg(1))
	if err != nil {
		return err
	}

	cfg, err := g.load(fs)
	if err != nil {
		return err
	}
	s, err := newSession(cfg)
	if err != nil {
		return err
	}

	return s.finish(s.connect(host, port))
}

func (s *session) connect(host string, port int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := transport.Dial(ctx, host, port, s.cfg.TransportConfig(s.logger, s.capture))
	if err != nil {
		return err
	}
	stop()

	return s.interactive(tube.New(r, s.cfg.TubeConfig(s.logger)))
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port: %s", s)
	}
	return port, nil
}
