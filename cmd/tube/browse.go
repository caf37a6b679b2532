package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pwngo/pwn/pkg/discovery"
	"github.com/pwngo/pwn/pkg/transport"
	"github.com/pwngo/pwn/pkg/tube"
)

func runBrowse(args []string) error {
	fs, g := newFlagSet("browse", "", "List listeners advertised via mDNS")
	timeout := fs.Duration("timeout", 5*time.Second, "How long to browse")
	iface := fs.String("iface", "", "Network interface for mDNS (default: all)")
	connect := fs.String("connect", "", "Connect to the listener with this instance name")
	if err := fs.Parse(args); err != nil {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	browser := discovery.NewBrowser(discovery.Config{Interface: *iface, Logger: s.logger})

	if *connect != "" {
		svc, err := browser.Find(ctx, *connect)
		if err != nil {
			return s.finish(err)
		}
		stop()
		return s.finish(s.connectService(svc))
	}

	results, err := browser.Browse(ctx)
	if err != nil {
		return s.finish(err)
	}
	return s.finish(printServices(os.Stdout, results))
}

// printServices writes one line per discovered listener until results closes.
func printServices(w io.Writer, results <-chan *discovery.Service) error {
	found := 0
	for svc := range results {
		found++
		if _, err := fmt.Fprintf(w, "%-24s %-28s id=%s\n", svc.Instance, svc.Address(), svc.ID); err != nil {
			return err
		}
	}
	if found == 0 {
		_, err := fmt.Fprintln(w, "No listeners found")
		return err
	}
	return nil
}

func (s *session) connectService(svc *discovery.Service) error {
	host := svc.Host
	if len(svc.Addresses) > 0 {
		host = svc.Addresses[0]
	}

	ctx := context.Background()
	r, err := transport.Dial(ctx, host, svc.Port, s.cfg.TransportConfig(s.logger, s.capture))
	if err != nil {
		return err
	}

	return s.interactive(tube.New(r, s.cfg.TubeConfig(s.logger)))
}
