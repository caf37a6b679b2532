package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pwngo/pwn/pkg/discovery"
	"github.com/pwngo/pwn/pkg/transport"
	"github.com/pwngo/pwn/pkg/tube"
)

func runListen(args []string) error {
	fs, g := newFlagSet("listen", "", "Wait for one peer and hand the session to the terminal")
	host := fs.String("host", "", "Address to bind (default: all interfaces)")
	port := fs.Int("port", 0, "Port to bind (default: OS-assigned)")
	advertise := fs.Bool("advertise", false, "Advertise the listener via mDNS")
	instance := fs.String("instance", "", "mDNS instance name (default: tube-<port>)")
	iface := fs.String("iface", "", "Network interface for mDNS (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := g.load(fs)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Listen.Host = *host
		case "port":
			cfg.Listen.Port = *port
		case "advertise":
			cfg.Listen.Advertise = *advertise
		case "instance":
			cfg.Listen.Instance = *instance
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	return s.finish(s.listen(*iface))
}

func (s *session) listen(iface string) error {
	l, err := transport.Listen(s.cfg.Listen.Host, s.cfg.Listen.Port, s.cfg.TransportConfig(s.logger, s.capture))
	if err != nil {
		return err
	}
	defer l.Close()

	var adv advertiser
	if s.cfg.Listen.Advertise {
		adv = discovery.NewAdvertiser(discovery.Config{Interface: iface, Logger: s.logger})
	}

	// Ctrl-C while nobody has connected closes the listener.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = s.awaitPeer(ctx, l, adv)
	stop()
	if err != nil {
		return err
	}

	return s.interactive(tube.New(l, s.cfg.TubeConfig(s.logger)))
}

// advertiser is the part of discovery.Advertiser that listen uses.
type advertiser interface {
	Advertise(info discovery.ListenerInfo) error
	StopAll()
}

// awaitPeer advertises l when adv is set and blocks until a peer connects
// or ctx ends. The listener accepts a single peer, so the advert is
// withdrawn before awaitPeer returns.
func (s *session) awaitPeer(ctx context.Context, l *transport.Listener, adv advertiser) error {
	if adv != nil {
		defer adv.StopAll()

		err := adv.Advertise(discovery.ListenerInfo{
			Instance: s.cfg.Listen.Instance,
			Port:     l.Port(),
			ID:       l.ConnectionID(),
		})
		if err != nil {
			s.logger.Warn("Failed to advertise listener", "error", err)
		}
	}

	release := context.AfterFunc(ctx, func() { _ = l.Close() })
	defer release()
	return l.WaitForConnection()
}
