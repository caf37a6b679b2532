package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// Advertiser publishes listeners via zeroconf.
type Advertiser struct {
	config Config

	mu      sync.Mutex
	servers map[string]*zeroconf.Server // keyed by instance
}

// NewAdvertiser creates a new mDNS advertiser.
func NewAdvertiser(config Config) *Advertiser {
	return &Advertiser{
		config:  config,
		servers: make(map[string]*zeroconf.Server),
	}
}

// Advertise registers info. An existing advert of the same instance is
// replaced.
func (a *Advertiser) Advertise(info ListenerInfo) error {
	if info.Instance == "" {
		info.Instance = DefaultInstanceName(info.Port)
	}
	if err := ValidateInstanceName(info.Instance); err != nil {
		return err
	}
	if info.Port <= 0 || info.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, info.Port)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if server, exists := a.servers[info.Instance]; exists {
		server.Shutdown()
		delete(a.servers, info.Instance)
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.Instance,
		ServiceType,
		Domain,
		info.Port,
		TXTRecordsToStrings(EncodeListenerTXT(info)),
		interfaces(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register listener: %w", err)
	}

	a.servers[info.Instance] = server
	if a.config.Logger != nil {
		a.config.Logger.Info("Advertising listener",
			"instance", info.Instance, "service", ServiceType, "port", info.Port)
	}
	return nil
}

// Stop withdraws the advert of instance.
func (a *Advertiser) Stop(instance string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	server, exists := a.servers[instance]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotAdvertised, instance)
	}
	server.Shutdown()
	delete(a.servers, instance)
	return nil
}

// StopAll withdraws every advert.
func (a *Advertiser) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for instance, server := range a.servers {
		server.Shutdown()
		delete(a.servers, instance)
	}
}

// Advertised reports the instances currently registered.
func (a *Advertiser) Advertised() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	names := make([]string, 0, len(a.servers))
	for instance := range a.servers {
		names = append(names, instance)
	}
	return names
}

// Browser finds advertised listeners via zeroconf.
type Browser struct {
	config Config
}

// NewBrowser creates a new mDNS browser.
func NewBrowser(config Config) *Browser {
	return &Browser{config: config}
}

// Browse streams listeners until ctx is done. Entries are aggregated by
// instance name; addresses seen on more than one interface are merged
// into the first emitted Service.
func (b *Browser) Browse(ctx context.Context) (<-chan *Service, error) {
	out := make(chan *Service)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if ifaces := interfaces(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	go func() {
		defer close(out)

		services := make(map[string]*Service)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToService(entry)

				if existing, found := services[svc.Instance]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}
				services[svc.Instance] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entryAddresses(entry))
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		if err := zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...); err != nil && b.config.Logger != nil {
			b.config.Logger.Warn("mDNS browse failed", "error", err)
		}
	}()

	return out, nil
}

// Find browses until a listener named instance appears. An empty
// instance matches the first listener found.
func (b *Browser) Find(ctx context.Context, instance string) (*Service, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, BrowseTimeout)
		defer cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for svc := range results {
		if instance == "" || svc.Instance == instance {
			return svc, nil
		}
	}
	if instance == "" {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, instance)
}

// interfaces resolves name to an interface list. Nil means all.
func interfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

func entryToService(entry *zeroconf.ServiceEntry) *Service {
	return newService(entry.Instance, entry.HostName, entry.Port, entry.Text, entryAddresses(entry))
}

func newService(instance, host string, port int, text, addrs []string) *Service {
	txt := StringsToTXTRecords(text)
	return &Service{
		Instance:  instance,
		Host:      host,
		Port:      port,
		Addresses: addrs,
		ID:        txt[TXTKeyID],
		Version:   txt[TXTKeyVersion],
	}
}

func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses filters gone out of addresses.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, addr := range gone {
		toRemove[addr] = true
	}
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
