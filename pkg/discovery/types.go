package discovery

import (
	"errors"
	"log/slog"
	"net"
	"strconv"
	"time"
)

const (
	// ServiceType is the DNS-SD service type of tube listeners.
	ServiceType = "_pwntube._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// Version is the TXT format version.
	Version = "1"

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// BrowseTimeout bounds Find when the context has no deadline.
	BrowseTimeout = 10 * time.Second
)

// TXT record keys.
const (
	TXTKeyID      = "id"
	TXTKeyVersion = "ver"
)

// Discovery errors.
var (
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrEmptyInstanceName   = errors.New("empty instance name")
	ErrInvalidPort         = errors.New("invalid port")
	ErrNotFound            = errors.New("service not found")
	ErrNotAdvertised       = errors.New("instance not advertised")
)

// Config configures advertising and browsing.
type Config struct {
	// Interface restricts mDNS to one network interface (empty = all).
	Interface string

	// TTL of advertised records (0 = zeroconf default).
	TTL time.Duration

	// Logger for diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// ListenerInfo describes a listener to advertise.
type ListenerInfo struct {
	// Instance is the DNS-SD instance name.
	Instance string

	// Port the listener is bound to.
	Port int

	// ID is the listener's connection ID.
	ID string
}

// Service is a discovered listener.
type Service struct {
	Instance  string
	Host      string
	Port      int
	Addresses []string
	ID        string
	Version   string
}

// Address returns a dialable host:port, preferring the first resolved
// address over the host name.
func (s *Service) Address() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// DefaultInstanceName names a listener by its port.
func DefaultInstanceName(port int) string {
	return "tube-" + strconv.Itoa(port)
}
