// Package config loads tube settings from YAML or TOML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/pwngo/pwn/pkg/log"
	"github.com/pwngo/pwn/pkg/packing"
	"github.com/pwngo/pwn/pkg/transport"
	"github.com/pwngo/pwn/pkg/tube"
)

// Environment overrides.
const (
	EnvLogLevel = "TUBE_LOG_LEVEL"
	EnvNoColor  = "TUBE_NO_COLOR"
	EnvCapture  = "TUBE_CAPTURE"
)

// Configuration errors.
var (
	ErrUnknownFormat = errors.New("unknown config file format")
	ErrInvalidPort   = errors.New("invalid port")
	ErrInvalidValue  = errors.New("invalid value")
)

// Config holds everything the tube CLI and scripts can configure.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// NoColor disables ANSI colors on the console.
	NoColor bool `yaml:"no_color" toml:"no_color"`

	// Prompt is shown by the interactive prompt.
	Prompt string `yaml:"prompt" toml:"prompt"`

	// ConnectTimeout bounds dialing (0 = none).
	ConnectTimeout time.Duration `yaml:"connect_timeout" toml:"connect_timeout"`

	// PollInterval is the fill timeout between delimiter scans.
	PollInterval time.Duration `yaml:"poll_interval" toml:"poll_interval"`

	// CleanTimeout is the read budget of each interactive reader pass.
	CleanTimeout time.Duration `yaml:"clean_timeout" toml:"clean_timeout"`

	// Capture is the path of a traffic capture file (empty = off).
	Capture string `yaml:"capture" toml:"capture"`

	// Arch names the packing architecture (e.g. amd64, i386).
	Arch string `yaml:"arch" toml:"arch"`

	Listen ListenConfig `yaml:"listen" toml:"listen"`
}

// ListenConfig configures the listen command.
type ListenConfig struct {
	// Host to bind (default: all interfaces).
	Host string `yaml:"host" toml:"host"`

	// Port to bind (0 = OS-assigned).
	Port int `yaml:"port" toml:"port"`

	// Advertise publishes the listener via mDNS.
	Advertise bool `yaml:"advertise" toml:"advertise"`

	// Instance is the mDNS instance name (default derived from the port).
	Instance string `yaml:"instance" toml:"instance"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LogLevel:       "info",
		Prompt:         tube.DefaultPrompt,
		ConnectTimeout: 10 * time.Second,
		PollInterval:   tube.DefaultPollInterval,
		CleanTimeout:   tube.DefaultCleanTimeout,
		Arch:           "i386",
		Listen: ListenConfig{
			Host: transport.DefaultListenHost,
		},
	}
}

// Load reads path on top of the defaults, then applies environment
// overrides. The format is chosen by extension: .yaml, .yml or .toml.
// An empty path yields the defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case ".toml":
			if _, err := toml.Decode(string(data), &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		default:
			return Config{}, fmt.Errorf("%w: %s (use .yaml, .yml or .toml)", ErrUnknownFormat, path)
		}
	}

	ApplyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvNoColor))); err == nil {
		cfg.NoColor = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCapture)); v != "" {
		cfg.Capture = v
	}
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Listen.Port)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("%w: connect_timeout %s", ErrInvalidValue, c.ConnectTimeout)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("%w: poll_interval %s", ErrInvalidValue, c.PollInterval)
	}
	if c.CleanTimeout < 0 {
		return fmt.Errorf("%w: clean_timeout %s", ErrInvalidValue, c.CleanTimeout)
	}
	if _, err := packing.ParseArch(c.Arch); err != nil {
		return err
	}
	return nil
}

// TubeConfig converts to a tube.Config using logger for diagnostics.
func (c Config) TubeConfig(logger *slog.Logger) tube.Config {
	return tube.Config{
		PollInterval: c.PollInterval,
		CleanTimeout: c.CleanTimeout,
		Prompt:       c.Prompt,
		Logger:       logger,
	}
}

// TransportConfig converts to a transport.Config.
func (c Config) TransportConfig(logger *slog.Logger, capture log.Logger) transport.Config {
	return transport.Config{
		ConnectTimeout: c.ConnectTimeout,
		Capture:        capture,
		Logger:         logger,
	}
}

// PackingContext returns the packing context for the configured arch.
func (c Config) PackingContext() packing.Context {
	arch, err := packing.ParseArch(c.Arch)
	if err != nil {
		arch = packing.I386
	}
	return packing.Context{Arch: arch}
}
