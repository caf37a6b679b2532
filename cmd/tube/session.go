package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pwngo/pwn/pkg/config"
	tubelog "github.com/pwngo/pwn/pkg/log"
	"github.com/pwngo/pwn/pkg/tube"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	capture    string
	noColor    bool
}

func newFlagSet(name, args, summary string) (*flag.FlagSet, *globalFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `tube %s - %s

Usage:
  tube %s [flags] %s

Flags:
`, name, summary, name, args)
		fs.PrintDefaults()
	}

	g := &globalFlags{}
	fs.StringVar(&g.configPath, "config", "", "Configuration file (.yaml, .yml or .toml)")
	fs.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&g.capture, "capture", "", "Write a traffic capture (CBOR) to this file")
	fs.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	return fs, g
}

// load reads the configuration file and applies flags given on the
// command line on top of it.
func (g *globalFlags) load(fs *flag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = g.logLevel
		case "capture":
			cfg.Capture = g.capture
		case "no-color":
			cfg.NoColor = g.noColor
		}
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// session holds what a command needs to run a tube.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	console *consoleOutput
	capture tubelog.Logger
	file    *tubelog.FileLogger
}

// consoleOutput is where the console logger writes. The interactive prompt
// takes it over while it owns the terminal.
type consoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *consoleOutput) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

func (o *consoleOutput) redirect(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w = w
}

// newSession sets up console logging and the optional capture file.
func newSession(cfg config.Config) (*session, error) {
	level, err := tubelog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	console := &consoleOutput{w: os.Stderr}
	logger := tubelog.NewConsoleLogger(console, tubelog.ConsoleOptions{
		Level:   level,
		NoColor: cfg.NoColor,
	})

	s := &session{cfg: cfg, logger: logger, console: console}

	var loggers []tubelog.Logger
	if cfg.Capture != "" {
		s.file, err = tubelog.NewFileLogger(cfg.Capture)
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, s.file)
		logger.Info("Capturing traffic to " + cfg.Capture)
	}
	if level <= slog.LevelDebug {
		loggers = append(loggers, tubelog.NewSlogAdapter(logger))
	}
	if len(loggers) > 0 {
		s.capture = tubelog.NewMultiLogger(loggers...)
	}
	return s, nil
}

// interactive hands t to the terminal. Log lines are printed through the
// prompt so they don't overwrite the input line.
func (s *session) interactive(t *tube.Tube) error {
	defer t.Close()

	text := s.cfg.Prompt
	if text == "" {
		text = tube.DefaultPrompt
	}
	prompt, err := tube.NewReadlinePrompt(text)
	if err != nil {
		return err
	}
	s.console.redirect(prompt.Stdout())
	defer s.console.redirect(os.Stderr)

	return t.Bridge(prompt, prompt.Stdout())
}

// Close flushes the capture file.
func (s *session) Close() error {
	if s.file == nil {
		return nil
	}
	if n := s.file.Dropped(); n > 0 {
		s.logger.Warn("Capture events dropped", "count", n)
	}
	return s.file.Close()
}

// finish closes the session and reports the first error.
func (s *session) finish(err error) error {
	return errors.Join(err, s.Close())
}
