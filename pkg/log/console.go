package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// ANSI colors for the level marks.
const (
	colorPurple = "\x1b[35m"
	colorBlue   = "\x1b[34m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
	colorReset  = "\x1b[0m"
)

// ConsoleOptions configures NewConsoleLogger.
type ConsoleOptions struct {
	// Level is the minimum level printed (default: Info).
	Level slog.Leveler

	// NoColor disables ANSI colors.
	NoColor bool
}

// NewConsoleLogger returns an slog.Logger printing lines such as
//
//	[*] Opening connection to example.com:1337
//	[|] Sending bytes count=5
//
// through a zerolog ConsoleWriter.
func NewConsoleLogger(w io.Writer, opts ConsoleOptions) *slog.Logger {
	return slog.New(NewConsoleHandler(w, opts))
}

// NewConsoleHandler returns the slog.Handler behind NewConsoleLogger.
func NewConsoleHandler(w io.Writer, opts ConsoleOptions) slog.Handler {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    opts.NoColor,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
	}
	cw.FormatLevel = func(i interface{}) string {
		s, _ := i.(string)
		return levelMark(s, opts.NoColor)
	}

	return &consoleHandler{
		logger: zerolog.New(cw).Level(zerolog.TraceLevel),
		level:  level,
	}
}

// levelMark maps a zerolog level name to its bracketed mark.
func levelMark(level string, noColor bool) string {
	var mark, color string
	switch level {
	case zerolog.LevelTraceValue, zerolog.LevelDebugValue:
		mark, color = "|", colorPurple
	case zerolog.LevelInfoValue:
		mark, color = "*", colorBlue
	case zerolog.LevelWarnValue:
		mark, color = "!", colorYellow
	default:
		mark, color = "x", colorRed
	}
	if noColor {
		return "[" + mark + "]"
	}
	return "[" + color + mark + colorReset + "]"
}

// consoleHandler adapts slog records to a zerolog logger.
type consoleHandler struct {
	logger zerolog.Logger
	level  slog.Leveler
	attrs  []slog.Attr
	group  string
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ev := h.logger.WithLevel(zerologLevel(r.Level))
	for _, a := range h.attrs {
		ev = appendAttr(ev, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = appendAttr(ev, h.group, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func appendAttr(ev *zerolog.Event, group string, a slog.Attr) *zerolog.Event {
	v := a.Value.Resolve()
	key := a.Key
	if group != "" {
		key = group + "." + key
	}

	switch v.Kind() {
	case slog.KindGroup:
		for _, ga := range v.Group() {
			ev = appendAttr(ev, key, ga)
		}
		return ev
	case slog.KindString:
		return ev.Str(key, v.String())
	case slog.KindInt64:
		return ev.Int64(key, v.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, v.Float64())
	case slog.KindBool:
		return ev.Bool(key, v.Bool())
	case slog.KindDuration:
		return ev.Str(key, v.Duration().String())
	case slog.KindTime:
		return ev.Time(key, v.Time())
	default:
		if err, ok := v.Any().(error); ok {
			return ev.Str(key, err.Error())
		}
		return ev.Str(key, fmt.Sprint(v.Any()))
	}
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", s)
	}
}
