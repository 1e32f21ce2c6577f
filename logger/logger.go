// Package logger wraps log/slog with the AYU simulator's level set
// (trace, debug, info, warn, error) and a terminal-friendly text
// format. It is modeled on the slog.Handler wrapper pattern used by
// S370's util/logger package, extended with a Trace level below
// slog.LevelDebug because the simulator's --log flag (spec.md §6)
// exposes one.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// LevelTrace sits one tier below slog.LevelDebug (-4), so
// trace < debug < info < warn < error orders the same way slog's
// built-in levels do.
const LevelTrace = slog.Level(-8)

// ParseLevel maps the CLI's --log values to a slog.Level. An
// unrecognized value defaults to Info, matching
// original_source/simulator/src/args.rs's log_level_from_string,
// which defaults rather than errors on an unknown level string.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelName returns the fixed-width level token used in the text
// format.
func levelName(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return "TRACE"
	case l <= slog.LevelDebug:
		return "DEBUG"
	case l <= slog.LevelInfo:
		return "INFO "
	case l <= slog.LevelWarn:
		return "WARN "
	default:
		return "ERROR"
	}
}

// handler is a minimal slog.Handler that writes "time level message
// attr=val ..." lines to out, gated by minLevel.
type handler struct {
	out      io.Writer
	minLevel slog.Level
	mu       *sync.Mutex
	attrs    []slog.Attr
}

// NewHandler returns a slog.Handler writing to out, emitting only
// records at or above minLevel.
func NewHandler(out io.Writer, minLevel slog.Level) slog.Handler {
	return &handler{out: out, minLevel: minLevel, mu: &sync.Mutex{}}
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

func (h *handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006/01/02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelName(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{out: h.out, minLevel: h.minLevel, mu: h.mu, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *handler) WithGroup(_ string) slog.Handler {
	return h
}

// fanout dispatches every record to all of its handlers, so the CLI
// can log to the terminal at the requested level and to a file at
// full trace simultaneously (original_source/simulator/src/main.rs's
// CombinedLogger of a TermLogger plus an always-Trace WriteLogger).
type fanout struct {
	handlers []slog.Handler
}

// NewFanout combines handlers into a single slog.Handler that forwards
// every enabled record to each of them independently.
func NewFanout(handlers ...slog.Handler) slog.Handler {
	return &fanout{handlers: handlers}
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanout{handlers: next}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanout{handlers: next}
}

// Trace logs at LevelTrace, the level below Debug that the simulator
// uses for per-clock control-signal and datapath detail.
func Trace(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

// Since logs are timestamped per record by the handler, New just
// returns a ready slog.Logger over h; callers don't need to touch
// time.Now directly.
func New(h slog.Handler) *slog.Logger {
	return slog.New(h)
}
