package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, ParseLevel(tc.in), tc.in)
	}
}

func TestHandlerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, slog.LevelWarn)
	log := New(h)

	log.Info("should not appear")
	require.Empty(t, buf.String())

	log.Warn("should appear", "key", "val")
	require.Contains(t, buf.String(), "WARN")
	require.Contains(t, buf.String(), "should appear")
	require.Contains(t, buf.String(), "key=val")
}

func TestTraceLogsBelowDebug(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, LevelTrace)
	log := New(h)

	Trace(log, "per-clock detail", "clock", 3)
	require.Contains(t, buf.String(), "TRACE")
	require.Contains(t, buf.String(), "per-clock detail")
	require.Contains(t, buf.String(), "clock=3")
}

func TestFanoutDispatchesToAllHandlers(t *testing.T) {
	var term, file bytes.Buffer
	h := NewFanout(NewHandler(&term, slog.LevelInfo), NewHandler(&file, LevelTrace))
	log := New(h)

	Trace(log, "trace only goes to file")
	require.Empty(t, term.String())
	require.Contains(t, file.String(), "trace only goes to file")

	log.Info("both sinks see info")
	require.Contains(t, term.String(), "both sinks see info")
	require.Contains(t, file.String(), "both sinks see info")
}

func TestWithAttrsPropagatesAcrossFanout(t *testing.T) {
	var term, file bytes.Buffer
	h := NewFanout(NewHandler(&term, slog.LevelInfo), NewHandler(&file, slog.LevelInfo))
	log := New(h).With("component", "engine")

	log.Info("tagged")
	require.Contains(t, term.String(), "component=engine")
	require.Contains(t, file.String(), "component=engine")
}
