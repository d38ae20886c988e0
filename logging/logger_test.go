package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"text", "text", "msg=hello"},
		{"json", "json", `"msg":"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(Config{
				Level:  slog.LevelInfo,
				Format: tt.format,
				Output: &buf,
			})

			logger.Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info record emitted below the configured level: %q", buf.String())
	}

	logger.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelWarn},
		{"", slog.LevelWarn},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: slog.LevelInfo, Output: &buf})

	WithTty(WithUser(logger, "alice"), "/dev/pts/3").Info("prompting")

	out := buf.String()
	for _, want := range []string{"user=alice", "tty=/dev/pts/3", "prompting"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
