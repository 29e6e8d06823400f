package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

// restoreLevel resets the process level after a test changes it.
func restoreLevel(t *testing.T) {
	t.Helper()
	prev := GetLevel()
	t.Cleanup(func() { SetLevel(prev) })
}

func TestNew_Formats(t *testing.T) {
	restoreLevel(t)

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"hello"`},
		{"", `"msg":"hello"`},
		{"text", `msg=hello`},
		{"console", `msg=hello`},
	}

	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Format: tt.format, Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			l.Info("hello", "component", "hub")

			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q missing %q", out, tt.want)
			}
			if !strings.Contains(out, "component") {
				t.Errorf("output %q missing attribute", out)
			}
		})
	}
}

func TestLogger_LevelMethods(t *testing.T) {
	restoreLevel(t)

	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, tt := range []struct {
		level string
		log   func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	} {
		buf.Reset()
		tt.log("message")
		if got := decodeEntry(t, &buf)["level"]; got != tt.level {
			t.Errorf("level = %v, want %s", got, tt.level)
		}
	}
}

func TestLogger_With(t *testing.T) {
	restoreLevel(t)
	l, buf := newBufferLogger(t)

	l.With("view", "api_status").Info("served")

	if got := decodeEntry(t, buf)["view"]; got != "api_status" {
		t.Errorf("view = %v, want api_status", got)
	}
}

func TestLogger_WithContextStampsIDs(t *testing.T) {
	restoreLevel(t)
	l, buf := newBufferLogger(t)

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-1")
	l.With("component", "test").WithContext(ctx).Warn("denied")

	entry := decodeEntry(t, buf)
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
	if entry["user_id"] != "user-1" {
		t.Errorf("user_id = %v, want user-1", entry["user_id"])
	}
	if entry["component"] != "test" {
		t.Errorf("component = %v, want test", entry["component"])
	}
}

func TestLogger_WithContextNil(t *testing.T) {
	restoreLevel(t)
	l, buf := newBufferLogger(t)

	l.WithContext(nil).Info("no context")

	if buf.Len() == 0 {
		t.Error("expected output")
	}
}

func TestSetLevel(t *testing.T) {
	restoreLevel(t)

	var buf bytes.Buffer
	l, err := New(Config{Level: "error", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Warn("filtered")
	if buf.Len() != 0 {
		t.Fatalf("warn logged at error level: %s", buf.String())
	}

	SetLevel("debug")
	l.Debug("visible")
	if buf.Len() == 0 {
		t.Error("debug not logged after SetLevel(debug)")
	}
}

func TestGetLevel(t *testing.T) {
	restoreLevel(t)

	tests := []struct {
		input string
		want  string
	}{
		{"debug", "debug"},
		{"DEBUG", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"Error", "error"},
		{"verbose", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			SetLevel(tt.input)
			if got := GetLevel(); got != tt.want {
				t.Errorf("SetLevel(%q); GetLevel() = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	restoreLevel(t)

	for _, name := range Levels() {
		SetLevel(name)
		if got := GetLevel(); got != name {
			t.Errorf("SetLevel(%q); GetLevel() = %q", name, got)
		}
	}
}

func TestDefault(t *testing.T) {
	restoreLevel(t)

	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, buf := newBufferLogger(t)
	SetDefault(l)
	if Default() != l {
		t.Fatal("Default() did not return the logger passed to SetDefault")
	}

	for name, log := range map[string]func(string, ...any){
		"Info":  Info,
		"Warn":  Warn,
		"Error": Error,
	} {
		buf.Reset()
		log("package level")
		if buf.Len() == 0 {
			t.Errorf("%s() produced no output", name)
		}
	}

	SetDefault(nopLogger{})
	if Default() != l {
		t.Error("SetDefault accepted a foreign Logger")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" || cfg.Output == nil {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestStdLogger(t *testing.T) {
	restoreLevel(t)
	l, buf := newBufferLogger(t)

	StdLogger(l).Print("http: TLS handshake error")

	entry := decodeEntry(t, buf)
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
	if !strings.Contains(entry["msg"].(string), "TLS handshake error") {
		t.Errorf("msg = %v", entry["msg"])
	}

	if StdLogger(nopLogger{}) == nil {
		t.Error("StdLogger() with a foreign Logger returned nil")
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                 {}
func (nopLogger) Info(string, ...any)                  {}
func (nopLogger) Warn(string, ...any)                  {}
func (nopLogger) Error(string, ...any)                 {}
func (n nopLogger) With(...any) Logger                 { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
