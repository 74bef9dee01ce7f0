package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func jsonLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &Config{Level: level, Format: FormatJSON}
	return NewWithWriter(cfg, "shellwrap", &buf), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: FormatJSON}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: FormatConsole, NoColor: true}, "shellwrap", &buf)
	l.WithComponent("process").Info("process started", Fields(FieldPID, 42))

	line := buf.String()
	for _, want := range []string{"INF", "process started", "component=process", "pid=42"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "shellwrap") {
		t.Errorf("expected service to be omitted on the console, got %q", line)
	}
}

func TestLogger_JSONFields(t *testing.T) {
	l, buf := jsonLogger(t, "debug")

	l.WithComponent("process").
		WithFields(Fields(FieldHandleID, "abc", "pid", 42)).
		Info("process started")

	m := decodeLine(t, buf)
	if m["message"] != "process started" {
		t.Errorf("unexpected message %v", m["message"])
	}
	if m[FieldService] != "shellwrap" {
		t.Errorf("expected service field, got %v", m[FieldService])
	}
	if m[FieldComponent] != "process" {
		t.Errorf("expected component field, got %v", m[FieldComponent])
	}
	if m[FieldHandleID] != "abc" {
		t.Errorf("expected handle_id=abc, got %v", m[FieldHandleID])
	}
	if m["pid"] != float64(42) {
		t.Errorf("expected pid=42, got %v", m["pid"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := jsonLogger(t, "warn")

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}

func TestLogger_WithError(t *testing.T) {
	l, buf := jsonLogger(t, "info")
	l.WithError(errString("boom")).Error("failed")

	m := decodeLine(t, buf)
	if m[FieldError] != "boom" {
		t.Errorf("expected error=boom, got %v", m[FieldError])
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name string
		kvs  []interface{}
		want int
	}{
		{"pairs", []interface{}{"a", 1, "b", 2}, 2},
		{"odd trailing key dropped", []interface{}{"a", 1, "b"}, 1},
		{"non-string key skipped", []interface{}{1, "x", "b", 2}, 1},
		{"empty", nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(Fields(tc.kvs...)); got != tc.want {
				t.Errorf("expected %d fields, got %d", tc.want, got)
			}
		})
	}
}

func TestProcessFields(t *testing.T) {
	f := ProcessFields(4242, []string{"ls", "-l", "/tmp"})
	if f[FieldPID] != 4242 {
		t.Errorf("expected pid=4242, got %v", f[FieldPID])
	}
	if f[FieldBinary] != "ls" {
		t.Errorf("expected binary=ls, got %v", f[FieldBinary])
	}
	if f[FieldArgv] != "ls -l /tmp" {
		t.Errorf("unexpected argv %v", f[FieldArgv])
	}

	if _, ok := ProcessFields(1, nil)[FieldBinary]; ok {
		t.Error("expected no binary for empty argv")
	}
}

func TestExitFields(t *testing.T) {
	f := ExitFields(-15, true)
	if f[FieldExitCode] != -15 || f[FieldTimedOut] != true {
		t.Errorf("unexpected fields %v", f)
	}
}

func TestGet_DerivesAndCaches(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalLogger(NewWithWriter(&Config{Level: "info", Format: FormatJSON}, "", &buf))
	resetRegistry()
	t.Cleanup(func() { SetGlobalLogger(nil) })

	Get("runner").Info("hello")
	m := decodeLine(t, &buf)
	if m[FieldComponent] != "runner" {
		t.Errorf("expected component=runner, got %v", m[FieldComponent])
	}
	if Get("runner") != Get("runner") {
		t.Error("expected the derived logger to be cached")
	}

	custom := Nop()
	Register("runner", custom)
	if Get("runner") != custom {
		t.Error("expected registered logger to be returned")
	}
}

func TestInit_ResetsRegistry(t *testing.T) {
	stale := Nop()
	Register("stale", stale)
	Init(Config{Level: "error", Format: FormatJSON})
	t.Cleanup(func() { SetGlobalLogger(nil) })

	if Get("stale") == stale {
		t.Error("expected Init to clear registered loggers")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
		{"bad output", Config{Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestOutputWriter_DefaultsToStderr(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Output != "stderr" {
		t.Errorf("expected stderr default, got %q", cfg.Output)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
