package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// decode parses the single JSON record in buf.
func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	return entry
}

func TestLogger_Module(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelDebug).Module("cpu").With("pc", "0x00000000").Warn("CPU halted", "reason", "decode")

	entry := decode(t, &buf)
	for k, want := range map[string]string{
		"module": "cpu",
		"msg":    "CPU halted",
		"pc":     "0x00000000",
		"reason": "decode",
		"level":  "WARN",
	} {
		if entry[k] != want {
			t.Errorf("%s = %v, want %q", k, entry[k], want)
		}
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		log   func(l *Logger)
		want  bool
	}{
		{slog.LevelInfo, func(l *Logger) { l.Debug("step") }, false},
		{slog.LevelInfo, func(l *Logger) { l.Info("start") }, true},
		{slog.LevelWarn, func(l *Logger) { l.Info("start") }, false},
		{slog.LevelWarn, func(l *Logger) { l.Warn("halt") }, true},
		{slog.LevelWarn, func(l *Logger) { l.Error("fail") }, true},
		{VerbosityToLevel(0), func(l *Logger) { l.Error("fail") }, false},
		{VerbosityToLevel(5), func(l *Logger) { l.Debug("step") }, true},
	}
	for i, tt := range tests {
		var buf bytes.Buffer
		tt.log(New(&buf, tt.level))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("case %d: output=%v, want %v (level=%v)", i, got, tt.want, tt.level)
		}
	}
}

func TestLogger_Enabled(t *testing.T) {
	l := New(&bytes.Buffer{}, slog.LevelInfo)
	if l.Enabled(slog.LevelDebug) {
		t.Fatal("debug enabled on an info logger")
	}
	if !l.Module("cpu").Enabled(slog.LevelWarn) {
		t.Fatal("warn disabled on an info logger")
	}
	if Discard().Enabled(slog.LevelError) {
		t.Fatal("discard logger enabled")
	}
}

func TestHex32(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo).Info("Program exited", Hex32("pc", 0x10), Hex32("word", 0xffffffff), "code", 7)

	entry := decode(t, &buf)
	if entry["pc"] != "0x00000010" {
		t.Errorf("pc = %v, want 0x00000010", entry["pc"])
	}
	if entry["word"] != "0xffffffff" {
		t.Errorf("word = %v, want 0xffffffff", entry["word"])
	}
	// JSON numbers decode as float64.
	if v, ok := entry["code"].(float64); !ok || v != 7 {
		t.Errorf("code = %v, want 7", entry["code"])
	}
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	if orig == nil {
		t.Fatal("Default() returned nil")
	}
	defer SetDefault(orig)

	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)
	SetDefault(l)
	Default().Module("loader").Info("Image loaded")
	if !strings.Contains(buf.String(), `"module":"loader"`) {
		t.Fatalf("default logger not used: %s", buf.String())
	}

	SetDefault(nil)
	if Default() != l {
		t.Fatal("SetDefault(nil) replaced the logger")
	}
}
