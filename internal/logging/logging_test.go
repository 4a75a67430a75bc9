package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Debug("hidden")
	l.Info("also hidden")
	l.Warn("visible")
	l.Error("also visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info to be filtered, got: %s", out)
	}
	if !strings.Contains(out, "[WARN] visible") {
		t.Errorf("expected warn line, got: %s", out)
	}
	if !strings.Contains(out, "[ERROR] also visible") {
		t.Errorf("expected error line, got: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"DEBUG":   DebugLevel,
		"INFO":    InfoLevel,
		"WARN":    WarnLevel,
		"ERROR":   ErrorLevel,
		"bogus":   InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFormattedMethods(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DebugLevel)
	l.Infof("value=%d", 42)
	if !strings.Contains(buf.String(), "value=42") {
		t.Errorf("expected formatted output, got: %s", buf.String())
	}
}
