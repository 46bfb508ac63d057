package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelTrace)
	logger.Log(t.Context(), LevelTrace, "tile", "index", 3)

	out := buf.String()
	if !strings.Contains(out, "level=TRACE") {
		t.Errorf("Ausgabe enthaelt kein TRACE-Level: %q", out)
	}
	if !strings.Contains(out, "logutil_test.go") {
		t.Errorf("Quelldatei fehlt oder ist nicht gekuerzt: %q", out)
	}
}

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	logger.Debug("versteckt")

	if buf.Len() != 0 {
		t.Errorf("Debug-Meldung trotz INFO-Level geschrieben: %q", buf.String())
	}
}
