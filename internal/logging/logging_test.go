package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetVerbose(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetVerbose(true)
	if !enabled(LevelDebug) {
		t.Error("SetVerbose(true) should enable debug")
	}

	SetVerbose(false)
	if enabled(LevelDebug) {
		t.Error("SetVerbose(false) should disable debug")
	}
	if !enabled(LevelInfo) {
		t.Error("SetVerbose(false) should keep info")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(LevelInfo)

	SetLevel(LevelWarn)
	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below threshold leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") || !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("expected warn and error output, got %q", out)
	}
}

func TestLevels(t *testing.T) {
	if !(LevelError < LevelWarn && LevelWarn < LevelInfo && LevelInfo < LevelDebug) {
		t.Error("levels should be ordered error < warn < info < debug")
	}
}
