package logger

import (
	"bytes"
	"os"
	"testing"
)

func reset() {
	SetLevel("info")
	SetOutput(os.Stderr)
}

func TestLevelFiltering(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("warn")

	Info("hidden %d", 1)
	Warn("shown %d", 2)

	if got := buf.String(); got != "[WARN] shown 2\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDebugEnabled(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("debug")

	Debug("details")

	if got := buf.String(); got != "[DEBUG] details\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestUnknownLevelKeepsCurrent(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("info")
	SetLevel("loud")

	Info("still here")

	if buf.Len() == 0 {
		t.Error("expected info output after unknown level name")
	}
}
