package internal

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := logger
	oldLevel := logLevel
	logger = log.New(&buf, "", 0)
	t.Cleanup(func() {
		logger = old
		logLevel = oldLevel
	})
	return &buf
}

func TestLogLevelFiltering(t *testing.T) {
	buf := captureLog(t)
	SetLogLevel(LogLevelWarn)

	LogError("e")
	LogWarn("w")
	LogInfo("i")
	LogDebug("d")

	out := buf.String()
	if !strings.Contains(out, "[ERROR] e") || !strings.Contains(out, "[WARN] w") {
		t.Errorf("error/warn should pass at warn level, got %q", out)
	}
	if strings.Contains(out, "[INFO]") || strings.Contains(out, "[DEBUG]") {
		t.Errorf("info/debug should be filtered at warn level, got %q", out)
	}
}

func TestSetVerbose(t *testing.T) {
	buf := captureLog(t)

	SetVerbose(true)
	LogDebug("visible %d", 1)
	if !strings.Contains(buf.String(), "[DEBUG] visible 1") {
		t.Errorf("debug should log when verbose, got %q", buf.String())
	}

	buf.Reset()
	SetVerbose(false)
	LogDebug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug should not log when not verbose, got %q", buf.String())
	}
}
