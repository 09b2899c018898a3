package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/config"
)

// The log file records every event from info up even when the console is
// set to a quieter level.
func TestSetupLogger_FileIndependentOfConsoleLevel(t *testing.T) {
	dir := t.TempDir()
	logger, cleanup, err := setupLogger(config.Config{LogLevel: "warn", LogDir: dir})
	if err != nil {
		t.Fatalf("setupLogger() error = %v", err)
	}

	logger.Debug("debug event")
	logger.Info("info event")
	logger.Warn("warn event")

	if err := cleanup(); err != nil {
		t.Fatalf("cleanup() error = %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "ews-archive-estimate-*.log"))
	if err != nil {
		t.Fatalf("glob log file: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("log files = %v, want exactly one dated file", matches)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "info event") {
		t.Error("Expected info event in the log file despite warn console level")
	}
	if !strings.Contains(content, "warn event") {
		t.Error("Expected warn event in the log file")
	}
	if strings.Contains(content, "debug event") {
		t.Error("Debug events stay out of the log file")
	}
}

func TestSetupLogger_NoLogDir(t *testing.T) {
	logger, cleanup, err := setupLogger(config.Config{LogLevel: "error"})
	if err != nil {
		t.Fatalf("setupLogger() error = %v", err)
	}
	if logger == nil {
		t.Fatal("Expected a logger")
	}
	if err := cleanup(); err != nil {
		t.Errorf("cleanup() error = %v", err)
	}
}
