package progress

import (
	"errors"
	"io"
	"os"
	"testing"
)

// The bar renders on stderr only; stdout carries the per-mailbox result
// records and must stay free of control sequences.
func TestBar_WritesNothingToStdout(t *testing.T) {
	origStdout, origStderr := os.Stdout, os.Stderr
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout, os.Stderr = outW, errW
	defer func() {
		os.Stdout, os.Stderr = origStdout, origStderr
	}()

	bar := New(2, "info")
	bar.MailboxStarted("a@example.com")
	bar.MailboxDone("a@example.com", nil)
	bar.MailboxStarted("b@example.com")
	bar.MailboxDone("b@example.com", errors.New("store inaccessible"))
	bar.Stop()

	outW.Close()
	errW.Close()
	os.Stdout, os.Stderr = origStdout, origStderr

	stdout, err := io.ReadAll(outR)
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	stderr, err := io.ReadAll(errR)
	if err != nil {
		t.Fatalf("read stderr: %v", err)
	}

	if len(stdout) != 0 {
		t.Errorf("bar wrote %d bytes to stdout, want none: %q", len(stdout), stdout)
	}
	if len(stderr) == 0 {
		t.Error("Expected bar rendering on stderr")
	}
}

func TestBar_DisabledOutsideInfoLevel(t *testing.T) {
	if bar := New(5, "debug"); bar.enabled {
		t.Error("Expected no bar at debug level")
	}
	if bar := New(1, "info"); bar.enabled {
		t.Error("Expected no bar for a single mailbox")
	}
}
