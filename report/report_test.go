package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/model"
)

func TestWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.Append(model.MailboxResult{Mailbox: "a@example.com", SizeMB: 42}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := w.Append(model.MailboxResult{Mailbox: "b@example.com", Error: "store inaccessible"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "mailbox=a@example.com") || !strings.Contains(lines[0], "sizeMB=42") {
		t.Errorf("line 0 = %q, want mailbox and size", lines[0])
	}
	if !strings.Contains(lines[1], "mailbox=b@example.com") || !strings.Contains(lines[1], "store inaccessible") {
		t.Errorf("line 1 = %q, want failure record", lines[1])
	}
}

func TestWriter_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")

	for i := 0; i < 2; i++ {
		w, err := NewWriter(path)
		if err != nil {
			t.Fatalf("NewWriter() error = %v", err)
		}
		if err := w.Append(model.MailboxResult{Mailbox: "a@example.com", SizeMB: int64(i)}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if got := strings.Count(string(data), "mailbox=a@example.com"); got != 2 {
		t.Errorf("entries = %d, want 2 (file must append, not truncate)", got)
	}
}

func TestNewWriter_EmptyPath(t *testing.T) {
	if _, err := NewWriter(""); err == nil {
		t.Error("Expected error for empty report path")
	}
}
