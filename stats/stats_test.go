package stats

import (
	"errors"
	"testing"
)

func TestCollector(t *testing.T) {
	c := NewCollector()

	c.MailboxDone(false)
	c.MailboxDone(true)
	c.FolderScanned()
	c.FolderScanned()
	c.ItemsCounted(10)
	c.ItemsCounted(5)
	c.MissingSize()
	c.Error(errors.New("store inaccessible"))

	s := c.Snapshot()
	if s.Mailboxes != 2 || s.FailedMailboxes != 1 {
		t.Errorf("mailboxes = %d/%d failed, want 2/1", s.Mailboxes, s.FailedMailboxes)
	}
	if s.Folders != 2 {
		t.Errorf("Folders = %d, want 2", s.Folders)
	}
	if s.Items != 15 {
		t.Errorf("Items = %d, want 15", s.Items)
	}
	if s.MissingSize != 1 {
		t.Errorf("MissingSize = %d, want 1", s.MissingSize)
	}
	// A missing size counts as an error too.
	if s.Errors != 2 {
		t.Errorf("Errors = %d, want 2", s.Errors)
	}
	if s.LastError == nil || s.LastError.Error() != "store inaccessible" {
		t.Errorf("LastError = %v, want the last recorded error", s.LastError)
	}
}

func TestSummary_LogAttrs(t *testing.T) {
	s := Summary{Mailboxes: 1, Errors: 1, LastError: errors.New("boom")}
	attrs := s.LogAttrs()
	if len(attrs)%2 != 0 {
		t.Fatalf("LogAttrs() must return key/value pairs, got %d entries", len(attrs))
	}

	found := false
	for i := 0; i < len(attrs); i += 2 {
		if attrs[i] == "lastError" {
			found = true
		}
	}
	if !found {
		t.Error("Expected lastError attr when LastError is set")
	}
}
