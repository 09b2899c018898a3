package stats

import (
	"sync"
)

// Summary aggregates the diagnostics of one estimation run.
type Summary struct {
	Mailboxes       int
	FailedMailboxes int
	Folders         int
	Items           int
	MissingSize     int
	Errors          int
	LastError       error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"mailboxes", s.Mailboxes,
		"failedMailboxes", s.FailedMailboxes,
		"folders", s.Folders,
		"items", s.Items,
		"missingSize", s.MissingSize,
		"errors", s.Errors,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Collector accumulates run diagnostics. All estimation work is sequential,
// but the collector is safe for concurrent use anyway.
type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) MailboxDone(failed bool) {
	c.mu.Lock()
	c.summary.Mailboxes++
	if failed {
		c.summary.FailedMailboxes++
	}
	c.mu.Unlock()
}

func (c *Collector) FolderScanned() {
	c.mu.Lock()
	c.summary.Folders++
	c.mu.Unlock()
}

func (c *Collector) ItemsCounted(n int) {
	c.mu.Lock()
	c.summary.Items += n
	c.mu.Unlock()
}

// MissingSize records an item whose size property could not be read.
// Such items are excluded from the total but never abort the run.
func (c *Collector) MissingSize() {
	c.mu.Lock()
	c.summary.MissingSize++
	c.summary.Errors++
	c.mu.Unlock()
}

func (c *Collector) Error(err error) {
	c.mu.Lock()
	c.summary.Errors++
	if err != nil {
		c.summary.LastError = err
	}
	c.mu.Unlock()
}

func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}
