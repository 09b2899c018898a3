package progress

import (
	"os"
	"sync"

	"github.com/pterm/pterm"
)

// Bar tracks estimation progress across mailboxes. It only renders at the
// "info" log level; debug runs get raw log detail instead.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	mu      sync.Mutex
	enabled bool
}

// New creates a progress bar over the mailbox batch if logLevel is "info".
func New(total int, logLevel string) *Bar {
	enabled := logLevel == "info" && total > 1

	bar := &Bar{
		total:   total,
		enabled: enabled,
	}

	if enabled {
		// Stdout carries the result records; all bar rendering goes to
		// stderr so the stream stays parseable.
		pb, _ := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Estimating mailboxes").
			WithWriter(os.Stderr).
			Start()
		bar.pb = pb
	}

	return bar
}

// MailboxStarted updates the title with the mailbox being processed.
func (b *Bar) MailboxStarted(mailbox string) {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	display := mailbox
	if len(display) > 40 {
		display = display[:37] + "..."
	}
	b.pb.UpdateTitle("Estimating: " + display)
}

// MailboxDone advances the bar; failures are shown above it.
func (b *Bar) MailboxDone(mailbox string, err error) {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		pterm.Error.WithWriter(os.Stderr).Printf("%s: %v\n", mailbox, err)
	}
	b.pb.Increment()
}

// Stop finalizes the progress bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}
	b.pb.Stop()
}
