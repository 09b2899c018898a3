// Package report appends human-readable per-mailbox results to a file,
// created if absent and never truncated.
package report

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/model"
)

type Writer struct {
	mu   sync.Mutex
	file *os.File
}

func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("report path is empty")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}

	return &Writer{file: file}, nil
}

// Append writes one result line. Failed mailboxes are recorded with their
// error instead of a size.
func (w *Writer) Append(res model.MailboxResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	var line string
	if res.Error != "" {
		line = fmt.Sprintf("%s  mailbox=%s  error=%q\n", timestamp, res.Mailbox, res.Error)
	} else {
		line = fmt.Sprintf("%s  mailbox=%s  sizeMB=%d\n", timestamp, res.Mailbox, res.SizeMB)
	}

	if _, err := w.file.WriteString(line); err != nil {
		return fmt.Errorf("append report line: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}
