// Package estimator runs the per-mailbox size estimation pipeline:
// connect, enumerate folders, enumerate items, accumulate bytes, convert
// to megabytes, emit one result per mailbox.
package estimator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/config"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/filter"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/model"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/progress"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/report"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/stats"
)

const bytesPerMB = 1 << 20

// MailClient is the slice of the EWS client the estimator uses. A client
// is scoped to one impersonated mailbox.
type MailClient interface {
	BindRootFolder(ctx context.Context) error
	FindFolders(ctx context.Context) ([]model.Folder, error)
	FindItems(ctx context.Context, folder model.Folder, cutoff time.Time) ([]model.Item, error)
}

// DialFunc resolves a mailbox's endpoint and returns a connected client.
type DialFunc func(ctx context.Context, mailbox string) (MailClient, error)

// Options wires the estimator's collaborators. Report and Bar are optional.
type Options struct {
	Config config.Config
	Logger *slog.Logger
	Dial   DialFunc
	Out    io.Writer
	Report *report.Writer
	Bar    *progress.Bar
	Now    func() time.Time
}

type Estimator struct {
	cfg       config.Config
	logger    *slog.Logger
	dial      DialFunc
	out       io.Writer
	report    *report.Writer
	bar       *progress.Bar
	collector *stats.Collector
	now       func() time.Time
}

// FolderSize is the per-folder accumulation result.
type FolderSize struct {
	Folder model.Folder
	Items  int
	Bytes  int64
}

func New(opts Options) (*Estimator, error) {
	if opts.Dial == nil {
		return nil, fmt.Errorf("dial func must not be nil")
	}
	if opts.Out == nil {
		return nil, fmt.Errorf("output writer must not be nil")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Estimator{
		cfg:       opts.Config,
		logger:    opts.Logger,
		dial:      opts.Dial,
		out:       opts.Out,
		report:    opts.Report,
		bar:       opts.Bar,
		collector: stats.NewCollector(),
		now:       opts.Now,
	}, nil
}

// Summary returns the run diagnostics accumulated so far.
func (e *Estimator) Summary() stats.Summary {
	return e.collector.Snapshot()
}

// Run processes every configured mailbox in input order. By default the
// first fatal condition aborts the whole batch; with continue-on-error a
// failed mailbox is recorded in its result and the batch keeps going, and
// the first failure still determines the returned error.
func (e *Estimator) Run(ctx context.Context) error {
	started := e.now()
	var firstErr error

	for _, mailbox := range e.cfg.Mailboxes {
		if e.bar != nil {
			e.bar.MailboxStarted(mailbox)
		}

		sizeMB, err := e.estimateMailbox(ctx, mailbox)

		if e.bar != nil {
			e.bar.MailboxDone(mailbox, err)
		}
		e.collector.MailboxDone(err != nil)

		if err != nil {
			e.collector.Error(err)
			e.logger.Error("mailbox estimation failed", "mailbox", mailbox, "err", err)

			if !e.cfg.ContinueOnError {
				if e.bar != nil {
					e.bar.Stop()
				}
				e.logSummary(started)
				return err
			}

			if firstErr == nil {
				firstErr = err
			}
			if err := e.emit(model.MailboxResult{Mailbox: mailbox, Error: err.Error()}); err != nil {
				return err
			}
			continue
		}

		e.logger.Info("mailbox estimated", "mailbox", mailbox, "sizeMB", sizeMB)
		if err := e.emit(model.MailboxResult{Mailbox: mailbox, SizeMB: sizeMB}); err != nil {
			return err
		}
	}

	if e.bar != nil {
		e.bar.Stop()
	}
	e.logSummary(started)
	return firstErr
}

func (e *Estimator) estimateMailbox(ctx context.Context, mailbox string) (int64, error) {
	sizes, err := e.FolderSizes(ctx, mailbox)
	if err != nil {
		return 0, err
	}

	var totalBytes int64
	for _, fs := range sizes {
		totalBytes += fs.Bytes
	}
	return totalBytes / bytesPerMB, nil
}

// FolderSizes connects to one mailbox and accumulates the eligible item
// bytes of every non-search folder.
func (e *Estimator) FolderSizes(ctx context.Context, mailbox string) ([]FolderSize, error) {
	client, err := e.dial(ctx, mailbox)
	if err != nil {
		return nil, err
	}

	if err := client.BindRootFolder(ctx); err != nil {
		return nil, &FatalError{Code: ExitRootFolder, Mailbox: mailbox, Err: err}
	}

	folders, err := client.FindFolders(ctx)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("folders enumerated", "mailbox", mailbox, "folders", len(folders))

	age := filter.AgeLimit{Days: e.cfg.AgeLimitDays}
	var cutoff time.Time
	if age.Active() {
		cutoff = age.Cutoff(e.now())
		e.logger.Debug("age filter active", "mailbox", mailbox, "ageLimitDays", age.Days, "cutoff", cutoff)
	}

	sizes := make([]FolderSize, 0, len(folders))
	for _, folder := range folders {
		items, err := client.FindItems(ctx, folder, cutoff)
		if err != nil {
			return nil, err
		}

		var folderBytes int64
		for _, item := range items {
			if !item.HasSize {
				e.collector.MissingSize()
				e.logger.Error("item size could not be determined", "mailbox", mailbox, "folder", folder.DisplayName)
				continue
			}
			folderBytes += item.Size
		}

		e.collector.FolderScanned()
		e.collector.ItemsCounted(len(items))
		e.logger.Debug("folder scanned", "mailbox", mailbox, "folder", folder.DisplayName, "items", len(items), "bytes", folderBytes)

		sizes = append(sizes, FolderSize{Folder: folder, Items: len(items), Bytes: folderBytes})
	}

	return sizes, nil
}

func (e *Estimator) emit(res model.MailboxResult) error {
	line, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result for %s: %w", res.Mailbox, err)
	}
	if _, err := fmt.Fprintf(e.out, "%s\n", line); err != nil {
		return fmt.Errorf("write result for %s: %w", res.Mailbox, err)
	}

	if e.report != nil {
		if err := e.report.Append(res); err != nil {
			return err
		}
	}
	return nil
}

func (e *Estimator) logSummary(started time.Time) {
	summary := e.collector.Snapshot()
	attrs := append(summary.LogAttrs(), "duration", e.now().Sub(started))
	e.logger.Info("run summary", attrs...)
}
