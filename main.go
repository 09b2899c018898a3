package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/cmd"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/config"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/estimator"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/progress"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/report"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ews-archive-estimate [mailbox ...]",
		Short: "Estimate how much mailbox data an archiving policy would move",
		Long: "Estimates, per mailbox, the cumulative size of items older than the age\n" +
			"limit across all non-search folders, as a forecast of what an archiving\n" +
			"policy would move to secondary storage. Results are emitted as one JSON\n" +
			"line per mailbox on stdout.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(c, args)
			if err != nil {
				return err
			}
			c.SilenceUsage = true

			logger, cleanup, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			slog.SetDefault(logger)
			logger.Info("starting estimation",
				"mailboxes", len(cfg.Mailboxes), "ageLimitDays", cfg.AgeLimitDays, "server", cfg.Server)

			return run(c, cfg, logger)
		},
	}

	config.RegisterFlags(rootCmd)
	rootCmd.AddCommand(cmd.FoldersCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(estimator.ExitCode(err))
	}
}

func run(c *cobra.Command, cfg config.Config, logger *slog.Logger) error {
	opts := estimator.Options{
		Config: cfg,
		Logger: logger,
		Dial:   estimator.Dialer(cfg, logger),
		Out:    os.Stdout,
		Bar:    progress.New(len(cfg.Mailboxes), cfg.LogLevel),
	}

	if cfg.ReportPath != "" {
		writer, err := report.NewWriter(cfg.ReportPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Warn("closing report file failed", "err", err)
			}
		}()
		opts.Report = writer
	}

	est, err := estimator.New(opts)
	if err != nil {
		return err
	}

	return est.Run(c.Context())
}

// setupLogger writes leveled text logs to stderr, and additionally to a
// dated per-run log file when --log-dir is set. The file handler runs at
// a fixed info level so the log file records every event no matter how
// quiet the console is. Stdout stays reserved for the result records.
func setupLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	console := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	cleanup := func() error { return nil }

	if cfg.LogDir == "" {
		return slog.New(console), cleanup, nil
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, cleanup, err
	}

	logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("ews-archive-estimate-%s.log", time.Now().Format("20060102")))
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, cleanup, err
	}

	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo})
	cleanup = func() error {
		return file.Close()
	}
	return slog.New(teeHandler{handlers: []slog.Handler{console, fileHandler}}), cleanup, nil
}

// teeHandler fans each record out to every handler whose own level
// accepts it.
type teeHandler struct {
	handlers []slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, rec slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := h.Handle(ctx, rec.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return teeHandler{handlers: handlers}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return teeHandler{handlers: handlers}
}
