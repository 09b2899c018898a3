package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/config"
	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/estimator"
)

// FoldersCmd shows the per-folder breakdown behind a mailbox's estimate,
// largest folder first.
var FoldersCmd = &cobra.Command{
	Use:   "folders <mailbox>",
	Short: "Show the per-folder size breakdown for one mailbox",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(c, args)
		if err != nil {
			return err
		}
		c.SilenceUsage = true

		level := slog.LevelInfo
		if cfg.LogLevel == "debug" {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		est, err := estimator.New(estimator.Options{
			Config: cfg,
			Logger: logger,
			Dial:   estimator.Dialer(cfg, logger),
			Out:    io.Discard,
		})
		if err != nil {
			return err
		}

		mailbox := args[0]
		sizes, err := est.FolderSizes(c.Context(), mailbox)
		if err != nil {
			return err
		}

		sort.Slice(sizes, func(i, j int) bool {
			return sizes[i].Bytes > sizes[j].Bytes
		})

		fmt.Printf("Folder breakdown for %s (age limit: %d days)\n\n", mailbox, cfg.AgeLimitDays)
		fmt.Printf("%-50s %10s %14s\n", "Folder", "Items", "Bytes")

		var totalBytes int64
		var totalItems int
		for _, fs := range sizes {
			fmt.Printf("%-50s %10d %14d\n", fs.Folder.DisplayName, fs.Items, fs.Bytes)
			totalBytes += fs.Bytes
			totalItems += fs.Items
		}

		fmt.Printf("\n%-50s %10d %14d  (%d MB)\n", "Total", totalItems, totalBytes, totalBytes/(1<<20))
		return nil
	},
}
