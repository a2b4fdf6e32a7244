package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/romilly/claude-code-log-tools/internal/index"
)

func importCmd() *cobra.Command {
	var file, root string
	var workers, batchSize int

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import new log entries from the Claude projects directory",
		Long: `Import scans every project under the Claude root and loads entries newer
than each project's checkpoint. Re-running is safe: already stored entries are
skipped, and interrupted runs resume where they stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if root != "" {
				cfg.ClaudeRoot = root
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if batchSize > 0 {
				cfg.BatchSize = batchSize
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			im := index.NewImporter(db, index.Options{
				Root:      cfg.ClaudeRoot,
				BatchSize: cfg.BatchSize,
				Workers:   cfg.Workers,
			})

			var stats index.Stats
			if file != "" {
				fmt.Fprintf(os.Stderr, "Importing %s\n", file)
				stats, err = im.ImportFile(ctx, file)
				if err != nil && len(stats.Failed) == 0 {
					return err
				}
			} else {
				fmt.Fprintf(os.Stderr, "Scanning %s\n", cfg.ClaudeRoot)
				stats, err = im.ImportAll(ctx)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			for _, f := range stats.Failed {
				fmt.Fprintf(os.Stderr, "  failed: %s\n", f)
			}
			if len(stats.Failed) > 0 {
				return fmt.Errorf("%d file(s) failed; re-run to retry", len(stats.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Import a single JSONL file (leaves the project checkpoint unchanged)")
	cmd.Flags().StringVar(&root, "root", "", "Claude projects directory (overrides config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Projects imported concurrently (overrides config)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Entries per transaction (overrides config)")

	return cmd
}
