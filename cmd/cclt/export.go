package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/romilly/claude-code-log-tools/internal/export"
	"github.com/romilly/claude-code-log-tools/internal/logging"
)

func exportCmd() *cobra.Command {
	var format, outputDir string

	cmd := &cobra.Command{
		Use:   "export <sessionUuid>...",
		Short: "Export sessions as json, jsonl, yaml or markdown",
		Long: `Export writes each session with its messages and content blocks.
Without --output the result goes to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
			}

			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if outputDir != "" {
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}

			for _, id := range args {
				session, err := export.Load(db, id)
				if err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				if outputDir == "" {
					if err := exporter.Export(session, os.Stdout); err != nil {
						return err
					}
					continue
				}

				path := filepath.Join(outputDir, id+"."+exporter.Extension())
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				if err := exporter.Export(session, f); err != nil {
					_ = f.Close()
					return fmt.Errorf("export %s: %w", id, err)
				}
				if err := f.Close(); err != nil {
					return err
				}
				logging.Info("Exported %s", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "Output format: json, jsonl, yaml, md")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Write one file per session into this directory")

	return cmd
}
