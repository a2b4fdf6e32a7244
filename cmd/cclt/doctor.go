package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/romilly/claude-code-log-tools/internal/config"
	"github.com/romilly/claude-code-log-tools/internal/index"
	"github.com/romilly/claude-code-log-tools/internal/scan"
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleBad  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleHead = lipgloss.NewStyle().Bold(true)
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify root, DB, FTS5 and checkpoints, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			// check root
			fmt.Println(styleHead.Render("=== Root ==="))
			checkDir("Claude", cfg.ClaudeRoot)

			// scan file counts
			fmt.Println(styleHead.Render("\n=== File Scan ==="))
			files, err := scan.ScanRoot(cfg.ClaudeRoot)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				primary := 0
				for _, f := range files {
					if f.Primary {
						primary++
					}
				}
				fmt.Printf("  Projects:      %d\n", len(scan.GroupByProject(files)))
				fmt.Printf("  Session logs:  %d\n", primary)
				fmt.Printf("  Other logs:    %d\n", len(files)-primary)
			}

			// check DB
			fmt.Println(styleHead.Render("\n=== Database ==="))
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'cclt import' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			sessionCount, err := db.SessionCount()
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}
			messageCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			blockCount, err := db.BlockCount()
			if err != nil {
				return fmt.Errorf("count blocks: %w", err)
			}

			fmt.Printf("  Sessions: %d\n", sessionCount)
			fmt.Printf("  Messages: %d\n", messageCount)
			fmt.Printf("  Blocks:   %d\n", blockCount)

			// check FTS5
			fmt.Println(styleHead.Render("\n=== FTS5 ==="))
			if err := db.CheckFTS(); err != nil {
				fmt.Printf("  Status: %s (%v)\n", styleBad.Render("CORRUPT"), err)
			} else {
				fmt.Printf("  Status: %s\n", styleOK.Render("OK (integrity check passed)"))
			}

			// checkpoints
			fmt.Println(styleHead.Render("\n=== Checkpoints ==="))
			cps, err := db.Checkpoints()
			if err != nil {
				return fmt.Errorf("checkpoints: %w", err)
			}
			if len(cps) == 0 {
				fmt.Println("  (none)")
			}
			for _, c := range cps {
				fmt.Printf("  %s  %s\n", c.Cutoff.Local().Format("2006-01-02 15:04:05"), c.Project)
			}

			// check DB file size
			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Println(styleHead.Render(fmt.Sprintf("\n=== DB Size: %.1f MB ===", sizeMB)))
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (%s)\n", name, path, styleBad.Render("NOT FOUND"))
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (%s)\n", name, path, styleBad.Render("NOT A DIRECTORY"))
	} else {
		fmt.Printf("  %s: %s (%s)\n", name, path, styleOK.Render("OK"))
	}
}
