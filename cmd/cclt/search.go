package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/romilly/claude-code-log-tools/internal/index"
	"github.com/romilly/claude-code-log-tools/internal/logging"
	"github.com/romilly/claude-code-log-tools/internal/search"
	"github.com/romilly/claude-code-log-tools/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorCyan    = "\033[1;36m"
	sColorDim     = "\033[2m"
)

func colorizeKind(r search.Result) string {
	switch {
	case r.Kind == "tool_use":
		return sColorCyan + r.ToolName + sColorReset
	case r.Kind == "tool_result":
		return sColorCyan + "result" + sColorReset
	case r.Kind == "thinking":
		return sColorDim + "think" + sColorReset
	case r.Role == "user":
		return sColorBlue + "user" + sColorReset
	case r.Role == "assistant":
		return sColorGreen + "asst" + sColorReset
	default:
		return r.Type
	}
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func searchCmd() *cobra.Command {
	var opts search.Options
	var mode, since, until string
	var allHits, noUpdate, interactive bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search across imported conversations",
		Long: `Search content blocks using FTS5. Output is TSV when stdout is not a terminal:
  sessionUuid, blockId, timestamp, kind, cwd, summary, snippet

Modes: plain (all terms), phrase (exact phrase), boolean (FTS5 AND/OR/NOT).
With no query, blocks matching the filters are listed in time order.

Recommended shell function (add to .zshrc):
  ccs() {
    cclt search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'cclt preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(cclt open {1} --hit {2})'
  }`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			// Auto-update the store before searching
			if !noUpdate {
				im := index.NewImporter(db, index.Options{Root: cfg.ClaudeRoot, BatchSize: cfg.BatchSize, Workers: cfg.Workers})
				if stats, err := im.ImportAll(context.Background()); err != nil {
					logging.Warn("update before search: %v", err)
				} else {
					logging.Debug("update before search: %s", stats)
				}
			}

			opts.Mode = search.Mode(mode)
			opts.PerSession = !allHits
			if opts.Since, err = parseDate(since); err != nil {
				return err
			}
			if opts.Until, err = parseDate(until); err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if interactive || (term.IsTerminal(int(os.Stdout.Fd())) && query != "") {
				return tui.Run(db, query, opts)
			}

			opts.Query = query
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				cwd := r.Cwd
				if cwd == "" {
					cwd = "-"
				}
				ts := "-"
				if !r.Timestamp.IsZero() {
					ts = r.Timestamp.Local().Format("2006-01-02 15:04")
				}
				// first two fields (sessionUuid, blockID) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\t%s\n",
					r.SessionUUID,
					r.BlockID,
					sColorDim, ts, sColorReset,
					colorizeKind(r),
					cwd,
					tsvField(r.Summary),
					colorizeSnippet(tsvField(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "plain", "Query mode: plain, phrase or boolean")
	cmd.Flags().StringVar(&opts.SessionUUID, "session", "", "Only this session")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Only this project directory name")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Filter by entry type (user/assistant/system/...)")
	cmd.Flags().StringVar(&opts.Role, "role", "", "Filter by role (user/assistant)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Filter by block kind (text/thinking/tool_use/tool_result)")
	cmd.Flags().StringVar(&opts.ToolName, "tool", "", "Filter by tool name")
	cmd.Flags().StringVar(&opts.ToolUseID, "tool-use-id", "", "Filter by tool_use_id")
	cmd.Flags().StringVar(&since, "since", "", "Entries at or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Entries before this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "Max results")
	cmd.Flags().BoolVar(&allHits, "all-hits", false, "Show every matching block, not just the best per session")
	cmd.Flags().BoolVar(&noUpdate, "no-update", false, "Skip importing new entries first")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Always start the interactive browser")

	return cmd
}
