package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/romilly/claude-code-log-tools/internal/search"
)

func toolsCmd() *cobra.Command {
	var opts search.PairOptions
	var width int

	cmd := &cobra.Command{
		Use:   "tools [tool_use_id]",
		Short: "Show tool calls joined with their results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if len(args) == 1 {
				opts.ToolUseID = args[0]
			}
			pairs, err := search.ToolPairs(db, opts)
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				fmt.Fprintln(os.Stderr, "No tool calls found.")
				return nil
			}

			for _, p := range pairs {
				status := sColorGreen + "ok" + sColorReset
				switch {
				case !p.HasResult:
					status = sColorDim + "no result" + sColorReset
				case p.IsError:
					status = sColorBoldRed + "error" + sColorReset
				}
				fmt.Printf("%s%s%s %s%s%s %s [%s]\n",
					sColorDim, p.CalledAt.Local().Format("2006-01-02 15:04:05"), sColorReset,
					sColorCyan, p.ToolName, sColorReset, p.ToolUseID, status)
				fmt.Printf("  in:  %s\n", runewidth.Truncate(tsvField(p.Input), width, "..."))
				if p.HasResult {
					fmt.Printf("  out: %s\n", runewidth.Truncate(strings.TrimSpace(tsvField(p.Result)), width, "..."))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ToolName, "tool", "", "Only calls of this tool")
	cmd.Flags().StringVar(&opts.SessionUUID, "session", "", "Only calls in this session")
	cmd.Flags().BoolVar(&opts.ErrorsOnly, "errors", false, "Only calls whose result is an error")
	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "Max calls")
	cmd.Flags().IntVar(&width, "width", 120, "Truncate input and output to this many columns")

	return cmd
}
