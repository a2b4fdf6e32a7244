package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/romilly/claude-code-log-tools/internal/search"
	"github.com/romilly/claude-code-log-tools/internal/tui"
)

func sessionsCmd() *cobra.Command {
	var opts search.ListOptions
	var since string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List imported sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if opts.Since, err = parseDate(since); err != nil {
				return err
			}

			if interactive {
				return tui.RunList(db, search.Options{Project: opts.Project, Since: opts.Since, Limit: opts.Limit})
			}

			sessions, err := search.ListSessions(db, opts)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(os.Stderr, "No sessions imported yet (run 'cclt import').")
				return nil
			}

			titleStyle := lipgloss.NewStyle().Bold(true)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, strings.Join([]string{
				titleStyle.Render("SESSION"), titleStyle.Render("UPDATED"), titleStyle.Render("MSGS"),
				titleStyle.Render("TOKENS IN/OUT"), titleStyle.Render("SUMMARY"),
			}, "\t"))
			for _, s := range sessions {
				updated := "-"
				if !s.UpdatedAt.IsZero() {
					updated = s.UpdatedAt.Local().Format("2006-01-02 15:04")
				}
				summary := s.Summary
				if summary == "" {
					summary = s.Cwd
				}
				summary = runewidth.Truncate(strings.ReplaceAll(summary, "\n", " "), 60, "...")
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%s\n",
					s.UUID, updated, s.Messages, s.InputTokens, s.OutputTokens, summary)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Project, "project", "", "Only this project directory name")
	cmd.Flags().StringVar(&since, "since", "", "Sessions active since this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "Max sessions (0 = all)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse sessions in the interactive viewer")

	return cmd
}
