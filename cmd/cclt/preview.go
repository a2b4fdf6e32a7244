package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/romilly/claude-code-log-tools/internal/render"
)

func previewCmd() *cobra.Command {
	var hitBlockID int64
	var context int
	var query string

	cmd := &cobra.Command{
		Use:   "preview <sessionUuid>",
		Short: "Preview a conversation with context around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderConversation(db, args[0], render.Options{
				HitBlockID: hitBlockID,
				Context:    context,
				Query:      query,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&hitBlockID, "hit", -1, "Block ID to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Blocks before/after hit to show (-1 = all)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")

	return cmd
}
