package main

import (
	"github.com/spf13/cobra"

	"github.com/romilly/claude-code-log-tools/internal/open"
)

func openCmd() *cobra.Command {
	var hitBlockID int64

	cmd := &cobra.Command{
		Use:   "open <sessionUuid>",
		Short: "Open the original JSONL file in $EDITOR at the hit line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenSession(db, args[0], hitBlockID)
		},
	}

	cmd.Flags().Int64Var(&hitBlockID, "hit", -1, "Block ID to jump to")

	return cmd
}
