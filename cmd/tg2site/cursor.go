package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgard/tg2site/internal/mirror"
)

func newCursorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cursor <messages-dir>",
		Short: "Print the cursor recovered from a messages directory",
		Long: `Print the highest update identifier persisted in a messages directory,
or -1 when none is. The next poll of the bridge starts right after it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, err := mirror.RecoverCursor(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cursor)
			return err
		},
	}
}
