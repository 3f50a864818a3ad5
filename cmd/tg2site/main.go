// Package main contains the entrypoint of the tg2site bridge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := execute(ctx, os.Args[1:])
	stop()
	os.Exit(exitCode)
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "tg2site",
		Short: "Mirror a Telegram channel into a git repository",
		Long: `tg2site polls the Telegram Bot API for posts of one channel and commits
each of them as a JSON file to a branch of a remote git repository.

Configuration is read from TG2SITE_CONF_CONTENT (JSON) and the secrets file
named by TG2SITE_SECRETS_PATH.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBridge(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional file of environment variables to load first")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the bridge (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runBridge(cmd.Context(), envFile)
			},
		},
		newCursorCmd(),
	)
	return root
}
