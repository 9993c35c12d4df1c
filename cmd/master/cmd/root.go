// Package cmd implements the master process's command tree, grounded on
// contrib/gomaxprocs-webhook/cmd's root/serve split.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kago-master",
		Short: "Control-plane process: store, scheduler, reconciler, and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

// Execute runs the root command. A bind failure or other startup error
// exits 1 (spec.md §6: "server process exits 1 on bind failure or runtime
// init failure").
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
