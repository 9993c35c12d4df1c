// Package cmd implements kagoctl's command tree: one file per subcommand,
// grounded on contrib/gomaxprocs-webhook/cmd's root/serve split and
// availability-prober's single-command-with-flags style.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lapla-cogito/kago/pkg/kagoctlclient"
)

var masterEndpoint string

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kagoctl",
		Short: "Command-line client for a kago cluster's master API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&masterEndpoint, "server", "http://localhost:8080", "master API base URL")

	root.AddCommand(newApplyCmd())
	root.AddCommand(newGetCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newDescribeCmd())
	return root
}

// Execute runs the root command, exiting 1 on any error (spec.md §6: "CLI
// 0 on success, 1 on any error").
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func client() *kagoctlclient.Client {
	return kagoctlclient.New(masterEndpoint)
}
