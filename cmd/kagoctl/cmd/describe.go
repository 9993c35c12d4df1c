package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newDescribeCmd implements `kagoctl describe pod <id>`.
func newDescribeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "describe pod <id>",
		Short: "Show a single pod's full state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != "pod" {
				return fmt.Errorf("unknown resource kind %q, only \"pod\" is supported", args[0])
			}
			id, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid pod id %q: %w", args[1], err)
			}
			body, err := client().DescribePod(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	return c
}
