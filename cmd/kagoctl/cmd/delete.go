package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newDeleteCmd implements `kagoctl delete deployment|pod|node <name>`,
// mirroring original_source/src/cli.rs's delete_deployment shape,
// generalized to the other two resource kinds.
func newDeleteCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "delete {deployment|pod|node} <name>",
		Short: "Delete a deployment, pod, or node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl := client()
			kind, name := args[0], args[1]
			var (
				msg string
				err error
			)
			switch kind {
			case "deployment":
				msg, err = cl.DeleteDeployment(cmd.Context(), name)
			case "pod":
				id, parseErr := uuid.Parse(name)
				if parseErr != nil {
					return fmt.Errorf("invalid pod id %q: %w", name, parseErr)
				}
				msg, err = cl.DeletePod(cmd.Context(), id)
			case "node":
				msg, err = cl.DeleteNode(cmd.Context(), name)
			default:
				return fmt.Errorf("unknown resource kind %q, want one of deployment, pod, node", kind)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	return c
}
