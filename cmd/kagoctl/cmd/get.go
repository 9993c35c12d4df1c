package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newGetCmd implements `kagoctl get deployments|pods|nodes`, printing the
// master's raw JSON response (original_source/src/cli.rs's get_deployments
// /get_pods/get_nodes return the response body verbatim).
func newGetCmd() *cobra.Command {
	c := &cobra.Command{
		Use:       "get {deployments|pods|nodes}",
		Short:     "List deployments, pods, or nodes",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"deployments", "pods", "nodes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cl := client()
			var (
				body []byte
				err  error
			)
			switch args[0] {
			case "deployments":
				body, err = cl.GetDeployments(cmd.Context())
			case "pods":
				body, err = cl.GetPods(cmd.Context())
			case "nodes":
				body, err = cl.GetNodes(cmd.Context())
			default:
				return fmt.Errorf("unknown resource %q, want one of deployments, pods, nodes", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	return c
}
