package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
)

// newApplyCmd implements `kagoctl apply -f <file>`, recovered from
// original_source/src/cli.rs's apply_deployment (which the distillation
// dropped almost entirely): parse one or more Deployment manifests from a
// YAML document (multi-document separated by "---", the same convention
// original_source/src/cli.rs's parse_manifests supports) and apply each.
func newApplyCmd() *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "apply",
		Short: "Create or update a deployment from a manifest file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("-f is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}

			cl := client()
			for _, doc := range splitYAMLDocuments(data) {
				if len(strings.TrimSpace(string(doc))) == 0 {
					continue
				}
				manifest, err := v1.ParseManifest(doc)
				if err != nil {
					return fmt.Errorf("parsing manifest: %w", err)
				}
				req, err := manifest.ToDeploymentRequest()
				if err != nil {
					return fmt.Errorf("resolving manifest resources: %w", err)
				}
				msg, err := cl.ApplyDeployment(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return nil
		},
	}
	c.Flags().StringVarP(&file, "filename", "f", "", "path to a YAML manifest file")
	return c
}

// splitYAMLDocuments splits on a "---" document separator line, mirroring
// the multi-document convention original_source/src/cli.rs's
// parse_manifests implements via serde_yaml::Deserializer.
func splitYAMLDocuments(data []byte) [][]byte {
	parts := strings.Split(string(data), "\n---\n")
	docs := make([][]byte, 0, len(parts))
	for _, p := range parts {
		docs = append(docs, []byte(p))
	}
	return docs
}
