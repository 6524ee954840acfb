// Package cli assembles the schemaforge command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Root returns the schemaforge root command.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "schemaforge",
		Short:         "Schema field extraction and cross-schema mapping",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		ExtractCmd(),
		MapCmd(),
		ConvertCmd(),
		InferCmd(),
		ValidateCmd(),
		ServeCmd(),
	)
	return root
}
