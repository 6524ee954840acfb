package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schemaforge/internal/infer"
)

// InferCmd derives a JSON Schema from a concrete example document.
func InferCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "infer <example.json>",
		Short: "Infer a JSON Schema from an example document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read example: %w", err)
			}
			out, err := infer.FromExample(data)
			if err != nil {
				return err
			}
			if outPath != "" {
				return os.WriteFile(outPath, out, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the inferred schema to this file")
	return cmd
}
