package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schemaforge/internal/schemacheck"
)

// ValidateCmd compiles a JSON Schema document and optionally checks an
// instance against it.
func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema.json> [instance.json]",
		Short: "Validate a JSON Schema document, or an instance against it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read schema: %w", err)
			}

			if len(args) == 1 {
				if _, err := schemacheck.Compile(schema); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema compiles")
				return nil
			}

			instance, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read instance: %w", err)
			}
			messages, err := schemacheck.Validate(schema, instance)
			if err != nil {
				return err
			}
			if len(messages) > 0 {
				for _, m := range messages {
					fmt.Fprintln(cmd.ErrOrStderr(), m)
				}
				return errors.New("instance does not conform to schema")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "instance is valid")
			return nil
		},
	}
}
