package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schemaforge/internal/convert"
)

// ConvertCmd translates a schema document between XSD and JSON Schema.
func ConvertCmd() *cobra.Command {
	var (
		to      string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "convert <schema-file>",
		Short: "Convert between XSD and JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read schema: %w", err)
			}

			var out []byte
			switch to {
			case "jsonschema":
				out, err = convert.XSDToJSONSchema(data)
			case "xsd":
				out, err = convert.JSONSchemaToXSD(data)
			default:
				return fmt.Errorf("unknown target format %q, want jsonschema or xsd", to)
			}
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

	cmd.Flags().StringVar(&to, "to", "", "target format: jsonschema or xsd")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the converted document to this file")
	cmd.MarkFlagRequired("to")
	return cmd
}
