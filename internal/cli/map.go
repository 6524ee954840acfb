package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schemaforge/internal/mapping"
	"schemaforge/internal/render"
	"schemaforge/internal/source"
)

// MapCmd aligns two schema documents and prints the mapping table.
func MapCmd() *cobra.Command {
	var (
		threshold float64
		maxLevel  int
		scorer    string
		csvOut    string
	)

	cmd := &cobra.Command{
		Use:   "map <source-schema> <target-schema>",
		Short: "Map source schema fields onto target schema fields",
		Long: "Map extracts both schema documents, aligns every source field with its " +
			"best target counterpart and prints the combined mapping table as CSV.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.Load(args[0])
			if err != nil {
				return err
			}
			tgt, err := source.Load(args[1])
			if err != nil {
				return err
			}

			if threshold < 0 || threshold > 1 {
				return fmt.Errorf("threshold %v out of range, want a value between 0 and 1", threshold)
			}

			engine := mapping.NewEngine()
			engine.Threshold = threshold
			switch scorer {
			case "", "path":
			case "levenshtein":
				engine.Scorer = mapping.LevenshteinScorer{}
			default:
				return fmt.Errorf("unknown scorer %q, want path or levenshtein", scorer)
			}

			entries := engine.Map(src.Fields, tgt.Fields)
			stats := mapping.Stats(entries, len(tgt.Fields))
			table := (&render.Renderer{MaxLevel: maxLevel}).MappingTable(entries, src, tgt)

			out := cmd.OutOrStdout()
			if csvOut != "" {
				f, err := os.Create(csvOut)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := render.WriteCSV(out, table); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(),
				"mapped %d source fields: %d exact, %d fuzzy, %d unmapped (%.1f%% coverage)\n",
				stats.TotalSourceFields, stats.ExactMatches, stats.FuzzyMatches,
				stats.NoMatches, stats.Coverage)
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", mapping.DefaultThreshold, "minimum fuzzy similarity accepted as a match")
	cmd.Flags().IntVar(&maxLevel, "max-level", render.DefaultMaxLevel, "number of level columns per side")
	cmd.Flags().StringVar(&scorer, "scorer", "path", "similarity scorer: path or levenshtein")
	cmd.Flags().StringVar(&csvOut, "csv-out", "", "write the mapping table to this file instead of stdout")
	return cmd
}
