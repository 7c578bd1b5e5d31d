package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rebeccax06/anonymize-pdf/internal/config"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the active detection patterns",
	Long: `Patterns prints every compiled recognizer pattern, including those
layered in from a pattern file or --pattern flags, with its category.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		det, err := buildDetector(cfg)
		if err != nil {
			return err
		}

		for _, p := range det.Patterns() {
			sensitivity := "i"
			if p.CaseSensitive {
				sensitivity = " "
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s %-28s %s\n", p.Type, sensitivity, p.Name, p.Pattern.String())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d patterns\n", len(det.Patterns()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}
