package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rebeccax06/anonymize-pdf/internal/config"
	"github.com/rebeccax06/anonymize-pdf/internal/detector"
	"github.com/rebeccax06/anonymize-pdf/internal/document/pdfdoc"
)

var scanCmd = &cobra.Command{
	Use:   "scan [input]",
	Short: "Report PII found in a PDF without modifying it",
	Long: `Scan opens a PDF, runs the full detection pipeline on every page and
prints each finding with its page, category and matched text. Nothing is
written; this is the read-only counterpart of a redaction run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "cmd.scan")
		defer span.End()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		det, err := buildDetector(cfg)
		if err != nil {
			return err
		}
		return scanFile(ctx, cmd, det, args[0])
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func scanFile(ctx context.Context, cmd *cobra.Command, det *detector.Detector, input string) error {
	ctx, span := tracer.Start(ctx, "cmd.scan_file")
	defer span.End()

	doc, err := pdfdoc.New().Open(input)
	if err != nil {
		return fmt.Errorf("opening %s: %w", input, err)
	}
	defer doc.Close()

	total := 0
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.Page(i)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		text, err := page.Text()
		if err != nil {
			return fmt.Errorf("extracting text from page %d: %w", i+1, err)
		}
		for _, s := range det.Detect(ctx, text) {
			fmt.Fprintf(cmd.OutOrStdout(), "page %d  %-12s %q\n", i+1, s.Category, text[s.Start:s.End])
			total++
		}
	}

	span.SetAttributes(attribute.Int("findings", total))
	fmt.Fprintf(cmd.OutOrStdout(), "%d findings in %s\n", total, input)
	return nil
}
