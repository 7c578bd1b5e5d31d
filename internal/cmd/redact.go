package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rebeccax06/anonymize-pdf/internal/config"
	"github.com/rebeccax06/anonymize-pdf/internal/detector"
	"github.com/rebeccax06/anonymize-pdf/internal/document"
	"github.com/rebeccax06/anonymize-pdf/internal/document/pdfdoc"
	"github.com/rebeccax06/anonymize-pdf/internal/evidence"
	"github.com/rebeccax06/anonymize-pdf/internal/redactor"
)

var (
	outputPath   string
	folderMode   bool
	extraNames   []string
	extraPattern []string
	dryRun       bool
	noAudit      bool
)

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (or output directory in folder mode)")
	rootCmd.Flags().BoolVarP(&folderMode, "folder", "f", false, "treat input as a directory and process every PDF in it")
	rootCmd.Flags().StringArrayVarP(&extraNames, "names", "n", nil, "additional known names to redact (repeatable)")
	rootCmd.Flags().StringArrayVar(&extraPattern, "pattern", nil, "additional regex pattern to redact (repeatable)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "detect and report PII without writing any output")
	rootCmd.Flags().BoolVar(&noAudit, "no-audit", false, "skip recording the run in the audit trail")
}

func runRedact(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	input := args[0]

	ctx, span := tracer.Start(cmd.Context(), "cmd.redact")
	defer span.End()

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input path %q: %w", input, err)
	}

	if info.IsDir() && !folderMode {
		log.Info().Str("input", input).Msg("Input is a directory, switching to folder mode")
		folderMode = true
	}
	if folderMode && !info.IsDir() {
		return fmt.Errorf("--folder requires a directory, %q is a file", input)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	det, err := buildDetector(cfg)
	if err != nil {
		return err
	}

	if dryRun {
		if folderMode {
			return fmt.Errorf("--dry-run is not supported in folder mode")
		}
		return scanFile(ctx, cmd, det, input)
	}

	opts := []redactor.Option{
		redactor.WithAppearance(document.DefaultAppearance(cfg.RedactLabel)),
	}
	if store := openEvidence(cfg); store != nil {
		defer store.Close()
		opts = append(opts, redactor.WithEvidence(store))
	}

	anon := redactor.New(pdfdoc.New(), det, opts...)

	if folderMode {
		result, err := anon.Folder(ctx, input, outputPath)
		if err != nil {
			return err
		}
		span.SetAttributes(
			attribute.Int("batch.processed", result.Processed()),
			attribute.Int("batch.total", result.Total),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d/%d files\n", result.Processed(), result.Total)
		printSummary(cmd, anon)
		return nil
	}

	out, err := anon.File(ctx, input, outputPath)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("redactions", anon.TotalRedactions()))
	fmt.Fprintf(cmd.OutOrStdout(), "Redacted %d items -> %s\n", anon.TotalRedactions(), out)
	printSummary(cmd, anon)
	return nil
}

// buildDetector merges configured names and patterns with the CLI flags.
func buildDetector(cfg *config.Config) (*detector.Detector, error) {
	det, err := detector.New(detector.Config{
		PatternFile:    cfg.PatternFile,
		CustomPatterns: append(append([]string{}, cfg.CustomPatterns...), extraPattern...),
		SeedNames:      append(append([]string{}, cfg.Names...), extraNames...),
	})
	if err != nil {
		return nil, fmt.Errorf("building detector: %w", err)
	}
	return det, nil
}

// openEvidence opens the audit store. Failures are logged, never fatal:
// redaction must not depend on the audit trail being writable.
func openEvidence(cfg *config.Config) *evidence.Store {
	if noAudit {
		return nil
	}
	if err := cfg.EnsureDataDir(); err != nil {
		log.Warn().Err(err).Msg("Cannot create data directory, audit trail disabled")
		return nil
	}
	cfg.WarnIfDefaultKey()
	store, err := evidence.NewStore(cfg.AuditDBPath(), cfg.SigningKey)
	if err != nil {
		log.Warn().Err(err).Msg("Cannot open audit store, audit trail disabled")
		return nil
	}
	return store
}

func printSummary(cmd *cobra.Command, anon *redactor.Anonymizer) {
	if !verbose {
		return
	}
	summary := anon.Summary()
	if len(summary) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No PII found")
		return
	}
	cats := make([]string, 0, len(summary))
	for c := range summary {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	fmt.Fprintln(cmd.OutOrStdout(), "Redactions by category:")
	for _, c := range cats {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %d\n", c, summary[c])
	}
}
