package redactor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// BatchResult reports a folder run: the outputs that were produced and how
// many inputs were found.
type BatchResult struct {
	Outputs []string
	Total   int
}

// Processed returns the number of successfully produced outputs.
func (r *BatchResult) Processed() int { return len(r.Outputs) }

// DefaultOutputPath derives the single-file output path:
// "app.pdf" → "app_redacted.pdf", next to the input.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + "_redacted" + ext
}

// Folder anonymizes every PDF in dir (case-insensitive extension match)
// into outDir, which defaults to dir/redacted and is created if missing.
// One file's failure is logged and does not abort the batch; the result
// lists only the outputs that were actually produced.
func (a *Anonymizer) Folder(ctx context.Context, dir, outDir string) (*BatchResult, error) {
	ctx, span := tracer.Start(ctx, "redactor.folder")
	defer span.End()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", dir, err)
	}

	var inputs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			inputs = append(inputs, filepath.Join(dir, e.Name()))
		}
	}

	result := &BatchResult{Total: len(inputs)}
	if len(inputs) == 0 {
		log.Info().Str("folder", dir).Msg("No PDF files found")
		return result, nil
	}

	if outDir == "" {
		outDir = filepath.Join(dir, "redacted")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output folder %s: %w", outDir, err)
	}

	log.Info().Int("files", len(inputs)).Str("folder", dir).Msg("Starting batch")

	for _, input := range inputs {
		name := filepath.Base(input)
		ext := filepath.Ext(name)
		output := filepath.Join(outDir, strings.TrimSuffix(name, ext)+"_redacted"+ext)

		if _, err := a.File(ctx, input, output); err != nil {
			log.Error().Err(err).Str("input", input).Msg("Skipping file")
			continue
		}
		result.Outputs = append(result.Outputs, output)
	}

	span.SetAttributes(
		attribute.Int("batch.total", result.Total),
		attribute.Int("batch.processed", result.Processed()),
	)
	log.Info().
		Str("folder", dir).
		Str("output_folder", outDir).
		Int("processed", result.Processed()).
		Int("total", result.Total).
		Msgf("Batch complete: %d/%d files", result.Processed(), result.Total)

	return result, nil
}
