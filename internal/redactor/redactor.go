// Package redactor drives redaction: it resolves detected PII spans to
// on-page regions, marks and applies redactions through the document
// engine, scrubs metadata, and persists the result. It owns the audit
// trail of what was removed.
package redactor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rebeccax06/anonymize-pdf/internal/detector"
	"github.com/rebeccax06/anonymize-pdf/internal/document"
	"github.com/rebeccax06/anonymize-pdf/internal/evidence"
	anonotel "github.com/rebeccax06/anonymize-pdf/internal/otel"
)

var tracer = anonotel.Tracer("github.com/rebeccax06/anonymize-pdf/internal/redactor")

// recordTextLimit truncates redacted literals in audit records so the audit
// trail itself never stores a full PII value.
const recordTextLimit = 50

// RedactionRecord is one audit entry: the span category and the redacted
// literal, truncated.
type RedactionRecord struct {
	Category string
	Text     string
}

// Option configures an Anonymizer.
type Option func(*Anonymizer)

// WithAppearance overrides the default redaction appearance.
func WithAppearance(app document.Appearance) Option {
	return func(a *Anonymizer) { a.app = app }
}

// WithEvidence attaches an audit store. Each processed document produces
// one signed record; store failures are logged, never fatal.
func WithEvidence(store *evidence.Store) Option {
	return func(a *Anonymizer) { a.store = store }
}

// Anonymizer orchestrates detection and redaction for documents.
//
// The detector's known-name registry lives for the Anonymizer's lifetime,
// so names learned in one document are also redacted in later documents of
// the same batch. Pages are processed strictly in order for the same
// reason. Not safe for concurrent use.
type Anonymizer struct {
	engine document.Engine
	det    *detector.Detector
	app    document.Appearance
	store  *evidence.Store

	// Per-document state, reset by File.
	docRedactions int
	docRecords    []RedactionRecord

	// Process-lifetime totals for the end-of-run summary.
	runRedactions int
	runSummary    map[string]int
}

// New creates an Anonymizer over the given engine and detector.
func New(engine document.Engine, det *detector.Detector, opts ...Option) *Anonymizer {
	a := &Anonymizer{
		engine:     engine,
		det:        det,
		app:        document.DefaultAppearance("[REDACTED]"),
		runSummary: make(map[string]int),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// TotalRedactions returns the number of redactions applied since creation.
func (a *Anonymizer) TotalRedactions() int { return a.runRedactions }

// Records returns the audit entries of the most recent document.
func (a *Anonymizer) Records() []RedactionRecord { return a.docRecords }

// Summary returns cumulative redaction counts grouped by category.
func (a *Anonymizer) Summary() map[string]int {
	out := make(map[string]int, len(a.runSummary))
	for k, v := range a.runSummary {
		out[k] = v
	}
	return out
}

// RedactPage marks and applies redactions for every span on one page.
// Each span's literal text is resolved to zero or more visual occurrences;
// every occurrence gets a mark. Marks stay provisional until all spans are
// processed, then commit in one apply step, so search results for later
// spans on the same page are not disturbed. Returns the per-page count.
func (a *Anonymizer) RedactPage(ctx context.Context, page document.Page, text string, spans []detector.Span) (int, error) {
	count := 0
	for _, s := range spans {
		if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
			continue
		}
		literal := text[s.Start:s.End]
		for _, region := range page.Search(literal) {
			page.MarkRedaction(region, a.app)
			count++
			a.docRecords = append(a.docRecords, RedactionRecord{
				Category: s.Category,
				Text:     truncate(literal, recordTextLimit),
			})
			a.runSummary[s.Category]++
		}
	}
	if count > 0 {
		if err := page.ApplyRedactions(); err != nil {
			return count, fmt.Errorf("applying redactions: %w", err)
		}
	}
	a.docRedactions += count
	a.runRedactions += count
	return count, nil
}

// File anonymizes a single document and returns the output path. Pages are
// processed in order; metadata is scrubbed best-effort; the output is saved
// with maximal compaction.
func (a *Anonymizer) File(ctx context.Context, input, output string) (string, error) {
	ctx, span := tracer.Start(ctx, "redactor.file")
	defer span.End()

	if output == "" {
		output = DefaultOutputPath(input)
	}

	a.docRedactions = 0
	a.docRecords = nil
	start := time.Now()

	doc, err := a.engine.Open(input)
	if err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	pages := doc.PageCount()
	for i := 0; i < pages; i++ {
		page, err := doc.Page(i)
		if err != nil {
			return "", fmt.Errorf("loading page %d: %w", i+1, err)
		}
		text, err := page.Text()
		if err != nil {
			return "", fmt.Errorf("extracting page %d: %w", i+1, err)
		}
		spans := a.det.Detect(ctx, text)
		count, err := a.RedactPage(ctx, page, text, spans)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		if count > 0 {
			log.Info().
				Str("input", input).
				Int("page", i+1).
				Int("redactions", count).
				Func(anonotel.LogTraceFields(ctx)).
				Msg("Page redacted")
		}
	}

	a.scrubMetadata(doc)

	opts := document.SaveOptions{MaxCompaction: true, Compress: true, CleanUnused: true}
	if err := doc.Save(output, opts); err != nil {
		return "", fmt.Errorf("saving document: %w", err)
	}

	span.SetAttributes(
		attribute.Int("document.pages", pages),
		attribute.Int("document.redactions", a.docRedactions),
	)
	log.Info().
		Str("input", input).
		Str("output", output).
		Int("pages", pages).
		Int("redactions", a.docRedactions).
		Dur("duration", time.Since(start)).
		Msg("Document anonymized")

	a.storeEvidence(ctx, input, output, pages, time.Since(start))
	return output, nil
}

// scrubMetadata resets the standard metadata map and nulls the auxiliary
// metadata stream. Both steps are best-effort.
func (a *Anonymizer) scrubMetadata(doc document.Document) {
	if err := doc.SetMetadata(nil); err != nil {
		log.Warn().Err(err).Msg("Could not clear document metadata")
	}
	if err := doc.ClearAuxiliaryMetadata(); err != nil {
		log.Debug().Err(err).Msg("Could not clear auxiliary metadata")
	}
}

// storeEvidence writes the signed audit record for one document, if a store
// is attached. Failures are logged and swallowed: the audit trail must
// never block the anonymization itself.
func (a *Anonymizer) storeEvidence(ctx context.Context, input, output string, pages int, dur time.Duration) {
	if a.store == nil {
		return
	}
	categories := make(map[string]int)
	for _, r := range a.docRecords {
		categories[r.Category]++
	}
	rec := &evidence.Record{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Input:      input,
		Output:     output,
		Pages:      pages,
		Redactions: a.docRedactions,
		Categories: categories,
		DurationMS: dur.Milliseconds(),
	}
	if err := a.store.Store(ctx, rec); err != nil {
		log.Warn().Err(err).Str("input", input).Msg("Could not store audit record")
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
