// Package detector finds PII spans in extracted page text.
//
// Detection layers three sources: compiled regex recognizers (email, phone,
// URL, @-mention, name shapes, caller customs), label-context form-field
// extraction, and exact known-name lookups against a growing registry. Raw
// matches from all sources are merged into a minimal non-overlapping span
// set; the merged spans drive redaction, the categories are audit-only.
package detector

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	anonotel "github.com/rebeccax06/anonymize-pdf/internal/otel"
)

var tracer = anonotel.Tracer("github.com/rebeccax06/anonymize-pdf/internal/detector")

// Span is a half-open byte-offset range in page text tagged with a detection
// category. Invariant: 0 <= Start < End <= len(text).
type Span struct {
	Start    int
	End      int
	Category string
}

// Config assembles a Detector. The zero value uses the embedded defaults
// with an empty name registry.
type Config struct {
	// PatternFile is an optional recognizer YAML overlaying the built-ins.
	// A missing file is a no-op.
	PatternFile string
	// CustomPatterns are caller-supplied regexes, compiled
	// case-insensitively and appended after the built-ins.
	CustomPatterns []string
	// SeedNames pre-populates the known-name registry.
	SeedNames []string
	// EnabledEntities / DisabledEntities filter recognizers by
	// supported_entity (whitelist, then blacklist).
	EnabledEntities  []string
	DisabledEntities []string
}

// Detector runs all pattern matchers plus known-name lookups over page text.
type Detector struct {
	patterns []PIIPattern
	fields   *FieldExtractor
	names    *NameRegistry
}

// New creates a Detector. The embedded defaults must parse; individual
// patterns that fail to compile (built-in, file, or custom) are skipped with
// a warning rather than failing construction.
func New(cfg Config) (*Detector, error) {
	defaults, err := DefaultRecognizers()
	if err != nil {
		return nil, fmt.Errorf("loading default recognizers: %w", err)
	}

	var fileRecs []*RecognizerConfig
	if cfg.PatternFile != "" {
		rf, err := LoadRecognizerFile(cfg.PatternFile)
		if err != nil {
			return nil, fmt.Errorf("loading pattern file: %w", err)
		}
		if rf != nil {
			fileRecs = toPtrSlice(rf.Recognizers)
		}
	}

	custom := CustomRecognizers(cfg.CustomPatterns)

	merged := MergeRecognizers(toPtrSlice(defaults), fileRecs, toPtrSlice(custom))
	merged = FilterByEntities(merged, cfg.EnabledEntities, cfg.DisabledEntities)

	fields, err := DefaultFieldExtractor()
	if err != nil {
		return nil, err
	}

	return &Detector{
		patterns: CompilePatterns(merged),
		fields:   fields,
		names:    NewNameRegistry(cfg.SeedNames...),
	}, nil
}

// MustNew is like New but panics on error. Useful for zero-config startup
// where the embedded defaults are expected to always compile.
func MustNew(cfg Config) *Detector {
	d, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf("detector.New: %v", err))
	}
	return d
}

// Names exposes the known-name registry so callers can seed it or assert
// growth.
func (d *Detector) Names() *NameRegistry { return d.names }

// Patterns returns the compiled recognizer patterns (for reporting).
func (d *Detector) Patterns() []PIIPattern { return d.patterns }

// Detect returns the sorted, merged PII spans for one page of text.
//
// Form-field names are harvested into the registry first, so a name
// declared via a label on this page is already matched as a bare token
// further down the same page. The registry mutation is deliberate and
// growth-only.
func (d *Detector) Detect(ctx context.Context, text string) []Span {
	_, span := tracer.Start(ctx, "detector.detect")
	defer span.End()

	if text == "" {
		return nil
	}

	d.names.Add(d.fields.Extract(text)...)

	raw := d.findPatternSpans(text)
	raw = append(raw, d.names.FindAll(text)...)
	merged := MergeSpans(raw)

	span.SetAttributes(
		attribute.Int("detect.raw_spans", len(raw)),
		attribute.Int("detect.merged_spans", len(merged)),
		attribute.Int("detect.known_names", d.names.Len()),
	)
	return merged
}

// findPatternSpans runs every compiled recognizer over the text. regexp2
// reports rune offsets, so matches are translated back to byte offsets
// before they join the byte-indexed known-name spans. Match-time errors
// (backtracking timeouts) skip the offending pattern only.
func (d *Detector) findPatternSpans(text string) []Span {
	offsets := runeToByteOffsets(text)
	var spans []Span

	for _, p := range d.patterns {
		m, err := p.Pattern.FindStringMatch(text)
		for err == nil && m != nil {
			start := offsets[m.Index]
			end := offsets[m.Index+m.Length]
			if end > start {
				spans = append(spans, Span{Start: start, End: end, Category: p.Type})
			}
			m, err = p.Pattern.FindNextMatch(m)
		}
	}
	return spans
}

// runeToByteOffsets returns a table mapping rune index -> byte offset, with
// one trailing entry for len(text).
func runeToByteOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return offsets
}

// MergeSpans fuses overlapping or touching spans into a minimal covering
// set. Spans are sorted by start ascending, end descending (longest first at
// a given start); a span whose start falls at or before the current span's
// end extends it. The category of whichever span opened the current run is
// retained; categories feed only reporting, never redaction geometry.
// Merging an already-merged list is a no-op.
func MergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
		} else {
			merged = append(merged, s)
		}
	}
	return merged
}
