package detector

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog/log"

	"github.com/rebeccax06/anonymize-pdf/patterns"
)

// matchTimeout bounds regexp2 backtracking on pathological page text.
const matchTimeout = 2 * time.Second

// PIIPattern represents a compiled, ready-to-use PII detection pattern.
type PIIPattern struct {
	Name          string
	Type          string
	Pattern       *regexp2.Regexp
	CaseSensitive bool
}

// DefaultRecognizers returns the built-in PII recognizers parsed from the
// embedded pii_default.yaml file. This is the first layer in the merge chain.
func DefaultRecognizers() ([]RecognizerConfig, error) {
	rf, err := ParseRecognizerFile(patterns.PIIDefaultYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded PII patterns: %w", err)
	}
	return rf.Recognizers, nil
}

// CustomRecognizers wraps caller-supplied regex strings as recognizers so
// they flow through the same merge/compile path as the built-ins. Custom
// patterns always match case-insensitively.
func CustomRecognizers(regexes []string) []RecognizerConfig {
	recs := make([]RecognizerConfig, 0, len(regexes))
	for i, re := range regexes {
		recs = append(recs, RecognizerConfig{
			Name:            fmt.Sprintf("CustomRecognizer%d", i+1),
			SupportedEntity: "CUSTOM",
			Patterns:        []PatternConfig{{Name: fmt.Sprintf("custom_%d", i+1), Regex: re}},
		})
	}
	return recs
}

// CompilePatterns converts a list of recognizer configs into the compiled
// []PIIPattern slice used by the Detector at runtime. Disabled recognizers
// are skipped. A pattern that fails to compile is dropped with a logged
// warning; one bad custom pattern never aborts the run.
func CompilePatterns(recognizers []RecognizerConfig) []PIIPattern {
	var compiled []PIIPattern

	for _, rec := range recognizers {
		if !rec.isEnabled() {
			continue
		}
		opts := regexp2.None
		if !rec.CaseSensitive {
			opts |= regexp2.IgnoreCase
		}
		for _, p := range rec.Patterns {
			re, err := regexp2.Compile(p.Regex, opts)
			if err != nil {
				log.Warn().
					Err(err).
					Str("recognizer", rec.Name).
					Str("pattern", p.Name).
					Msg("Skipping invalid pattern")
				continue
			}
			re.MatchTimeout = matchTimeout
			compiled = append(compiled, PIIPattern{
				Name:          p.Name,
				Type:          entityToType(rec.SupportedEntity),
				Pattern:       re,
				CaseSensitive: rec.CaseSensitive,
			})
		}
	}

	return compiled
}
