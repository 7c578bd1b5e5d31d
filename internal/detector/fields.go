package detector

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/rebeccax06/anonymize-pdf/patterns"
)

// FieldFile is the top-level YAML structure for form-field extractor definitions.
type FieldFile struct {
	Fields []FieldConfig `yaml:"fields"`
}

// FieldConfig describes one labeled form-field pattern. Group selects the
// capture group holding the name; the label is never part of the result.
type FieldConfig struct {
	Name  string `yaml:"name"`
	Regex string `yaml:"regex"`
	Group int    `yaml:"group"`
}

// FieldExtractor pulls personal names out of labeled form fields such as
// "First Name: Meryem" or "Recommender 2 Name: John Smith".
type FieldExtractor struct {
	patterns []fieldPattern
}

type fieldPattern struct {
	name  string
	re    *regexp2.Regexp
	group int
}

// DefaultFieldExtractor builds an extractor from the embedded
// form_fields.yaml definitions.
func DefaultFieldExtractor() (*FieldExtractor, error) {
	var ff FieldFile
	if err := yaml.Unmarshal(patterns.FormFieldsYAML(), &ff); err != nil {
		return nil, fmt.Errorf("parsing embedded form-field patterns: %w", err)
	}
	return NewFieldExtractor(ff.Fields), nil
}

// NewFieldExtractor compiles field patterns in multiline mode. Patterns
// scope any case-insensitivity themselves with (?i:) groups so that the
// captured value stays case-sensitive. Invalid patterns are dropped with a
// logged warning.
func NewFieldExtractor(configs []FieldConfig) *FieldExtractor {
	e := &FieldExtractor{}
	for _, fc := range configs {
		re, err := regexp2.Compile(fc.Regex, regexp2.Multiline)
		if err != nil {
			log.Warn().
				Err(err).
				Str("field", fc.Name).
				Msg("Skipping invalid form-field pattern")
			continue
		}
		re.MatchTimeout = matchTimeout
		group := fc.Group
		if group <= 0 {
			group = 1
		}
		e.patterns = append(e.patterns, fieldPattern{name: fc.Name, re: re, group: group})
	}
	return e
}

// Extract returns the names captured by the field patterns, deduplicated in
// order of first appearance. Candidates failing the stopword or
// capitalization gate are discarded. Match-time errors (timeouts) abort only
// the offending pattern; extraction continues with the rest.
func (e *FieldExtractor) Extract(text string) []string {
	seen := make(map[string]struct{})
	var names []string

	for _, fp := range e.patterns {
		m, err := fp.re.FindStringMatch(text)
		for err == nil && m != nil {
			g := m.GroupByNumber(fp.group)
			if g != nil {
				if name, ok := acceptFieldName(g.String()); ok {
					key := strings.ToLower(name)
					if _, dup := seen[key]; !dup {
						seen[key] = struct{}{}
						names = append(names, name)
					}
				}
			}
			m, err = fp.re.FindNextMatch(m)
		}
	}
	return names
}

// acceptFieldName validates a captured candidate: trimmed, at least two
// characters, not a stopword, and starting with an uppercase letter.
func acceptFieldName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) < 2 {
		return "", false
	}
	if IsStopword(name) {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(first) {
		return "", false
	}
	return name, true
}
