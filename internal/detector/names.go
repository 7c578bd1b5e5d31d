package detector

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minNameRunes is the minimum length for a registry entry to be scanned for.
// Shorter strings are overwhelmingly false positives.
const minNameRunes = 3

// NameRegistry is the growing set of literal names treated as certain PII.
// It is seeded by the caller, augmented with names harvested from form
// fields, and only ever grows for the lifetime of a run: a name seen on one
// page (or one document of a batch) is redacted on every later page.
//
// Lookups are case-insensitive and word-boundary-aware. The registry is not
// safe for concurrent use; page processing is sequential by design because
// detection on page N+1 depends on names harvested on page N.
type NameRegistry struct {
	// entries maps the lowercased name to its original casing (for display)
	// and a compiled case-insensitive literal matcher.
	entries map[string]nameEntry
}

type nameEntry struct {
	display string
	re      *regexp.Regexp
}

// NewNameRegistry creates a registry seeded with the given names.
func NewNameRegistry(seed ...string) *NameRegistry {
	r := &NameRegistry{entries: make(map[string]nameEntry)}
	r.Add(seed...)
	return r
}

// Add inserts names into the registry. Each name is trimmed and dropped if
// its lowercase form is a stopword. For an accepted name, every individual
// word part longer than 2 characters that is capitalized and not a stopword
// is inserted as well, so "Meryem" is caught as a bare token after
// "First Name: Meryem" was seen.
func (r *NameRegistry) Add(names ...string) {
	for _, name := range names {
		clean := strings.TrimSpace(name)
		if clean == "" || IsStopword(clean) {
			continue
		}
		r.insert(clean)
		for _, part := range strings.Fields(clean) {
			if utf8.RuneCountInString(part) <= 2 {
				continue
			}
			if IsStopword(part) {
				continue
			}
			first, _ := utf8.DecodeRuneInString(part)
			if !unicode.IsUpper(first) {
				continue
			}
			r.insert(part)
		}
	}
}

func (r *NameRegistry) insert(name string) {
	key := strings.ToLower(name)
	if _, ok := r.entries[key]; ok {
		return
	}
	r.entries[key] = nameEntry{
		display: name,
		re:      regexp.MustCompile(`(?i)` + regexp.QuoteMeta(name)),
	}
}

// Contains reports whether the registry holds the name (case-insensitive).
func (r *NameRegistry) Contains(name string) bool {
	_, ok := r.entries[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Len returns the number of registered names.
func (r *NameRegistry) Len() int { return len(r.entries) }

// All returns the registered names in their original casing, sorted.
func (r *NameRegistry) All() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.display)
	}
	sort.Strings(names)
	return names
}

// FindAll scans text for every occurrence of every registered name and
// returns raw known_name spans. A candidate is accepted only when the
// characters immediately before and after it (if any) are non-alphanumeric,
// so "Ann" never matches inside "Anna".
func (r *NameRegistry) FindAll(text string) []Span {
	var spans []Span
	for key, e := range r.entries {
		if IsStopword(key) {
			continue
		}
		if utf8.RuneCountInString(key) < minNameRunes {
			continue
		}
		for _, loc := range e.re.FindAllStringIndex(text, -1) {
			if !boundaryOK(text, loc[0], loc[1]) {
				continue
			}
			spans = append(spans, Span{Start: loc[0], End: loc[1], Category: "known_name"})
		}
	}
	return spans
}

// boundaryOK reports whether text[start:end] sits on word boundaries: the
// runes adjacent to the match, when present, must not be letters or digits.
func boundaryOK(text string, start, end int) bool {
	if start > 0 {
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(before) || unicode.IsDigit(before) {
			return false
		}
	}
	if end < len(text) {
		after, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(after) || unicode.IsDigit(after) {
			return false
		}
	}
	return true
}
