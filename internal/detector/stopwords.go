package detector

import "strings"

// stopwords are common words that must never be treated as names, neither
// as registry entries nor as name parts. All entries are lowercase; lookups
// lowercase the candidate first.
var stopwords = map[string]struct{}{}

func init() {
	words := []string{
		"for", "the", "and", "or", "but", "with", "from", "to", "of", "in",
		"on", "at", "by", "as", "is", "are", "was", "were", "be", "been",
		"have", "has", "had", "do", "does", "did", "will", "would", "could",
		"should", "may", "might", "can", "must", "this", "that", "these",
		"those", "a", "an", "reference", "references", "refer", "referring",
		"organization", "center", "my", "your", "his", "her", "its", "our",
		"their", "me", "you", "him", "us", "them", "i", "we", "they", "he",
		"she", "it", "cross", "name", "title", "professor", "department",
	}
	for _, w := range words {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether the word (case-insensitive) is on the common
// word stoplist.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}
