package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRegistryAdd(t *testing.T) {
	r := NewNameRegistry()

	r.Add("Abbad Andaloussi")
	assert.True(t, r.Contains("Abbad Andaloussi"))
	assert.True(t, r.Contains("Abbad"), "word parts are registered individually")
	assert.True(t, r.Contains("Andaloussi"))
	assert.True(t, r.Contains("abbad andaloussi"), "lookup is case-insensitive")

	r.Add("  Meryem  ")
	assert.True(t, r.Contains("Meryem"), "names are trimmed")

	r.Add("")
	r.Add("   ")
	assert.Equal(t, 4, r.Len())
}

func TestNameRegistryStopwords(t *testing.T) {
	r := NewNameRegistry()

	r.Add("The Organization")
	assert.False(t, r.Contains("The"), "stopword parts are never registered")
	assert.False(t, r.Contains("Organization"))

	r.Add("name")
	assert.False(t, r.Contains("name"))
}

func TestNameRegistrySkipsShortAndLowercaseParts(t *testing.T) {
	r := NewNameRegistry()

	r.Add("Ana de Souza")
	assert.True(t, r.Contains("Ana de Souza"))
	assert.True(t, r.Contains("Ana"))
	assert.True(t, r.Contains("Souza"))
	assert.False(t, r.Contains("de"), "two-rune lowercase particles are skipped")
}

func TestNameRegistryMonotonicGrowth(t *testing.T) {
	r := NewNameRegistry("Meryem")
	before := r.Len()

	r.Add("Omar Benali")
	assert.Greater(t, r.Len(), before)
	assert.True(t, r.Contains("Meryem"), "adding never evicts earlier entries")

	// Re-adding is a no-op, never a reset.
	mid := r.Len()
	r.Add("Omar Benali", "Meryem")
	assert.Equal(t, mid, r.Len())
}

func TestNameRegistryFindAllWordBoundary(t *testing.T) {
	r := NewNameRegistry("Ann")

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "inside longer word", text: "Anna Karenina wrote back", want: 0},
		{name: "followed by comma", text: "Ann, please reply", want: 1},
		{name: "parenthesized", text: "(Ann)", want: 1},
		{name: "case-insensitive", text: "reply to ANN today", want: 1},
		{name: "adjacent digit", text: "Ann2 is a robot", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := r.FindAll(tt.text)
			require.Len(t, spans, tt.want)
			for _, s := range spans {
				assert.Equal(t, "known_name", s.Category)
			}
		})
	}
}

func TestNameRegistryFindAllMultipleOccurrences(t *testing.T) {
	r := NewNameRegistry("Meryem")
	spans := r.FindAll("Meryem met Meryem's team. meryem agreed.")
	assert.Len(t, spans, 3)
}

func TestNameRegistryAll(t *testing.T) {
	r := NewNameRegistry("Zoe Park", "Ali Reza")
	all := r.All()
	require.NotEmpty(t, all)
	assert.Contains(t, all, "Zoe Park")
	assert.Contains(t, all, "Ali Reza")
	assert.IsIncreasing(t, all)
}
