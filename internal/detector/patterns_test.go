package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRecognizers(t *testing.T) {
	recs, err := DefaultRecognizers()
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	entities := map[string]bool{}
	for _, r := range recs {
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Patterns, "recognizer %s has no patterns", r.Name)
		entities[r.SupportedEntity] = true
	}
	for _, want := range []string{"EMAIL_ADDRESS", "PHONE_NUMBER", "URL", "USERNAME", "TITLED_NAME", "SUFFIXED_NAME"} {
		assert.True(t, entities[want], "missing built-in entity %s", want)
	}
}

func TestCompilePatterns(t *testing.T) {
	recs, err := DefaultRecognizers()
	require.NoError(t, err)

	compiled := CompilePatterns(recs)
	require.NotEmpty(t, compiled)

	// Every built-in pattern must compile; a shipped default that silently
	// drops would weaken detection for every user.
	total := 0
	for _, r := range recs {
		total += len(r.Patterns)
	}
	assert.Len(t, compiled, total)
}

func TestCompilePatternsSkipsBad(t *testing.T) {
	recs := []RecognizerConfig{
		{
			Name:            "Mixed",
			SupportedEntity: "CUSTOM",
			Patterns: []PatternConfig{
				{Name: "good", Regex: `\d{4}`},
				{Name: "bad", Regex: `(unclosed`},
			},
		},
	}

	compiled := CompilePatterns(recs)
	require.Len(t, compiled, 1)
	assert.Equal(t, "good", compiled[0].Name)
	assert.Equal(t, "custom", compiled[0].Type)
}

func TestCompilePatternsSkipsDisabled(t *testing.T) {
	off := false
	recs := []RecognizerConfig{
		{
			Name:            "Off",
			SupportedEntity: "CUSTOM",
			Enabled:         &off,
			Patterns:        []PatternConfig{{Name: "p", Regex: `\d+`}},
		},
	}
	assert.Empty(t, CompilePatterns(recs))
}

func TestCustomRecognizers(t *testing.T) {
	recs := CustomRecognizers([]string{`EMP-\d{6}`, `ID:\s*\w+`})
	require.Len(t, recs, 2)
	assert.Equal(t, "CustomRecognizer1", recs[0].Name)
	assert.Equal(t, "CUSTOM", recs[0].SupportedEntity)
	assert.Equal(t, `EMP-\d{6}`, recs[0].Patterns[0].Regex)
}

func TestIsStopword(t *testing.T) {
	assert.True(t, IsStopword("the"))
	assert.True(t, IsStopword("The"))
	assert.True(t, IsStopword("ORGANIZATION"))
	assert.False(t, IsStopword("Meryem"))
}
