package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeccax06/anonymize-pdf/internal/config"
	"github.com/rebeccax06/anonymize-pdf/internal/document/memdoc"
	"github.com/rebeccax06/anonymize-pdf/internal/redactor"
)

func TestBuildDetectorMergesFlags(t *testing.T) {
	extraNames = []string{"Omar Benali"}
	extraPattern = []string{`EMP-\d{6}`}
	t.Cleanup(func() {
		extraNames = nil
		extraPattern = nil
	})

	cfg := &config.Config{
		Names:          []string{"Meryem"},
		CustomPatterns: []string{`ID:\s*\w+`},
	}
	det, err := buildDetector(cfg)
	require.NoError(t, err)

	assert.True(t, det.Names().Contains("Meryem"), "configured names are seeded")
	assert.True(t, det.Names().Contains("Omar Benali"), "flag names are seeded")

	spans := det.Detect(context.Background(), "Badge EMP-004512 and ID: X9")
	categories := map[string]bool{}
	for _, s := range spans {
		categories[s.Category] = true
	}
	assert.True(t, categories["custom"], "both custom pattern sources are compiled")
}

func TestPrintSummary(t *testing.T) {
	engine := memdoc.NewEngine()
	engine.AddDocument("a.pdf", "mail a@example.com")

	cfg := &config.Config{}
	det, err := buildDetector(cfg)
	require.NoError(t, err)
	anon := redactor.New(engine, det)
	_, err = anon.File(context.Background(), "a.pdf", "")
	require.NoError(t, err)

	cmd := &cobra.Command{}
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	verbose = false
	printSummary(cmd, anon)
	assert.Empty(t, buf.String(), "summary only prints in verbose mode")

	verbose = true
	t.Cleanup(func() { verbose = false })
	printSummary(cmd, anon)
	out := buf.String()
	assert.Contains(t, out, "Redactions by category:")
	assert.Contains(t, out, "email")
}

func TestRunRedactMissingInput(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	err := runRedact(cmd, []string{"/no/such/path.pdf"})
	assert.Error(t, err)
}

func TestRunRedactFolderFlagOnFile(t *testing.T) {
	folderMode = true
	t.Cleanup(func() { folderMode = false })

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	// Any existing regular file will do.
	err := runRedact(cmd, []string{"root.go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--folder requires a directory")
}
