package memdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeccax06/anonymize-pdf/internal/document"
)

func TestEngineOpen(t *testing.T) {
	e := NewEngine()
	e.AddDocument("a.pdf", "page one", "page two")
	e.AddCorrupt("bad.pdf")

	doc, err := e.Open("a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount())

	_, err = e.Open("bad.pdf")
	assert.Error(t, err)

	_, err = e.Open("missing.pdf")
	assert.Error(t, err)
}

func TestOpenReturnsFreshCopy(t *testing.T) {
	e := NewEngine()
	e.AddDocument("a.pdf", "hello world")

	doc, err := e.Open("a.pdf")
	require.NoError(t, err)
	page, err := doc.Page(0)
	require.NoError(t, err)
	page.MarkRedaction(document.Region{X0: 0, X1: 5}, document.Appearance{})
	require.NoError(t, page.ApplyRedactions())

	// Mutating one open document never affects the fixture.
	doc2, err := e.Open("a.pdf")
	require.NoError(t, err)
	page2, err := doc2.Page(0)
	require.NoError(t, err)
	text, err := page2.Text()
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestPageSearch(t *testing.T) {
	e := NewEngine()
	e.AddDocument("a.pdf", "Ann met Ann at Ann's desk")
	doc, _ := e.Open("a.pdf")
	page, _ := doc.Page(0)

	regions := page.(*Page).Search("Ann")
	require.Len(t, regions, 3)
	assert.Equal(t, document.Region{X0: 0, X1: 3}, regions[0])
	assert.Equal(t, document.Region{X0: 8, X1: 11}, regions[1])

	assert.Empty(t, page.(*Page).Search(""))
	assert.Empty(t, page.(*Page).Search("zzz"))
}

func TestApplyRedactions(t *testing.T) {
	e := NewEngine()
	e.AddDocument("a.pdf", "call 555-0001 or 555-0002 now")
	doc, _ := e.Open("a.pdf")
	page, _ := doc.Page(0)
	mp := page.(*Page)

	for _, r := range mp.Search("555-0001") {
		mp.MarkRedaction(r, document.Appearance{})
	}
	for _, r := range mp.Search("555-0002") {
		mp.MarkRedaction(r, document.Appearance{})
	}
	require.NoError(t, mp.ApplyRedactions())

	text, _ := mp.Text()
	assert.Equal(t, "call  or  now", text)
	assert.Equal(t, 2, mp.Applied())
}

func TestApplyRedactionsOverlapping(t *testing.T) {
	e := NewEngine()
	e.AddDocument("a.pdf", "0123456789")
	doc, _ := e.Open("a.pdf")
	mp := mustPage(t, doc, 0)

	mp.MarkRedaction(document.Region{X0: 2, X1: 6}, document.Appearance{})
	mp.MarkRedaction(document.Region{X0: 4, X1: 8}, document.Appearance{})
	require.NoError(t, mp.ApplyRedactions())

	text, _ := mp.Text()
	assert.Equal(t, "0189", text)
}

func TestSaveAndReopen(t *testing.T) {
	e := NewEngine()
	e.AddDocumentWithMetadata("in.pdf", document.Metadata{"Author": "Meryem"}, "secret text")

	doc, err := e.Open("in.pdf")
	require.NoError(t, err)
	mp := mustPage(t, doc, 0)
	for _, r := range mp.Search("secret") {
		mp.MarkRedaction(r, document.Appearance{})
	}
	require.NoError(t, mp.ApplyRedactions())
	require.NoError(t, doc.SetMetadata(nil))
	require.NoError(t, doc.ClearAuxiliaryMetadata())
	require.NoError(t, doc.Save("out.pdf", document.SaveOptions{}))

	saved, ok := e.Saved("out.pdf")
	require.True(t, ok)
	assert.Empty(t, saved.Metadata())
	assert.False(t, saved.HasAuxiliaryMetadata())

	// Saved outputs can be reopened like any other document.
	reopened, err := e.Open("out.pdf")
	require.NoError(t, err)
	text, _ := mustPage(t, reopened, 0).Text()
	assert.Equal(t, " text", text)
}

func TestPageOutOfRange(t *testing.T) {
	e := NewEngine()
	e.AddDocument("a.pdf", "only page")
	doc, _ := e.Open("a.pdf")

	_, err := doc.Page(1)
	assert.Error(t, err)
	_, err = doc.Page(-1)
	assert.Error(t, err)
}

func mustPage(t *testing.T, doc document.Document, i int) *Page {
	t.Helper()
	page, err := doc.Page(i)
	require.NoError(t, err)
	return page.(*Page)
}
