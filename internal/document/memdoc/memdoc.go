// Package memdoc implements the document contract in memory. It backs unit
// tests and dry runs: pages are plain strings, search returns byte-offset
// regions, and applying redactions physically removes the marked text so
// re-running the pipeline over a saved output finds nothing.
package memdoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rebeccax06/anonymize-pdf/internal/document"
)

// Engine holds registered fixtures and captures saved outputs.
type Engine struct {
	fixtures map[string]*fixture
	saved    map[string]*Document
}

type fixture struct {
	pages   []string
	meta    document.Metadata
	corrupt bool
}

// NewEngine creates an empty in-memory engine.
func NewEngine() *Engine {
	return &Engine{
		fixtures: make(map[string]*fixture),
		saved:    make(map[string]*Document),
	}
}

// AddDocument registers a document fixture under path, one string per page.
func (e *Engine) AddDocument(path string, pages ...string) {
	e.fixtures[path] = &fixture{pages: pages, meta: document.Metadata{}}
}

// AddDocumentWithMetadata registers a fixture carrying standard metadata.
func (e *Engine) AddDocumentWithMetadata(path string, meta document.Metadata, pages ...string) {
	m := document.Metadata{}
	for k, v := range meta {
		m[k] = v
	}
	e.fixtures[path] = &fixture{pages: pages, meta: m}
}

// AddCorrupt registers a path whose Open always fails, simulating an
// unreadable document.
func (e *Engine) AddCorrupt(path string) {
	e.fixtures[path] = &fixture{corrupt: true}
}

// Saved returns the document saved under path, if any.
func (e *Engine) Saved(path string) (*Document, bool) {
	d, ok := e.saved[path]
	return d, ok
}

// Open returns a fresh document for a registered fixture, or a copy of a
// previously saved output so redacted results can be reprocessed.
func (e *Engine) Open(path string) (document.Document, error) {
	if f, ok := e.fixtures[path]; ok {
		if f.corrupt {
			return nil, fmt.Errorf("opening %s: not a valid document", path)
		}
		return newDocument(e, f.pages, f.meta), nil
	}
	if d, ok := e.saved[path]; ok {
		return newDocument(e, d.pageTexts(), d.meta), nil
	}
	return nil, fmt.Errorf("opening %s: no such document", path)
}

// Document is an open in-memory document.
type Document struct {
	engine  *Engine
	pages   []*Page
	meta    document.Metadata
	auxMeta bool
}

func newDocument(e *Engine, pages []string, meta document.Metadata) *Document {
	d := &Document{engine: e, meta: document.Metadata{}, auxMeta: true}
	for k, v := range meta {
		d.meta[k] = v
	}
	for _, text := range pages {
		d.pages = append(d.pages, &Page{text: text})
	}
	return d
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the zero-based page.
func (d *Document) Page(index int) (document.Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

// Metadata returns the current standard metadata map.
func (d *Document) Metadata() document.Metadata { return d.meta }

// HasAuxiliaryMetadata reports whether the auxiliary metadata stream is
// still present.
func (d *Document) HasAuxiliaryMetadata() bool { return d.auxMeta }

// SetMetadata replaces the standard metadata map.
func (d *Document) SetMetadata(meta document.Metadata) error {
	d.meta = document.Metadata{}
	for k, v := range meta {
		d.meta[k] = v
	}
	return nil
}

// ClearAuxiliaryMetadata drops the auxiliary metadata stream.
func (d *Document) ClearAuxiliaryMetadata() error {
	d.auxMeta = false
	return nil
}

// Save snapshots the document into the engine under path.
func (d *Document) Save(path string, opts document.SaveOptions) error {
	snapshot := newDocument(d.engine, d.pageTexts(), d.meta)
	snapshot.auxMeta = d.auxMeta
	d.engine.saved[path] = snapshot
	return nil
}

// Close is a no-op for in-memory documents.
func (d *Document) Close() error { return nil }

func (d *Document) pageTexts() []string {
	texts := make([]string, len(d.pages))
	for i, p := range d.pages {
		texts[i] = p.text
	}
	return texts
}

// Page is one in-memory page. Regions are byte offsets into the page text:
// X0 is the start, X1 the end of an occurrence.
type Page struct {
	text    string
	marks   []document.Region
	applied int
}

// Text returns the page text.
func (p *Page) Text() (string, error) { return p.text, nil }

// Applied returns how many marks have been committed on this page.
func (p *Page) Applied() int { return p.applied }

// Search returns a region for every non-overlapping occurrence of literal.
func (p *Page) Search(literal string) []document.Region {
	if literal == "" {
		return nil
	}
	var regions []document.Region
	for start := 0; ; {
		idx := strings.Index(p.text[start:], literal)
		if idx < 0 {
			break
		}
		at := start + idx
		regions = append(regions, document.Region{
			X0: float64(at),
			X1: float64(at + len(literal)),
		})
		start = at + len(literal)
	}
	return regions
}

// MarkRedaction records a provisional mark. The page text is untouched
// until ApplyRedactions.
func (p *Page) MarkRedaction(r document.Region, _ document.Appearance) {
	p.marks = append(p.marks, r)
}

// ApplyRedactions removes the text inside every pending mark. Marked ranges
// are fused and deleted back to front so earlier offsets stay valid.
func (p *Page) ApplyRedactions() error {
	if len(p.marks) == 0 {
		return nil
	}
	ranges := make([][2]int, 0, len(p.marks))
	for _, r := range p.marks {
		start, end := int(r.X0), int(r.X1)
		if start < 0 || end > len(p.text) || start >= end {
			continue
		}
		ranges = append(ranges, [2]int{start, end})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })

	var fused [][2]int
	for _, r := range ranges {
		if n := len(fused); n > 0 && r[0] <= fused[n-1][1] {
			if r[1] > fused[n-1][1] {
				fused[n-1][1] = r[1]
			}
			continue
		}
		fused = append(fused, r)
	}

	for i := len(fused) - 1; i >= 0; i-- {
		p.text = p.text[:fused[i][0]] + p.text[fused[i][1]:]
	}
	p.applied += len(p.marks)
	p.marks = nil
	return nil
}
