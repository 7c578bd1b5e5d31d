// Package pdfdoc implements the document contract for real PDF files.
//
// Reading uses ledongthuc/pdf: each page's positioned glyph runs are loaded
// eagerly and assembled into reading-order text, so literal search maps
// text offsets back to on-page bounding regions. Redaction is rebuild-based:
// applying marks drops every glyph inside a marked region from the page
// model, and Save re-emits the document from that model, so redacted content
// is physically absent from the output, not hidden under a box. The
// trade-off is that output pages carry a single standard font; positions
// and sizes are preserved, exotic typography is not.
package pdfdoc

import (
	"fmt"
	"os"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/rebeccax06/anonymize-pdf/internal/document"
)

// Engine opens PDF files from the filesystem.
type Engine struct{}

// New returns a PDF engine.
func New() *Engine { return &Engine{} }

// Open reads and fully loads a PDF. The underlying parser panics on
// malformed input, so loading is wrapped in a recover and surfaced as an
// open error. Corrupt files fail here, not midway through processing.
func (e *Engine) Open(path string) (doc document.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("opening %s: malformed PDF: %v", path, r)
		}
	}()

	f, reader, err := lpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	d := &Doc{meta: document.Metadata{}}
	loadMetadata(reader, d.meta)

	n := reader.NumPage()
	for i := 1; i <= n; i++ {
		p := reader.Page(i)
		page := &Page{width: defaultPageWidth, height: defaultPageHeight}
		if !p.V.IsNull() {
			if w, h, ok := mediaBox(p); ok {
				page.width, page.height = w, h
			}
			for _, t := range p.Content().Text {
				if t.S == "" {
					continue
				}
				page.glyphs = append(page.glyphs, glyph{
					x: t.X, y: t.Y, w: t.W, size: t.FontSize, s: t.S,
				})
			}
		}
		page.rebuild()
		d.pages = append(d.pages, page)
	}
	return d, nil
}

// US Letter, used when a page carries no resolvable MediaBox.
const (
	defaultPageWidth  = 612
	defaultPageHeight = 792
)

// mediaBox reads the page's MediaBox if present on the page dictionary.
// Inherited boxes from the page tree are not chased; the default applies.
func mediaBox(p lpdf.Page) (w, h float64, ok bool) {
	mb := p.V.Key("MediaBox")
	if mb.Kind() != lpdf.Array || mb.Len() != 4 {
		return 0, 0, false
	}
	x0 := mb.Index(0).Float64()
	y0 := mb.Index(1).Float64()
	x1 := mb.Index(2).Float64()
	y1 := mb.Index(3).Float64()
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, false
	}
	return x1 - x0, y1 - y0, true
}

// loadMetadata copies string entries of the trailer Info dictionary.
func loadMetadata(r *lpdf.Reader, meta document.Metadata) {
	defer func() { _ = recover() }()
	info := r.Trailer().Key("Info")
	if info.Kind() != lpdf.Dict {
		return
	}
	for _, key := range info.Keys() {
		v := info.Key(key)
		if v.Kind() == lpdf.String {
			meta[key] = v.Text()
		}
	}
}

// Doc is a fully loaded PDF document model.
type Doc struct {
	pages []*Page
	meta  document.Metadata
}

// PageCount returns the number of pages.
func (d *Doc) PageCount() int { return len(d.pages) }

// Page returns the zero-based page.
func (d *Doc) Page(index int) (document.Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

// Metadata returns the current standard metadata map.
func (d *Doc) Metadata() document.Metadata { return d.meta }

// SetMetadata replaces the standard metadata map.
func (d *Doc) SetMetadata(meta document.Metadata) error {
	d.meta = document.Metadata{}
	for k, v := range meta {
		d.meta[k] = v
	}
	return nil
}

// ClearAuxiliaryMetadata is satisfied structurally: the writer never carries
// XMP or other auxiliary streams into the output.
func (d *Doc) ClearAuxiliaryMetadata() error { return nil }

// Save writes the rebuilt document to path. Rebuilding implies maximal
// compaction and unused-object cleanup regardless of options; Compress
// toggles flate compression of the content streams.
func (d *Doc) Save(path string, opts document.SaveOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writePDF(f, d.pages, d.meta, opts); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// Close is a no-op; the source file is released at Open time.
func (d *Doc) Close() error { return nil }
