package pdfdoc

import (
	"sort"
	"strings"

	"github.com/rebeccax06/anonymize-pdf/internal/document"
)

// glyph is one positioned text fragment from the content stream. x/y is the
// baseline origin, w the advance width, size the font size.
type glyph struct {
	x, y, w, size float64
	s             string
}

// lineTolerance groups glyphs into one text line when their baselines are
// within this many points.
const lineTolerance = 2.0

// spaceGapFactor inserts a space between adjacent glyphs when the gap
// exceeds this fraction of the font size.
const spaceGapFactor = 0.25

// Page is one loaded PDF page. glyphs is kept in reading order; text and
// starts are derived from it and rebuilt whenever glyphs change.
type Page struct {
	width, height float64
	glyphs        []glyph

	text   string
	starts []int // byte offset of each glyph's text within text

	marks []pendingMark // provisional, until ApplyRedactions
	boxes []appliedMark // committed, rendered by the writer
}

type pendingMark struct {
	region document.Region
	app    document.Appearance
}

type appliedMark = pendingMark

// rebuild sorts glyphs into reading order (top-to-bottom lines, left to
// right within a line) and reassembles the page text with a parallel
// glyph-offset table.
func (p *Page) rebuild() {
	sort.SliceStable(p.glyphs, func(i, j int) bool {
		a, b := p.glyphs[i], p.glyphs[j]
		if diff := a.y - b.y; diff > lineTolerance || diff < -lineTolerance {
			return a.y > b.y // PDF y grows upward; higher y reads first
		}
		return a.x < b.x
	})

	var sb strings.Builder
	p.starts = make([]int, len(p.glyphs))
	for i, g := range p.glyphs {
		if i > 0 {
			prev := p.glyphs[i-1]
			if prev.y-g.y > lineTolerance {
				sb.WriteByte('\n')
			} else if gap := g.x - (prev.x + prev.w); gap > spaceGapFactor*maxf(g.size, 1) {
				sb.WriteByte(' ')
			}
		}
		p.starts[i] = sb.Len()
		sb.WriteString(g.s)
	}
	p.text = sb.String()
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Text returns the page text in reading order.
func (p *Page) Text() (string, error) { return p.text, nil }

// Search returns the union bounding box of the glyphs backing every
// non-overlapping occurrence of literal in the page text. An occurrence
// spanning a line break yields one box covering both fragments.
func (p *Page) Search(literal string) []document.Region {
	if literal == "" || len(p.glyphs) == 0 {
		return nil
	}
	var regions []document.Region
	for start := 0; ; {
		idx := strings.Index(p.text[start:], literal)
		if idx < 0 {
			break
		}
		at := start + idx
		if r, ok := p.glyphRegion(at, at+len(literal)); ok {
			regions = append(regions, r)
		}
		start = at + len(literal)
	}
	return regions
}

// glyphRegion computes the bounding box of all glyphs whose text intersects
// the byte range [b0, b1).
func (p *Page) glyphRegion(b0, b1 int) (document.Region, bool) {
	var r document.Region
	found := false
	for i, g := range p.glyphs {
		gs, ge := p.starts[i], p.starts[i]+len(g.s)
		if ge <= b0 || gs >= b1 {
			continue
		}
		top := g.y + g.size
		if !found {
			r = document.Region{X0: g.x, Y0: g.y, X1: g.x + g.w, Y1: top}
			found = true
			continue
		}
		if g.x < r.X0 {
			r.X0 = g.x
		}
		if g.y < r.Y0 {
			r.Y0 = g.y
		}
		if g.x+g.w > r.X1 {
			r.X1 = g.x + g.w
		}
		if top > r.Y1 {
			r.Y1 = top
		}
	}
	return r, found
}

// MarkRedaction records a provisional mark. Text and Search are unaffected
// until ApplyRedactions so earlier spans on the same page keep resolving.
func (p *Page) MarkRedaction(r document.Region, app document.Appearance) {
	p.marks = append(p.marks, pendingMark{region: r, app: app})
}

// ApplyRedactions commits pending marks: every glyph inside a marked region
// is removed from the page model and the text is reassembled. The marks
// move to the applied set, which the writer renders as filled boxes with
// the placeholder label.
func (p *Page) ApplyRedactions() error {
	if len(p.marks) == 0 {
		return nil
	}
	kept := p.glyphs[:0]
	for _, g := range p.glyphs {
		if p.insideMark(g) {
			continue
		}
		kept = append(kept, g)
	}
	p.glyphs = kept
	p.boxes = append(p.boxes, p.marks...)
	p.marks = nil
	p.rebuild()
	return nil
}

// insideMark reports whether the glyph's box overlaps any pending mark.
// The region is inset slightly so a neighboring glyph that merely touches
// the boundary survives.
func (p *Page) insideMark(g glyph) bool {
	const inset = 0.2
	gx1 := g.x + g.w
	gy1 := g.y + g.size
	for _, m := range p.marks {
		r := m.region
		if g.x < r.X1-inset && gx1 > r.X0+inset && g.y < r.Y1-inset && gy1 > r.Y0+inset {
			return true
		}
	}
	return false
}
