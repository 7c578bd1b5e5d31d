package pdfdoc

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/rebeccax06/anonymize-pdf/internal/document"
)

// runGapFactor starts a new text run when the horizontal gap between glyphs
// exceeds this multiple of the font size (column boundaries, wide form
// layouts). Smaller gaps become a plain space inside the run.
const runGapFactor = 3.0

// textRun is a contiguous piece of text emitted at one position.
type textRun struct {
	x, y, size float64
	text       string
}

// buildRuns converts a page's reading-ordered glyphs into positioned text
// runs for the writer.
func buildRuns(p *Page) []textRun {
	var runs []textRun
	var cur *textRun
	var sb strings.Builder

	flush := func() {
		if cur != nil {
			cur.text = sb.String()
			runs = append(runs, *cur)
			cur = nil
		}
		sb.Reset()
	}

	for i, g := range p.glyphs {
		startNew := cur == nil
		if !startNew {
			prev := p.glyphs[i-1]
			gap := g.x - (prev.x + prev.w)
			switch {
			case prev.y-g.y > lineTolerance || g.y-prev.y > lineTolerance:
				startNew = true
			case gap > runGapFactor*maxf(g.size, 1):
				startNew = true
			case gap > spaceGapFactor*maxf(g.size, 1):
				sb.WriteByte(' ')
			}
		}
		if startNew {
			flush()
			cur = &textRun{x: g.x, y: g.y, size: maxf(g.size, 1)}
		}
		sb.WriteString(g.s)
	}
	flush()
	return runs
}

// writePDF emits a fresh single-font PDF from the page models. The output
// contains only the objects written here, so unused-object cleanup and
// maximal compaction hold by construction; opts.Compress flate-compresses
// the content streams.
func writePDF(w io.Writer, pages []*Page, meta document.Metadata, opts document.SaveOptions) error {
	n := len(pages)
	fontObj := 3 + 2*n
	infoObj := 0
	if len(meta) > 0 {
		infoObj = fontObj + 1
	}
	lastObj := fontObj
	if infoObj > 0 {
		lastObj = infoObj
	}

	var buf bytes.Buffer
	offsets := make([]int, lastObj+1)

	buf.WriteString("%PDF-1.4\n")

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [")
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%d 0 R", 3+2*i)
	}
	fmt.Fprintf(&buf, "] /Count %d >>\nendobj\n", n)

	for i, p := range pages {
		pageObj := 3 + 2*i
		contentObj := pageObj + 1

		offsets[pageObj] = buf.Len()
		fmt.Fprintf(&buf,
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			pageObj, num(p.width), num(p.height), contentObj, fontObj)

		stream := contentStream(p)
		filter := ""
		if opts.Compress {
			var zbuf bytes.Buffer
			zw := zlib.NewWriter(&zbuf)
			if _, err := zw.Write(stream); err != nil {
				return fmt.Errorf("compressing page %d: %w", i+1, err)
			}
			if err := zw.Close(); err != nil {
				return fmt.Errorf("compressing page %d: %w", i+1, err)
			}
			stream = zbuf.Bytes()
			filter = " /Filter /FlateDecode"
		}

		offsets[contentObj] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d%s >>\nstream\n", contentObj, len(stream), filter)
		buf.Write(stream)
		buf.WriteString("\nendstream\nendobj\n")
	}

	offsets[fontObj] = buf.Len()
	fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontObj)

	if infoObj > 0 {
		offsets[infoObj] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<<", infoObj)
		for k, v := range meta {
			fmt.Fprintf(&buf, " /%s (%s)", k, escapeString(v))
		}
		buf.WriteString(" >>\nendobj\n")
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", lastObj+1)
	buf.WriteString("0000000000 65535 f \r\n")
	for i := 1; i <= lastObj; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \r\n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R", lastObj+1)
	if infoObj > 0 {
		fmt.Fprintf(&buf, " /Info %d 0 R", infoObj)
	}
	fmt.Fprintf(&buf, " >>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := w.Write(buf.Bytes())
	return err
}

// contentStream renders one page: its surviving text runs in black, then
// the applied redaction boxes with their placeholder labels.
func contentStream(p *Page) []byte {
	var sb bytes.Buffer

	for _, run := range buildRuns(p) {
		fmt.Fprintf(&sb, "BT /F1 %s Tf 0 0 0 rg 1 0 0 1 %s %s Tm (%s) Tj ET\n",
			num(run.size), num(run.x), num(run.y), escapeString(run.text))
	}

	for _, m := range p.boxes {
		r := m.region
		a := m.app
		fmt.Fprintf(&sb, "q %s %s %s rg %s %s %s %s re f Q\n",
			num(a.Fill.R), num(a.Fill.G), num(a.Fill.B),
			num(r.X0), num(r.Y0), num(r.X1-r.X0), num(r.Y1-r.Y0))
		if a.Label != "" {
			fmt.Fprintf(&sb, "BT /F1 %s Tf %s %s %s rg 1 0 0 1 %s %s Tm (%s) Tj ET\n",
				num(a.FontSize),
				num(a.TextColor.R), num(a.TextColor.G), num(a.TextColor.B),
				num(r.X0+1), num(r.Y0+2), escapeString(a.Label))
		}
	}
	return sb.Bytes()
}

// num formats a PDF number compactly.
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = trimTrailing(s, '0')
	s = trimTrailing(s, '.')
	return s
}

func trimTrailing(s string, c byte) string {
	for len(s) > 0 && s[len(s)-1] == c {
		s = s[:len(s)-1]
	}
	return s
}

// escapeString encodes text as a PDF literal string: backslash escapes for
// delimiters, octal escapes for Latin-1 bytes, '?' for anything beyond.
// The single-font writer cannot represent non-Latin-1 glyphs.
func escapeString(s string) string {
	var out bytes.Buffer
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			out.WriteByte('\\')
			out.WriteRune(r)
		case r == '\n':
			out.WriteString(`\n`)
		case r == '\r':
			out.WriteString(`\r`)
		case r < 0x20:
			fmt.Fprintf(&out, `\%03o`, r)
		case r < 0x80:
			out.WriteByte(byte(r))
		case r < 0x100:
			fmt.Fprintf(&out, `\%03o`, r)
		default:
			out.WriteByte('?')
		}
	}
	return out.String()
}
