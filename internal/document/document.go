// Package document defines the contract between the redaction core and the
// underlying document engine: text extraction, literal search, redaction
// marks, metadata, and saving. The core never touches PDF bytes directly;
// it drives whatever engine implements these interfaces (pdfdoc for real
// files, memdoc for tests and dry runs).
package document

// Region is an axis-aligned bounding box on a page, in page coordinates.
type Region struct {
	X0, Y0, X1, Y1 float64
}

// Color is an RGB color with components in [0,1].
type Color struct {
	R, G, B float64
}

// Appearance describes the fixed visual replacement burned into a redacted
// region: opaque fill, small placeholder label, contrasting text color.
type Appearance struct {
	Label     string
	FontSize  float64
	Fill      Color
	TextColor Color
}

// DefaultAppearance is black fill with small white placeholder text.
func DefaultAppearance(label string) Appearance {
	return Appearance{
		Label:     label,
		FontSize:  8,
		Fill:      Color{0, 0, 0},
		TextColor: Color{1, 1, 1},
	}
}

// SaveOptions control output persistence. MaxCompaction requests maximal
// space reclamation, Compress enables stream compression, CleanUnused drops
// objects no longer referenced.
type SaveOptions struct {
	MaxCompaction bool
	Compress      bool
	CleanUnused   bool
}

// Metadata is the document's standard metadata map (Title, Author, ...).
type Metadata map[string]string

// Engine opens documents. Implementations decide what a path means.
type Engine interface {
	Open(path string) (Document, error)
}

// Document is one open document.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int
	// Page returns the zero-based page. Pages must be processed in order;
	// detection state carries forward from earlier pages.
	Page(index int) (Page, error)
	// SetMetadata replaces the standard metadata map. An empty or nil map
	// clears it.
	SetMetadata(meta Metadata) error
	// ClearAuxiliaryMetadata removes auxiliary metadata streams (XMP etc.).
	// Best-effort: callers swallow failures.
	ClearAuxiliaryMetadata() error
	// Save persists the document to path.
	Save(path string, opts SaveOptions) error
	// Close releases resources. Safe to call after Save.
	Close() error
}

// Page is one page of an open document.
type Page interface {
	// Text returns the full extracted text of the page in reading order.
	Text() (string, error)
	// Search returns the bounding regions of every visual occurrence of the
	// literal string on the page. Zero, one, or many regions.
	Search(literal string) []Region
	// MarkRedaction records a provisional redaction mark. Marks must not
	// affect Text or Search results until ApplyRedactions commits them.
	MarkRedaction(r Region, appearance Appearance)
	// ApplyRedactions commits all pending marks, physically removing the
	// underlying content within the marked regions.
	ApplyRedactions() error
}
