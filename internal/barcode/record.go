package barcode

import "image"

// Verification is the outcome of the secondary raw-byte decode. The zero
// value means "not verified"; Raw is only meaningful when Verified is true.
type Verification struct {
	Verified bool
	Raw      []byte
}

// Meta carries format-specific metadata reported by the primary decoder.
// Zero values mean "not reported".
type Meta struct {
	ECLevel string // QR error correction level (L, M, Q, H)
}

// Detection is one decoded code on a page. It is created by the primary
// detector and mutated in place by the verifier (Verification), the
// regeneration selector (rendered blobs, Strict) and the label associator
// (Label). The bbox always derives from the primary decoder's geometry,
// even when raw bytes come from the secondary pass.
type Detection struct {
	Format Format
	Text   string
	Box    image.Rectangle // pixel units, min/max over the decoder's quadrilateral
	Valid  bool

	Verification Verification
	ReaderInit   bool
	Meta         Meta

	Strict bool
	Label  string

	SourcePNG   []byte // crop of the page image around the code
	RenderedPNG []byte
	RenderedSVG []byte
}
