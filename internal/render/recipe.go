package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/scanbar/internal/barcode"
)

// Reader-initialization prefix escapes, consumed by the renderer. Code 128
// signals reader programming with FNC3; Data Matrix uses the reader
// programming codeword 234.
const (
	code128InitEscape    = "^FNC3"
	dataMatrixInitEscape = "^234"
)

// ErrStrictUnknownFormat is returned when strict mode is requested for a
// format the renderer cannot reproduce at all.
var ErrStrictUnknownFormat = errors.New("unknown format cannot be strictly verified")

// Recipe is the instruction handed to the renderer: what to encode and how.
type Recipe struct {
	Format     barcode.Format
	Content    string
	Raw        bool // Content is a ^NNN byte-escape string
	ReaderInit bool
	AltText    string
	Meta       barcode.Meta
}

// Renderer produces PNG and SVG renderings for a recipe. Implemented by the
// external engine adapter; faked in tests.
type Renderer interface {
	Render(r Recipe) (png []byte, svg []byte, err error)
}

// recipeBuilder maps one format's detection to a render recipe. The second
// return value reports whether the strict (byte-exact) path was taken.
type recipeBuilder interface {
	build(d *barcode.Detection, strict bool) (Recipe, bool)
}

// Selector chooses the per-format render recipe and invokes the renderer,
// tracking whether a byte-exact reconstruction was achieved.
type Selector struct {
	renderer Renderer
	builders map[barcode.Format]recipeBuilder
}

// NewSelector creates a regeneration selector backed by the given renderer.
func NewSelector(r Renderer) *Selector {
	return &Selector{
		renderer: r,
		builders: map[barcode.Format]recipeBuilder{
			barcode.FormatQRCode:     qrBuilder{},
			barcode.FormatDataMatrix: dataMatrixBuilder{},
			barcode.FormatCode128:    code128Builder{},
		},
	}
}

// Regenerate renders the detection and stores the outputs on it. Formats
// without a recipe are skipped; a wholly unknown format under strict mode
// is a hard error for this barcode. A renderer failure is downgraded to
// "no rendered output" and logged, never aborting the page.
func (s *Selector) Regenerate(d *barcode.Detection, strict bool) error {
	b, ok := s.builders[d.Format]
	if !ok {
		if d.Format == barcode.FormatUnknown && strict {
			return fmt.Errorf("%w", ErrStrictUnknownFormat)
		}
		slog.Warn("No render recipe for format; skipping regeneration",
			"format", d.Format.String())
		return nil
	}

	recipe, strictUsed := b.build(d, strict)
	png, svg, err := s.renderer.Render(recipe)
	if err != nil {
		slog.Error("Barcode regeneration failed",
			"format", d.Format.String(), "strict", strictUsed, "error", err)
		return nil
	}
	d.RenderedPNG = png
	d.RenderedSVG = svg
	d.Strict = strictUsed
	return nil
}

// qrBuilder renders from decoded text. QR payload re-encoding is lossy by
// construction, so the strict path never applies; decoder-reported metadata
// is propagated instead.
type qrBuilder struct{}

func (qrBuilder) build(d *barcode.Detection, _ bool) (Recipe, bool) {
	return Recipe{
		Format:  barcode.FormatQRCode,
		Content: d.Text,
		Meta:    d.Meta,
	}, false
}

// dataMatrixBuilder uses raw-mode byte escapes when verified raw bytes are
// available under strict mode, falling back to the decoded text otherwise.
type dataMatrixBuilder struct{}

func (dataMatrixBuilder) build(d *barcode.Detection, strict bool) (Recipe, bool) {
	if strict && d.Verification.Verified && len(d.Verification.Raw) > 0 {
		return Recipe{
			Format:  barcode.FormatDataMatrix,
			Content: EscapeBytes(d.Verification.Raw),
			Raw:     true,
			AltText: d.Text,
		}, true
	}
	content := d.Text
	if d.ReaderInit {
		content = dataMatrixInitEscape + content
	}
	return Recipe{
		Format:     barcode.FormatDataMatrix,
		Content:    content,
		ReaderInit: d.ReaderInit,
	}, false
}

// code128Builder uses the same byte-escape encoding as Data Matrix on the
// strict path, but drops the trailing checksum and stop character; the
// renderer recomputes both.
type code128Builder struct{}

func (code128Builder) build(d *barcode.Detection, strict bool) (Recipe, bool) {
	raw := d.Verification.Raw
	if strict && d.Verification.Verified && len(raw) > 2 {
		return Recipe{
			Format:  barcode.FormatCode128,
			Content: EscapeBytes(raw[:len(raw)-2]),
			Raw:     true,
			AltText: d.Text,
		}, true
	}
	content := d.Text
	if d.ReaderInit {
		content = code128InitEscape + content
	}
	return Recipe{
		Format:     barcode.FormatCode128,
		Content:    content,
		ReaderInit: d.ReaderInit,
	}, false
}
