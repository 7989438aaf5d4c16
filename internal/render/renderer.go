package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	svg "github.com/ajstarks/svgo"
	bcode "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	bdm "github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/qr"

	"github.com/MeKo-Tech/scanbar/internal/barcode"
)

// oneDBarHeight is the bar height in modules for 1D symbologies, whose
// encoded matrix is one pixel tall.
const oneDBarHeight = 60

// Options controls the shared render parameters applied to all formats.
type Options struct {
	Padding  int // quiet zone in modules on all four sides
	PNGScale int // pixels per module in the PNG output
	SVGScale int // user units per module in the SVG output
}

// DefaultOptions returns the standard render options.
func DefaultOptions() Options {
	return Options{Padding: 2, PNGScale: 3, SVGScale: 1}
}

// Engine is the renderer adapter. It encodes a recipe into a module matrix
// and emits PNG and SVG renderings with a white background and no embedded
// text.
type Engine struct {
	opts Options
}

// NewEngine creates a renderer with the given options.
func NewEngine(opts Options) *Engine {
	if opts.PNGScale <= 0 {
		opts.PNGScale = 1
	}
	if opts.SVGScale <= 0 {
		opts.SVGScale = 1
	}
	return &Engine{opts: opts}
}

// Render encodes the recipe and produces both output variants.
func (e *Engine) Render(r Recipe) ([]byte, []byte, error) {
	bc, err := e.encode(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s: %w", r.Format.String(), err)
	}

	pngData, err := e.renderPNG(bc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render PNG: %w", err)
	}
	svgData := e.renderSVG(bc, r.AltText)
	return pngData, svgData, nil
}

// encode resolves the recipe content (raw escapes, reader-init prefixes)
// and runs the format's encoder.
func (e *Engine) encode(r Recipe) (bcode.Barcode, error) {
	content, readerInit, err := resolveContent(r)
	if err != nil {
		return nil, err
	}

	switch r.Format {
	case barcode.FormatQRCode:
		return qr.Encode(content, ecLevel(r.Meta.ECLevel), qr.Auto)
	case barcode.FormatDataMatrix:
		return bdm.Encode(content)
	case barcode.FormatCode128:
		if readerInit {
			content = string(code128.FNC3) + content
		}
		return code128.Encode(content)
	default:
		return nil, fmt.Errorf("unsupported render format %q", r.Format.String())
	}
}

// resolveContent turns the recipe content into the encoder input string.
// Raw recipes are unescaped byte-for-byte; reader-init prefix escapes are
// stripped and reported to the caller.
func resolveContent(r Recipe) (string, bool, error) {
	content := r.Content
	readerInit := false

	switch r.Format {
	case barcode.FormatCode128:
		if strings.HasPrefix(content, code128InitEscape) {
			content = strings.TrimPrefix(content, code128InitEscape)
			readerInit = true
		}
	case barcode.FormatDataMatrix:
		if strings.HasPrefix(content, dataMatrixInitEscape) && !r.Raw {
			content = strings.TrimPrefix(content, dataMatrixInitEscape)
			content = string(rune(234)) + content
		}
	}

	if r.Raw {
		data, err := UnescapeBytes(content)
		if err != nil {
			return "", false, err
		}
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		content = string(runes)
	}
	return content, readerInit || r.ReaderInit, nil
}

func ecLevel(s string) qr.ErrorCorrectionLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return qr.L
	case "Q":
		return qr.Q
	case "H":
		return qr.H
	default:
		return qr.M
	}
}

// moduleSize returns the matrix extent, stretching 1D codes to a fixed
// bar height.
func moduleSize(bc bcode.Barcode) (w, h int, oneD bool) {
	b := bc.Bounds()
	w, h = b.Dx(), b.Dy()
	if h == 1 {
		return w, oneDBarHeight, true
	}
	return w, h, false
}

func dark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r < 0x8000 && g < 0x8000 && b < 0x8000
}

func (e *Engine) renderPNG(bc bcode.Barcode) ([]byte, error) {
	w, h, oneD := moduleSize(bc)
	pad, scale := e.opts.Padding, e.opts.PNGScale
	bounds := bc.Bounds()

	out := image.NewRGBA(image.Rect(0, 0, (w+2*pad)*scale, (h+2*pad)*scale))
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < out.Bounds().Dx(); x++ {
			out.Set(x, y, color.White)
		}
	}
	for my := 0; my < h; my++ {
		srcY := my
		if oneD {
			srcY = 0
		}
		for mx := 0; mx < w; mx++ {
			if !dark(bc.At(bounds.Min.X+mx, bounds.Min.Y+srcY)) {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					out.Set((pad+mx)*scale+dx, (pad+my)*scale+dy, color.Black)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Engine) renderSVG(bc bcode.Barcode, altText string) []byte {
	w, h, oneD := moduleSize(bc)
	pad, scale := e.opts.Padding, e.opts.SVGScale
	bounds := bc.Bounds()

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	totalW, totalH := (w+2*pad)*scale, (h+2*pad)*scale
	canvas.Start(totalW, totalH)
	if altText != "" {
		canvas.Desc(altText)
	}
	canvas.Rect(0, 0, totalW, totalH, "fill:white")
	if oneD {
		for mx := 0; mx < w; mx++ {
			if dark(bc.At(bounds.Min.X+mx, bounds.Min.Y)) {
				canvas.Rect((pad+mx)*scale, pad*scale, scale, h*scale, "fill:black")
			}
		}
	} else {
		for my := 0; my < h; my++ {
			for mx := 0; mx < w; mx++ {
				if dark(bc.At(bounds.Min.X+mx, bounds.Min.Y+my)) {
					canvas.Rect((pad+mx)*scale, (pad+my)*scale, scale, scale, "fill:black")
				}
			}
		}
	}
	canvas.End()
	return buf.Bytes()
}
