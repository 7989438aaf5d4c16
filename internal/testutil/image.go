package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/qr"
	"github.com/stretchr/testify/require"
)

// NewQRCode renders a QR code with the given content, scaled to size pixels.
func NewQRCode(t *testing.T, content string, size int) image.Image {
	t.Helper()

	code, err := qr.Encode(content, qr.M, qr.Auto)
	require.NoError(t, err)
	scaled, err := bc.Scale(code, size, size)
	require.NoError(t, err)
	return scaled
}

// NewDataMatrix renders a DataMatrix symbol with the given content.
func NewDataMatrix(t *testing.T, content string, size int) image.Image {
	t.Helper()

	code, err := datamatrix.Encode(content)
	require.NoError(t, err)
	scaled, err := bc.Scale(code, size, size)
	require.NoError(t, err)
	return scaled
}

// NewCode128 renders a Code 128 symbol with the given content.
func NewCode128(t *testing.T, content string, width, height int) image.Image {
	t.Helper()

	code, err := code128.Encode(content)
	require.NoError(t, err)
	scaled, err := bc.Scale(code, width, height)
	require.NoError(t, err)
	return scaled
}

// NewPage creates a white page image of the given size.
func NewPage(width, height int) *image.RGBA {
	page := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(page, page.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	return page
}

// PlaceOnPage draws a barcode image onto a page at the given offset.
func PlaceOnPage(page *image.RGBA, img image.Image, x, y int) {
	target := image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy())
	draw.Draw(page, target, img, img.Bounds().Min, draw.Src)
}
