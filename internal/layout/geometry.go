package layout

import (
	"image"
	"math"
)

// Page describes one rasterized document page together with its layout-space
// dimensions. The pixel size comes from the rendered page image; the layout
// size comes from the document metadata (points for PDFs). The two may differ
// in aspect due to page rotation and are reconciled via ScaleFactors.
type Page struct {
	ID       int     // 1-based page number
	PixelW   int     // rasterized image width in pixels
	PixelH   int     // rasterized image height in pixels
	LayoutW  float64 // page width in layout units (PDF points)
	LayoutH  float64 // page height in layout units
	Rotation int     // page rotation in degrees
}

// Box is an axis-aligned rectangle in layout units.
type Box struct {
	X0, Y0 float64
	X1, Y1 float64
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Y1 - b.Y0 }

// ScaleFactors returns the layout-to-pixel scale factors for the page.
// A missing layout size degrades to identity scaling so that label
// association still works on pages without metadata.
func (p Page) ScaleFactors() (sx, sy float64) {
	if p.LayoutW <= 0 || p.LayoutH <= 0 {
		return 1, 1
	}
	return float64(p.PixelW) / p.LayoutW, float64(p.PixelH) / p.LayoutH
}

// ToPixels rescales a layout-unit box into pixel coordinates. The top-left
// corner is floored and the bottom-right corner is ceiled so the rescaled
// box never shrinks below the true region.
func (p Page) ToPixels(b Box) image.Rectangle {
	sx, sy := p.ScaleFactors()
	return image.Rect(
		int(math.Floor(b.X0*sx)),
		int(math.Floor(b.Y0*sy)),
		int(math.Ceil(b.X1*sx)),
		int(math.Ceil(b.Y1*sy)),
	)
}

// ToLayout maps a pixel rectangle back into layout units.
func (p Page) ToLayout(r image.Rectangle) Box {
	sx, sy := p.ScaleFactors()
	return Box{
		X0: float64(r.Min.X) / sx,
		Y0: float64(r.Min.Y) / sy,
		X1: float64(r.Max.X) / sx,
		Y1: float64(r.Max.Y) / sy,
	}
}

// PageImage pairs a page descriptor with its rasterized image.
type PageImage struct {
	Page  Page
	Image image.Image
	File  string // source image filename inside the working directory
}
