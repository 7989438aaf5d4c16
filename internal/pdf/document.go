// Package pdf adapts the external document engines: pdfcpu for page images
// and page metadata, dslipak/pdf for the text layer and page rotation.
package pdf

import (
	"fmt"
	"log/slog"

	dpdf "github.com/dslipak/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/MeKo-Tech/scanbar/internal/layout"
)

// Document wraps one opened PDF file and exposes the two collaborator
// contracts the pipeline depends on: rasterized page images with layout
// metadata, and word-level text records.
type Document struct {
	path      string
	pageCount int
	dims      []types.Dim
	reader    *dpdf.Reader
}

// Open reads the document metadata. The heavyweight work (image extraction,
// text walking) happens lazily in Rasterize and Words.
func Open(path string) (*Document, error) {
	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count of %q: %w", path, err)
	}

	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions of %q: %w", path, err)
	}

	reader, err := dpdf.Open(path)
	if err != nil {
		// The text layer is optional; label association degrades without it.
		slog.Warn("Failed to open PDF text layer", "file", path, "error", err)
		reader = nil
	}

	return &Document{path: path, pageCount: pageCount, dims: dims, reader: reader}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.pageCount }

// layoutSize returns the page size in points, or zeros when unknown.
func (d *Document) layoutSize(page int) (w, h float64) {
	if page < 1 || page > len(d.dims) {
		return 0, 0
	}
	dim := d.dims[page-1]
	return dim.Width, dim.Height
}

// rotation returns the page's /Rotate entry in degrees, or 0.
func (d *Document) rotation(page int) int {
	if d.reader == nil || page < 1 || page > d.reader.NumPage() {
		return 0
	}
	v := d.reader.Page(page).V.Key("Rotate")
	if v.IsNull() {
		return 0
	}
	return int(v.Int64())
}

// Rasterize extracts the page images for the selected pages (all pages when
// the slice is empty) into workDir and pairs each with its page descriptor.
// Pages without an image are omitted.
func (d *Document) Rasterize(pages []int, workDir string) ([]layout.PageImage, error) {
	images, files, err := extractPageImages(d.path, pages, workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize %q: %w", d.path, err)
	}

	out := make([]layout.PageImage, 0, len(images))
	for _, pageNum := range sortedKeys(images) {
		img := images[pageNum]
		lw, lh := d.layoutSize(pageNum)
		b := img.Bounds()
		out = append(out, layout.PageImage{
			Page: layout.Page{
				ID:       pageNum,
				PixelW:   b.Dx(),
				PixelH:   b.Dy(),
				LayoutW:  lw,
				LayoutH:  lh,
				Rotation: d.rotation(pageNum),
			},
			Image: img,
			File:  files[pageNum],
		})
	}
	return out, nil
}

// Words extracts word-level text records in layout units for the selected
// pages (all pages when the slice is empty). Coordinates are converted to a
// top-left origin so they line up with image space after rescaling. A
// missing text layer yields an empty map, not an error.
func (d *Document) Words(pages []int) (map[int][]layout.WordRecord, error) {
	out := make(map[int][]layout.WordRecord)
	if d.reader == nil {
		return out, nil
	}

	wanted := pageSet(pages)
	for pageNum := 1; pageNum <= d.reader.NumPage(); pageNum++ {
		if wanted != nil && !wanted[pageNum] {
			continue
		}
		p := d.reader.Page(pageNum)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			slog.Warn("Failed to read text rows", "file", d.path, "page", pageNum, "error", err)
			continue
		}
		_, lh := d.layoutSize(pageNum)
		var words []layout.WordRecord
		for lineIdx, row := range rows {
			for _, t := range row.Content {
				y := t.Y
				if lh > 0 {
					// PDF text space has a bottom-left origin.
					y = lh - t.Y - t.FontSize
				}
				words = append(words, layout.WordRecord{
					Page: pageNum,
					Line: lineIdx,
					X:    t.X,
					Y:    y,
					W:    t.W,
					H:    t.FontSize,
					Text: t.S,
				})
			}
		}
		if len(words) > 0 {
			out[pageNum] = words
		}
	}
	return out, nil
}

func pageSet(pages []int) map[int]bool {
	if len(pages) == 0 {
		return nil
	}
	s := make(map[int]bool, len(pages))
	for _, p := range pages {
		s[p] = true
	}
	return s
}
