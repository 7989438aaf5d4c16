package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/scanbar/internal/barcode"
	"github.com/MeKo-Tech/scanbar/internal/label"
	"github.com/MeKo-Tech/scanbar/internal/layout"
	"github.com/MeKo-Tech/scanbar/internal/pdf"
)

// sourceCropPadding is the margin around a detection's bbox when cutting
// the source crop out of the page image.
const sourceCropPadding = 5

// ProcessFile runs the whole pipeline over one document. Rasterization and
// primary detection failures abort the document; verification, regeneration
// and labeling failures degrade only the affected barcode.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*DocumentResult, error) {
	pages, err := pdf.ParsePageRange(p.opts.Pages)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", p.opts.Pages, err)
	}

	workDir, err := os.MkdirTemp("", "scanbar-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		if p.opts.Debug {
			slog.Info("Retaining working directory", "dir", workDir)
			return
		}
		_ = os.RemoveAll(workDir)
	}()

	doc, err := p.open(path)
	if err != nil {
		return nil, err
	}

	rasters, err := doc.Rasterize(pages, workDir)
	if err != nil {
		return nil, err
	}

	words, err := doc.Words(pages)
	if err != nil {
		slog.Warn("Text layer extraction failed; labels unavailable", "file", path, "error", err)
		words = nil
	}

	result := NewDocumentResult(path, p.opts.Strict, doc.PageCount(),
		time.Now().UTC().Format(time.RFC3339))
	excluded := p.opts.excludeSet()

	for _, raster := range rasters {
		if excluded[raster.Page.ID] {
			slog.Debug("Skipping excluded page", "page", raster.Page.ID)
			continue
		}
		pageResult, err := p.processPage(ctx, raster, words[raster.Page.ID])
		if err != nil {
			return nil, fmt.Errorf("failed to process page %d: %w", raster.Page.ID, err)
		}
		result.AddPage(pageResult)
	}
	return result, nil
}

// processPage runs detection through labeling for one page. It returns nil
// (no page entry) when no valid barcode is found.
func (p *Pipeline) processPage(ctx context.Context, raster layout.PageImage, pageWords []layout.WordRecord) (*PageResult, error) {
	detections, err := p.detector.DetectPage(ctx, raster.Image)
	if err != nil {
		return nil, err
	}
	if len(detections) == 0 {
		return nil, nil
	}

	lines := p.textLines(raster, pageWords)

	kept := make([]*barcode.Detection, 0, len(detections))
	for _, det := range detections {
		det.SourcePNG = cropPNG(raster.Image, det.Box)

		if p.opts.Strict {
			raw, err := p.verifier.Verify(ctx, raster.Image, det)
			switch {
			case err != nil:
				slog.Error("Strict verification unavailable for barcode",
					"page", raster.Page.ID, "format", det.Format.String(), "error", err)
			case len(raw) > 0:
				det.Verification = barcode.Verification{Verified: true, Raw: raw}
			}
		}

		if err := p.regen.Regenerate(det, p.opts.Strict); err != nil {
			slog.Error("Dropping barcode",
				"page", raster.Page.ID, "format", det.Format.String(), "error", err)
			continue
		}

		if lbl, ok := label.Associate(det.Box, raster.Page, lines, p.opts.Label); ok {
			det.Label = lbl
		}
		kept = append(kept, det)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	entries := make([]BarcodeEntry, 0, len(kept))
	for _, det := range kept {
		entries = append(entries, newBarcodeEntry(det))
	}
	return &PageResult{
		ID:       raster.Page.ID,
		File:     raster.File,
		Text:     layout.JoinText(lines),
		Width:    raster.Page.PixelW,
		Height:   raster.Page.PixelH,
		Barcodes: entries,
		Lines:    newLineEntries(lines),
	}, nil
}

// textLines merges the page's word records into pixel-rescaled text lines.
// When the text layer is empty and OCR fallback is enabled, words come from
// OCR and are already in pixel units.
func (p *Pipeline) textLines(raster layout.PageImage, pageWords []layout.WordRecord) []layout.TextLine {
	scalePage := raster.Page
	if len(pageWords) == 0 && p.ocr != nil {
		ocrWords, err := p.ocr.WordsFromImage(raster.Page.ID, raster.Image)
		if err != nil {
			slog.Warn("OCR fallback failed", "page", raster.Page.ID, "error", err)
		} else {
			pageWords = ocrWords
			scalePage.LayoutW = float64(scalePage.PixelW)
			scalePage.LayoutH = float64(scalePage.PixelH)
		}
	}

	lines := layout.MergeWords(pageWords)
	layout.RescaleLines(lines, scalePage)
	return lines
}

// cropPNG cuts the padded region around a bbox out of the page image and
// encodes it as PNG. Failures yield no crop, never an error.
func cropPNG(img image.Image, box image.Rectangle) []byte {
	region := box.Inset(-sourceCropPadding).Intersect(img.Bounds())
	if region.Empty() {
		return nil
	}
	crop := imaging.Crop(img, region)
	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		slog.Warn("Failed to encode source crop", "error", err)
		return nil
	}
	return buf.Bytes()
}
