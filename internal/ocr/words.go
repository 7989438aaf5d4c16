// Package ocr provides an optional Tesseract-backed word source for pages
// whose PDF text layer is empty. It produces the same word records as the
// text-layer extractor, already in pixel units (scale factors become 1).
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/MeKo-Tech/scanbar/internal/layout"
)

// Engine wraps a Tesseract client configuration.
type Engine struct {
	languages []string
}

// NewEngine creates an OCR engine for the given languages ("eng" when empty).
func NewEngine(languages []string) *Engine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Engine{languages: languages}
}

// WordsFromImage runs word-level OCR over a page image. The returned records
// carry Tesseract's block/paragraph/line identity so they merge into text
// lines exactly like text-layer words.
func (e *Engine) WordsFromImage(page int, img image.Image) ([]layout.WordRecord, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(e.languages...); err != nil {
		return nil, fmt.Errorf("failed to set OCR languages: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to load page image into OCR engine: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("failed to read OCR word boxes: %w", err)
	}

	words := make([]layout.WordRecord, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, layout.WordRecord{
			Page:      page,
			Block:     b.BlockNum,
			Paragraph: b.ParNum,
			Line:      b.LineNum,
			X:         float64(b.Box.Min.X),
			Y:         float64(b.Box.Min.Y),
			W:         float64(b.Box.Dx()),
			H:         float64(b.Box.Dy()),
			Text:      b.Word,
		})
	}
	return words, nil
}
