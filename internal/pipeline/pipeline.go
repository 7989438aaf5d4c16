// Package pipeline orchestrates the per-document barcode extraction flow:
// rasterize, detect, optionally verify, regenerate, label, accumulate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/MeKo-Tech/scanbar/internal/barcode"
	"github.com/MeKo-Tech/scanbar/internal/layout"
	"github.com/MeKo-Tech/scanbar/internal/ocr"
	"github.com/MeKo-Tech/scanbar/internal/pdf"
	"github.com/MeKo-Tech/scanbar/internal/render"
)

// DocumentSource is the contract of the external document engine: page
// images with layout metadata and word-level text records.
type DocumentSource interface {
	PageCount() int
	Rasterize(pages []int, workDir string) ([]layout.PageImage, error)
	Words(pages []int) (map[int][]layout.WordRecord, error)
}

// Opener opens one input document.
type Opener func(path string) (DocumentSource, error)

// PrimaryDetector decodes all barcodes on a page image.
type PrimaryDetector interface {
	DetectPage(ctx context.Context, img image.Image) ([]*barcode.Detection, error)
}

// SecondaryVerifier recovers raw payload bytes from a cropped region.
type SecondaryVerifier interface {
	Verify(ctx context.Context, page image.Image, det *barcode.Detection) ([]byte, error)
}

// Regenerator renders a detection and stores the outputs on it.
type Regenerator interface {
	Regenerate(d *barcode.Detection, strict bool) error
}

// WordOCR extracts word records from a page image.
type WordOCR interface {
	WordsFromImage(page int, img image.Image) ([]layout.WordRecord, error)
}

// Pipeline ties the collaborators together under one immutable Options
// value. Construct it with a Builder.
type Pipeline struct {
	opts     Options
	open     Opener
	detector PrimaryDetector
	verifier SecondaryVerifier
	regen    Regenerator
	ocr      WordOCR
}

// Builder assembles a Pipeline, filling in default adapters for anything
// not overridden (overrides are primarily for tests).
type Builder struct {
	opts     Options
	open     Opener
	detector PrimaryDetector
	verifier SecondaryVerifier
	regen    Regenerator
	ocr      WordOCR
}

// NewBuilder creates a pipeline builder with default options.
func NewBuilder() *Builder {
	return &Builder{opts: DefaultOptions()}
}

// WithOptions sets the run options.
func (b *Builder) WithOptions(opts Options) *Builder { b.opts = opts; return b }

// WithOpener overrides the document source.
func (b *Builder) WithOpener(open Opener) *Builder { b.open = open; return b }

// WithDetector overrides the primary detector.
func (b *Builder) WithDetector(d PrimaryDetector) *Builder { b.detector = d; return b }

// WithVerifier overrides the secondary verifier.
func (b *Builder) WithVerifier(v SecondaryVerifier) *Builder { b.verifier = v; return b }

// WithRegenerator overrides the regeneration selector.
func (b *Builder) WithRegenerator(r Regenerator) *Builder { b.regen = r; return b }

// WithOCR overrides the OCR word source.
func (b *Builder) WithOCR(o WordOCR) *Builder { b.ocr = o; return b }

// Build validates the options and wires default adapters.
func (b *Builder) Build() (*Pipeline, error) {
	if _, err := pdf.ParsePageRange(b.opts.Pages); err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", b.opts.Pages, err)
	}
	for _, p := range b.opts.Exclude {
		if p < 1 {
			return nil, fmt.Errorf("invalid excluded page %d", p)
		}
	}

	p := &Pipeline{
		opts:     b.opts,
		open:     b.open,
		detector: b.detector,
		verifier: b.verifier,
		regen:    b.regen,
		ocr:      b.ocr,
	}
	if p.open == nil {
		p.open = func(path string) (DocumentSource, error) { return pdf.Open(path) }
	}
	if p.detector == nil {
		p.detector = barcode.NewDetector(b.opts.Formats)
	}
	if p.verifier == nil {
		p.verifier = barcode.NewVerifier()
	}
	if p.regen == nil {
		p.regen = render.NewSelector(render.NewEngine(b.opts.Render))
	}
	if p.ocr == nil && b.opts.OCRFallback {
		p.ocr = ocr.NewEngine(b.opts.OCRLanguages)
	}
	return p, nil
}

// ProcessFiles processes multiple documents sequentially. A failing
// document aborts only itself; its error is joined into the returned error
// while the remaining documents are still processed.
func (p *Pipeline) ProcessFiles(ctx context.Context, paths []string) ([]*DocumentResult, error) {
	results := make([]*DocumentResult, 0, len(paths))
	var errs []error
	for _, path := range paths {
		res, err := p.ProcessFile(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to process %s: %w", path, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
