package pipeline

import (
	"github.com/MeKo-Tech/scanbar/internal/barcode"
	"github.com/MeKo-Tech/scanbar/internal/label"
	"github.com/MeKo-Tech/scanbar/internal/render"
)

// Options is the immutable per-run configuration threaded through the
// orchestrator. It is passed by value and never mutated during processing.
type Options struct {
	// Strict requests byte-exact regeneration where the format allows it.
	Strict bool

	// Debug retains the per-document working directory for inspection.
	Debug bool

	// Pages restricts processing to a page range ("1-5", "1,3,5"); empty
	// means all pages.
	Pages string

	// Exclude lists page ids that contribute nothing to the result.
	Exclude []int

	// Formats restricts the primary decoder's search; empty means all.
	Formats []barcode.Format

	// OCRFallback enables Tesseract word extraction on pages whose PDF
	// text layer is empty.
	OCRFallback  bool
	OCRLanguages []string

	// Label holds the direction penalty weights for label association.
	Label label.Weights

	// Render holds the shared render options for regeneration.
	Render render.Options
}

// DefaultOptions returns the standard pipeline options.
func DefaultOptions() Options {
	return Options{
		Label:  label.DefaultWeights(),
		Render: render.DefaultOptions(),
	}
}

func (o Options) excludeSet() map[int]bool {
	if len(o.Exclude) == 0 {
		return nil
	}
	s := make(map[int]bool, len(o.Exclude))
	for _, p := range o.Exclude {
		s[p] = true
	}
	return s
}
