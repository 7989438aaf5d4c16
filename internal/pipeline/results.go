package pipeline

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/MeKo-Tech/scanbar/internal/barcode"
	"github.com/MeKo-Tech/scanbar/internal/layout"
)

// Common is the document-level header of a result.
type Common struct {
	File      string `json:"file"`
	Strict    bool   `json:"strict"`
	Timestamp string `json:"timestamp"`
	Pages     int    `json:"pages"`
}

// BBox is an axis-aligned pixel rectangle in the output model.
type BBox struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// BarcodeEntry is the serialized form of one detection.
type BarcodeEntry struct {
	Text   string `json:"text"`
	Data   string `json:"data,omitempty"` // base64 raw payload bytes
	BBox   BBox   `json:"bbox"`
	Label  string `json:"label,omitempty"`
	Format string `json:"format"`
	Strict bool   `json:"strict"`
	Source string `json:"source,omitempty"` // base64 source crop PNG
	PNG    string `json:"png,omitempty"`    // base64 regenerated PNG
	SVG    string `json:"svg,omitempty"`    // raw SVG markup
}

// LineEntry is the serialized form of one text line.
type LineEntry struct {
	Text string `json:"text"`
	BBox BBox   `json:"bbox"`
}

// PageResult aggregates all valid detections of one page. Pages without
// barcodes never get a PageResult.
type PageResult struct {
	ID       int            `json:"id"`
	File     string         `json:"file"`
	Text     string         `json:"text"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Barcodes []BarcodeEntry `json:"barcodes"`
	Lines    []LineEntry    `json:"lines"`
}

// DocumentResult is the final per-document output: a common header plus one
// entry per qualifying page, keyed "page:<id>" in the serialized form.
type DocumentResult struct {
	Common Common
	pages  map[int]*PageResult
}

// NewDocumentResult creates an empty result with a populated header.
func NewDocumentResult(file string, strict bool, pageCount int, timestamp string) *DocumentResult {
	return &DocumentResult{
		Common: Common{File: file, Strict: strict, Timestamp: timestamp, Pages: pageCount},
		pages:  make(map[int]*PageResult),
	}
}

// AddPage records the result for one page. Pages with zero barcodes are
// ignored so that absence of a page key means "nothing found".
func (r *DocumentResult) AddPage(p *PageResult) {
	if p == nil || len(p.Barcodes) == 0 {
		return
	}
	r.pages[p.ID] = p
}

// Page returns the recorded result for a page id, or nil.
func (r *DocumentResult) Page(id int) *PageResult { return r.pages[id] }

// PageIDs returns the recorded page ids in ascending order.
func (r *DocumentResult) PageIDs() []int {
	ids := make([]int, 0, len(r.pages))
	for id := range r.pages {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MarshalJSON serializes the result as {"common": ..., "page:<id>": ...}.
func (r *DocumentResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.pages)+1)
	out["common"] = r.Common
	for id, p := range r.pages {
		out[fmt.Sprintf("page:%d", id)] = p
	}
	return json.Marshal(out)
}

// ToJSON serializes the result as indented JSON.
func (r *DocumentResult) ToJSON() (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// newBarcodeEntry converts a finalized detection into its output form.
func newBarcodeEntry(d *barcode.Detection) BarcodeEntry {
	e := BarcodeEntry{
		Text:   d.Text,
		BBox:   BBox{X0: d.Box.Min.X, Y0: d.Box.Min.Y, X1: d.Box.Max.X, Y1: d.Box.Max.Y},
		Label:  d.Label,
		Format: d.Format.String(),
		Strict: d.Strict,
		SVG:    string(d.RenderedSVG),
	}
	if d.Verification.Verified {
		e.Data = base64.StdEncoding.EncodeToString(d.Verification.Raw)
	}
	if len(d.SourcePNG) > 0 {
		e.Source = base64.StdEncoding.EncodeToString(d.SourcePNG)
	}
	if len(d.RenderedPNG) > 0 {
		e.PNG = base64.StdEncoding.EncodeToString(d.RenderedPNG)
	}
	return e
}

// newLineEntries converts pixel-rescaled text lines into their output form.
func newLineEntries(lines []layout.TextLine) []LineEntry {
	out := make([]LineEntry, 0, len(lines))
	for _, ln := range lines {
		out = append(out, LineEntry{
			Text: ln.Text,
			BBox: BBox{X0: ln.Pixel.Min.X, Y0: ln.Pixel.Min.Y, X1: ln.Pixel.Max.X, Y1: ln.Pixel.Max.Y},
		})
	}
	return out
}
