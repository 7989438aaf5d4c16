package layout

import (
	"image"
	"strings"
)

// WordRecord is one word-level entry from a text-layer or OCR source, in
// layout units. The composite identity (page, block, paragraph, line)
// determines which TextLine the word merges into.
type WordRecord struct {
	Page      int
	Block     int
	Paragraph int
	Line      int
	X, Y      float64
	W, H      float64
	Text      string
}

// TextLine is a merged run of words sharing the same line identity.
type TextLine struct {
	Page  int
	Text  string
	Box   Box             // layout units
	Pixel image.Rectangle // set by RescaleLines
}

type lineKey struct {
	page, block, paragraph, line int
}

// MergeWords groups word records into text lines by their composite line
// identity, preserving first-seen order. The merged bbox only grows: the
// left/top edges take the minimum and the right/bottom edges the maximum
// over all constituent words.
func MergeWords(words []WordRecord) []TextLine {
	byKey := make(map[lineKey]int)
	lines := make([]TextLine, 0, len(words)/4+1)

	for _, w := range words {
		t := strings.TrimSpace(w.Text)
		if t == "" {
			continue
		}
		key := lineKey{w.Page, w.Block, w.Paragraph, w.Line}
		idx, ok := byKey[key]
		if !ok {
			byKey[key] = len(lines)
			lines = append(lines, TextLine{
				Page: w.Page,
				Text: t,
				Box:  Box{X0: w.X, Y0: w.Y, X1: w.X + w.W, Y1: w.Y + w.H},
			})
			continue
		}
		ln := &lines[idx]
		ln.Text += " " + t
		if w.X < ln.Box.X0 {
			ln.Box.X0 = w.X
		}
		if w.Y < ln.Box.Y0 {
			ln.Box.Y0 = w.Y
		}
		if r := w.X + w.W; r > ln.Box.X1 {
			ln.Box.X1 = r
		}
		if b := w.Y + w.H; b > ln.Box.Y1 {
			ln.Box.Y1 = b
		}
	}
	return lines
}

// RescaleLines fills in the pixel-space bbox of every line for the given page.
func RescaleLines(lines []TextLine, p Page) {
	for i := range lines {
		lines[i].Pixel = p.ToPixels(lines[i].Box)
	}
}

// JoinText concatenates the text of all lines, one line per row.
func JoinText(lines []TextLine) string {
	parts := make([]string, 0, len(lines))
	for _, ln := range lines {
		parts = append(parts, ln.Text)
	}
	return strings.Join(parts, "\n")
}
