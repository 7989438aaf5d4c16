package pipeline

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scanbar/internal/barcode"
	"github.com/MeKo-Tech/scanbar/internal/layout"
)

func TestDocumentResultMarshalJSON(t *testing.T) {
	r := NewDocumentResult("doc.pdf", true, 3, "2026-08-28T12:00:00Z")
	r.AddPage(&PageResult{
		ID:       2,
		File:     "page_2_Im0.png",
		Width:    1000,
		Height:   1400,
		Barcodes: []BarcodeEntry{{Text: "X", Format: "qrcode"}},
	})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))

	require.Contains(t, m, "common")
	require.Contains(t, m, "page:2")
	assert.NotContains(t, m, "page:1")
	assert.NotContains(t, m, "page:3")

	var common Common
	require.NoError(t, json.Unmarshal(m["common"], &common))
	assert.Equal(t, "doc.pdf", common.File)
	assert.True(t, common.Strict)
	assert.Equal(t, 3, common.Pages)
}

func TestAddPageIgnoresEmptyPages(t *testing.T) {
	r := NewDocumentResult("doc.pdf", false, 2, "")

	r.AddPage(nil)
	r.AddPage(&PageResult{ID: 1}) // no barcodes
	assert.Empty(t, r.PageIDs())

	r.AddPage(&PageResult{ID: 2, Barcodes: []BarcodeEntry{{Text: "X"}}})
	assert.Equal(t, []int{2}, r.PageIDs())
	assert.Nil(t, r.Page(1))
	assert.NotNil(t, r.Page(2))
}

func TestPageIDsSorted(t *testing.T) {
	r := NewDocumentResult("doc.pdf", false, 9, "")
	for _, id := range []int{7, 2, 5} {
		r.AddPage(&PageResult{ID: id, Barcodes: []BarcodeEntry{{Text: "X"}}})
	}
	assert.Equal(t, []int{2, 5, 7}, r.PageIDs())
}

func TestNewBarcodeEntry(t *testing.T) {
	det := &barcode.Detection{
		Format: barcode.FormatCode128,
		Text:   "AB",
		Box:    image.Rect(10, 20, 110, 60),
		Label:  "serial",
		Strict: true,
		Verification: barcode.Verification{
			Verified: true,
			Raw:      []byte{0x41, 0x42},
		},
		SourcePNG:   []byte("src"),
		RenderedPNG: []byte("out"),
		RenderedSVG: []byte("<svg/>"),
	}

	e := newBarcodeEntry(det)
	assert.Equal(t, "AB", e.Text)
	assert.Equal(t, BBox{X0: 10, Y0: 20, X1: 110, Y1: 60}, e.BBox)
	assert.Equal(t, "code128", e.Format)
	assert.Equal(t, "serial", e.Label)
	assert.True(t, e.Strict)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x41, 0x42}), e.Data)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("src")), e.Source)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("out")), e.PNG)
	assert.Equal(t, "<svg/>", e.SVG)
}

func TestNewBarcodeEntryUnverified(t *testing.T) {
	det := &barcode.Detection{Format: barcode.FormatQRCode, Text: "Q"}

	e := newBarcodeEntry(det)
	assert.Empty(t, e.Data, "raw payload only present when verified")
	assert.Empty(t, e.Source)
	assert.Empty(t, e.PNG)
}

func TestNewLineEntries(t *testing.T) {
	lines := []layout.TextLine{
		{Text: "hello", Pixel: image.Rect(1, 2, 3, 4)},
	}
	entries := newLineEntries(lines)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Text)
	assert.Equal(t, BBox{X0: 1, Y0: 2, X1: 3, Y1: 4}, entries[0].BBox)
}
