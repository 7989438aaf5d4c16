package barcode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scanbar/internal/testutil"
)

func TestDetectPageQRCode(t *testing.T) {
	page := testutil.NewPage(600, 600)
	qr := testutil.NewQRCode(t, "HELLO-SCANBAR", 200)
	testutil.PlaceOnPage(page, qr, 150, 180)

	d := NewDetector(nil)
	dets, err := d.DetectPage(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	det := dets[0]
	assert.Equal(t, FormatQRCode, det.Format)
	assert.Equal(t, "HELLO-SCANBAR", det.Text)
	assert.True(t, det.Valid)
	assert.False(t, det.Box.Empty())
	assert.True(t, det.Box.In(page.Bounds()), "bbox stays on the page")
}

func TestDetectPageEmpty(t *testing.T) {
	page := testutil.NewPage(400, 400)

	d := NewDetector(nil)
	dets, err := d.DetectPage(context.Background(), page)
	require.NoError(t, err)
	assert.Empty(t, dets)
}

func TestDetectPageFormatRestriction(t *testing.T) {
	page := testutil.NewPage(600, 600)
	qr := testutil.NewQRCode(t, "ONLY-DM-WANTED", 200)
	testutil.PlaceOnPage(page, qr, 200, 200)

	d := NewDetector([]Format{FormatDataMatrix})
	dets, err := d.DetectPage(context.Background(), page)
	require.NoError(t, err)
	assert.Empty(t, dets, "QR code must not match a DataMatrix-only search")
}

func TestDetectPageDataMatrixRestricted(t *testing.T) {
	page := testutil.NewPage(600, 600)
	dm := testutil.NewDataMatrix(t, "SCAN-DM-7", 200)
	testutil.PlaceOnPage(page, dm, 200, 200)

	d := NewDetector([]Format{FormatDataMatrix})
	dets, err := d.DetectPage(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, FormatDataMatrix, dets[0].Format)
	assert.Equal(t, "SCAN-DM-7", dets[0].Text)
}

func TestDetectorUnits(t *testing.T) {
	tests := []struct {
		name    string
		formats []Format
		want    int
	}{
		{"all families", nil, 8},
		{"qr only", []Format{FormatQRCode}, 1},
		{"upcean family collapses", []Format{FormatEAN8, FormatEAN13, FormatUPCA, FormatUPCE}, 1},
		{"mixed", []Format{FormatQRCode, FormatCode128, FormatEAN13}, 3},
		{"no reader available", []Format{FormatPDF417}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(tt.formats)
			assert.Len(t, d.units(), tt.want)
		})
	}
}

func TestDetectPageCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDetector(nil)
	_, err := d.DetectPage(ctx, testutil.NewPage(100, 100))
	assert.Error(t, err)
}
