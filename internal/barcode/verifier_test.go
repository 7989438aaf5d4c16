package barcode

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scanbar/internal/testutil"
)

func TestVerifyIneligibleFormat(t *testing.T) {
	v := NewVerifier()
	page := testutil.NewPage(100, 100)

	for _, f := range []Format{FormatQRCode, FormatAztec, FormatEAN13, FormatUnknown} {
		det := &Detection{Format: f, Box: image.Rect(10, 10, 90, 90)}
		raw, err := v.Verify(context.Background(), page, det)
		require.NoError(t, err)
		assert.Nil(t, raw, "format %s", f)
	}
}

func TestVerifyDataMatrixRecoversRawBytes(t *testing.T) {
	page := testutil.NewPage(400, 400)
	dm := testutil.NewDataMatrix(t, "SCAN-01", 160)
	testutil.PlaceOnPage(page, dm, 120, 120)

	det := &Detection{
		Format: FormatDataMatrix,
		Box:    image.Rect(120, 120, 280, 280),
	}

	v := NewVerifier()
	raw, err := v.Verify(context.Background(), page, det)
	require.NoError(t, err)
	assert.NotEmpty(t, raw, "raw codewords recovered from the crop")
}

func TestVerifyEmptyCropRegion(t *testing.T) {
	v := NewVerifier()
	page := testutil.NewPage(100, 100)

	// Box entirely outside the page yields an empty intersection.
	det := &Detection{Format: FormatDataMatrix, Box: image.Rect(500, 500, 600, 600)}
	raw, err := v.Verify(context.Background(), page, det)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestVerifyNothingInCrop(t *testing.T) {
	v := NewVerifier()
	page := testutil.NewPage(200, 200)

	det := &Detection{Format: FormatCode128, Box: image.Rect(20, 20, 180, 180)}
	raw, err := v.Verify(context.Background(), page, det)
	require.NoError(t, err)
	assert.Nil(t, raw, "blank crop degrades to no verification")
}

func TestVerifyCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewVerifier()
	det := &Detection{Format: FormatDataMatrix, Box: image.Rect(0, 0, 10, 10)}
	_, err := v.Verify(ctx, testutil.NewPage(100, 100), det)
	assert.Error(t, err)
}
