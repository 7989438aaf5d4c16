package barcode

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
)

// cropPadding is the margin in pixels added on each side of the primary
// bbox before handing the region to the secondary decoder.
const cropPadding = 5

// Verifier is the secondary decoder adapter. It re-decodes a cropped region
// of the page with a single-format reader to recover the raw payload bytes
// needed for strict regeneration. The primary decoder's geometry is never
// replaced by the secondary result.
type Verifier struct{}

// NewVerifier creates a secondary verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify attempts to recover raw payload bytes for the detection. It returns
// (nil, nil) when the format is not eligible or the secondary decoder finds
// nothing; the pipeline then falls back to non-strict regeneration. Any
// other engine failure is returned as an error.
func (v *Verifier) Verify(ctx context.Context, page image.Image, det *Detection) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !det.Format.StrictEligible() {
		return nil, nil
	}

	region := det.Box.Inset(-cropPadding).Intersect(page.Bounds())
	if region.Empty() {
		return nil, nil
	}
	crop := imaging.Crop(page, region)

	bmp, err := gozxing.NewBinaryBitmapFromImage(crop)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize crop: %w", err)
	}

	var reader gozxing.Reader
	switch det.Format {
	case FormatDataMatrix:
		reader = datamatrix.NewDataMatrixReader()
	case FormatCode128:
		reader = oned.NewCode128Reader()
	default:
		return nil, nil
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := reader.Decode(bmp, hints)
	if err != nil {
		if _, notFound := err.(gozxing.NotFoundException); notFound {
			return nil, nil
		}
		return nil, fmt.Errorf("secondary decode failed: %w", err)
	}

	raw := result.GetRawBytes()
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}
