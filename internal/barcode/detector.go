package barcode

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"
)

// decodeUnit decodes one symbology family over a page bitmap. A family that
// finds nothing reports a ReaderException, not an empty slice.
type decodeUnit func(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) ([]*gozxing.Result, error)

// Detector is the primary decoder adapter. The engine exposes no combined
// multi-format reader, so the detector composes one per-family reader per
// requested symbology, unions the results and normalizes them into
// Detection records. Candidates that are invalid or belong to a known
// false-positive class are dropped here.
type Detector struct {
	formats []Format // optional restriction; empty means all
}

// NewDetector creates a primary detector. formats may be empty to search
// for all supported symbologies.
func NewDetector(formats []Format) *Detector {
	return &Detector{formats: formats}
}

// DetectPage decodes all barcodes on a page image. An empty slice (not an
// error) is returned when nothing is found.
func (d *Detector) DetectPage(ctx context.Context, img image.Image) ([]*Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize page image: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER:    true,
		gozxing.DecodeHintType_ALSO_INVERTED: true,
	}

	var results []*gozxing.Result
	for _, unit := range d.units() {
		rs, err := unit(bmp, hints)
		if err != nil {
			// NotFound, checksum and format errors mean "this family is
			// not on the page"; anything else is an engine failure.
			if _, readerErr := err.(gozxing.ReaderException); readerErr {
				continue
			}
			return nil, fmt.Errorf("primary decode failed: %w", err)
		}
		results = append(results, rs...)
	}

	out := make([]*Detection, 0, len(results))
	for _, r := range results {
		det := normalize(r)
		if !det.Valid {
			slog.Debug("Dropping invalid barcode candidate", "format", det.Format.String())
			continue
		}
		if det.Format.falsePositive() {
			slog.Debug("Dropping false-positive class candidate",
				"format", det.Format.String(), "text", det.Text)
			continue
		}
		out = append(out, det)
	}
	return out, nil
}

// units builds the per-family decoders for the requested formats. The QR
// family uses the engine's multi reader (several codes per page); every
// other family contributes its single-result reader.
func (d *Detector) units() []decodeUnit {
	want := func(f Format) bool {
		if len(d.formats) == 0 {
			return true
		}
		for _, have := range d.formats {
			if have == f {
				return true
			}
		}
		return false
	}

	var units []decodeUnit
	if want(FormatQRCode) {
		units = append(units, multiqr.NewQRCodeMultiReader().DecodeMultiple)
	}
	if want(FormatDataMatrix) {
		units = append(units, singleReader(datamatrix.NewDataMatrixReader()))
	}
	if want(FormatAztec) {
		units = append(units, singleReader(aztec.NewAztecReader()))
	}
	if want(FormatCode128) {
		units = append(units, singleReader(oned.NewCode128Reader()))
	}
	if want(FormatCode39) {
		units = append(units, singleReader(oned.NewCode39Reader()))
	}
	if want(FormatITF) {
		units = append(units, singleReader(oned.NewITFReader()))
	}
	if want(FormatCodabar) {
		units = append(units, singleReader(oned.NewCodaBarReader()))
	}

	// One reader covers the whole UPC/EAN family so a UPC-A symbol is not
	// also reported as its EAN-13 superset.
	var upcean []gozxing.BarcodeFormat
	for _, f := range []Format{FormatEAN8, FormatEAN13, FormatUPCA, FormatUPCE} {
		if want(f) {
			bf, _ := formatToZXing(f)
			upcean = append(upcean, bf)
		}
	}
	if len(upcean) > 0 {
		famHints := map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_POSSIBLE_FORMATS: upcean,
		}
		units = append(units, singleReader(oned.NewMultiFormatUPCEANReader(famHints)))
	}
	return units
}

// singleReader adapts a one-result engine reader to the decodeUnit shape.
func singleReader(r gozxing.Reader) decodeUnit {
	return func(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) ([]*gozxing.Result, error) {
		res, err := r.Decode(bmp, hints)
		if err != nil {
			return nil, err
		}
		return []*gozxing.Result{res}, nil
	}
}

// normalize converts one engine result into a Detection. The bbox is the
// min/max fold over the result's corner points.
func normalize(r *gozxing.Result) *Detection {
	det := &Detection{
		Format: formatFromZXing(r.GetBarcodeFormat()),
		Text:   r.GetText(),
		Valid:  r.GetText() != "",
	}

	if pts := r.GetResultPoints(); len(pts) > 0 {
		minX, minY := int(pts[0].GetX()), int(pts[0].GetY())
		maxX, maxY := minX, minY
		for _, p := range pts[1:] {
			x, y := int(p.GetX()), int(p.GetY())
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
		det.Box = image.Rect(minX, minY, maxX+1, maxY+1)
	} else {
		det.Valid = false
	}

	if md := r.GetResultMetadata(); md != nil {
		if ec, ok := md[gozxing.ResultMetadataType_ERROR_CORRECTION_LEVEL].(string); ok {
			det.Meta.ECLevel = ec
		}
	}
	return det
}

func formatToZXing(f Format) (gozxing.BarcodeFormat, bool) {
	switch f {
	case FormatQRCode:
		return gozxing.BarcodeFormat_QR_CODE, true
	case FormatDataMatrix:
		return gozxing.BarcodeFormat_DATA_MATRIX, true
	case FormatAztec:
		return gozxing.BarcodeFormat_AZTEC, true
	case FormatPDF417:
		return gozxing.BarcodeFormat_PDF_417, true
	case FormatCode128:
		return gozxing.BarcodeFormat_CODE_128, true
	case FormatCode39:
		return gozxing.BarcodeFormat_CODE_39, true
	case FormatEAN8:
		return gozxing.BarcodeFormat_EAN_8, true
	case FormatEAN13:
		return gozxing.BarcodeFormat_EAN_13, true
	case FormatUPCA:
		return gozxing.BarcodeFormat_UPC_A, true
	case FormatUPCE:
		return gozxing.BarcodeFormat_UPC_E, true
	case FormatITF:
		return gozxing.BarcodeFormat_ITF, true
	case FormatCodabar:
		return gozxing.BarcodeFormat_CODABAR, true
	default:
		return 0, false
	}
}

func formatFromZXing(bf gozxing.BarcodeFormat) Format {
	switch bf {
	case gozxing.BarcodeFormat_QR_CODE:
		return FormatQRCode
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return FormatDataMatrix
	case gozxing.BarcodeFormat_AZTEC:
		return FormatAztec
	case gozxing.BarcodeFormat_PDF_417:
		return FormatPDF417
	case gozxing.BarcodeFormat_CODE_128:
		return FormatCode128
	case gozxing.BarcodeFormat_CODE_39:
		return FormatCode39
	case gozxing.BarcodeFormat_EAN_8:
		return FormatEAN8
	case gozxing.BarcodeFormat_EAN_13:
		return FormatEAN13
	case gozxing.BarcodeFormat_UPC_A:
		return FormatUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return FormatUPCE
	case gozxing.BarcodeFormat_ITF:
		return FormatITF
	case gozxing.BarcodeFormat_CODABAR:
		return FormatCodabar
	default:
		return FormatUnknown
	}
}
