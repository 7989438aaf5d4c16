package barcode

import "strings"

// Format represents a barcode symbology.
type Format int

const (
	FormatUnknown Format = iota
	FormatQRCode
	FormatDataMatrix
	FormatAztec
	FormatPDF417
	FormatCode128
	FormatCode39
	FormatEAN8
	FormatEAN13
	FormatUPCA
	FormatUPCE
	FormatITF
	FormatCodabar
)

// String returns the lowercase tag used in results and config.
func (f Format) String() string {
	switch f {
	case FormatQRCode:
		return "qrcode"
	case FormatDataMatrix:
		return "datamatrix"
	case FormatAztec:
		return "aztec"
	case FormatPDF417:
		return "pdf417"
	case FormatCode128:
		return "code128"
	case FormatCode39:
		return "code39"
	case FormatEAN8:
		return "ean8"
	case FormatEAN13:
		return "ean13"
	case FormatUPCA:
		return "upca"
	case FormatUPCE:
		return "upce"
	case FormatITF:
		return "itf"
	case FormatCodabar:
		return "codabar"
	default:
		return "unknown"
	}
}

// ParseFormat maps a user-supplied tag to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qr", "qrcode", "qr-code":
		return FormatQRCode, true
	case "datamatrix", "data-matrix":
		return FormatDataMatrix, true
	case "aztec":
		return FormatAztec, true
	case "pdf417":
		return FormatPDF417, true
	case "code128", "code-128":
		return FormatCode128, true
	case "code39", "code-39":
		return FormatCode39, true
	case "ean8", "ean-8":
		return FormatEAN8, true
	case "ean13", "ean-13":
		return FormatEAN13, true
	case "upca", "upc-a":
		return FormatUPCA, true
	case "upce", "upc-e":
		return FormatUPCE, true
	case "itf", "interleaved2of5", "i2/5":
		return FormatITF, true
	case "codabar":
		return FormatCodabar, true
	default:
		return 0, false
	}
}

// StrictEligible reports whether raw-byte reconstruction is meaningful for
// the format. Only these symbologies round-trip through the renderer's raw
// mode byte-exactly.
func (f Format) StrictEligible() bool {
	return f == FormatCode128 || f == FormatDataMatrix
}

// falsePositive reports whether the format is a known false-positive class
// of the primary decoder. Short 1D symbologies without checksums trigger on
// ruled lines and dense text; candidates of these formats are dropped.
func (f Format) falsePositive() bool {
	return f == FormatITF || f == FormatCodabar
}
