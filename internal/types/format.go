package types

import (
	"bytes"
	"io"

	"github.com/dostergaard/astro-core/internal/binary"
)

// Format represents the detected image container format.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatXISF represents XISF containers (PixInsight's Extensible
	// Image Serialization Format).
	FormatXISF
	// FormatFITS represents FITS files (Flexible Image Transport
	// System).
	FormatFITS
)

// String returns the conventional name of the format.
func (f Format) String() string {
	switch f {
	case FormatXISF:
		return "XISF"
	case FormatFITS:
		return "FITS"
	default:
		return "Unknown"
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatXISF:
		return []string{".xisf"}
	case FormatFITS:
		return []string{".fits", ".fit", ".fts"}
	default:
		return nil
	}
}

// xisfSignature is the fixed 8-byte magic opening every XISF monolithic
// container.
var xisfSignature = []byte("XISF0100")

// fitsSignature is the start of the mandatory first header card of a
// conforming FITS primary HDU.
var fitsSignature = []byte("SIMPLE ")

// DetectFormat determines the image file format by examining magic bytes.
//
// Detection reads only the first few bytes; it does not validate the full
// container structure.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	if size < 8 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	sr := binary.NewSafeReader(r, size, path)

	magic := make([]byte, 8)
	if err := sr.ReadAt(magic, 0, "file magic bytes"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	if bytes.Equal(magic, xisfSignature) {
		return FormatXISF, nil
	}

	// FITS: "SIMPLE" keyword padded to column 8 followed by "= T" in
	// the fixed card layout. Matching the keyword alone is sufficient
	// to route the file; card validation happens in the parser.
	if bytes.HasPrefix(magic, fitsSignature) {
		return FormatFITS, nil
	}

	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "unrecognized file signature",
	}
}
