// Package registry manages format-specific parsers for image file types.
package registry

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/dostergaard/astro-core/internal/types"
)

// FormatParser is the interface all format parsers implement.
type FormatParser interface {
	// Parse extracts metadata from an image file.
	Parse(r io.ReaderAt, size int64, path string, logger zerolog.Logger) (*types.File, error)
}

// PixelLoader is an optional interface for parsers that can decode the
// primary image payload into a normalized float buffer.
type PixelLoader interface {
	// LoadPixels decodes the primary image into float32 samples in
	// [0, 1], returning the buffer with its width and height.
	LoadPixels(r io.ReaderAt, size int64, path string, logger zerolog.Logger) ([]float32, int, int, error)
}

// parsers maps formats to their parsers.
var parsers = make(map[types.Format]FormatParser)

// Register registers a parser for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, parser FormatParser) {
	parsers[format] = parser
}

// Get returns the parser for a given format.
// Returns nil if no parser is registered for the format.
func Get(format types.Format) FormatParser {
	return parsers[format]
}
