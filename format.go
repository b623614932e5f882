package astrocore

import (
	"io"

	"github.com/dostergaard/astro-core/internal/types"
)

// Format is an alias to types.Format.
// Re-exporting from internal/types to maintain the public API.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown = types.FormatUnknown
	FormatXISF    = types.FormatXISF
	FormatFITS    = types.FormatFITS
)

// DetectFormat is a wrapper around types.DetectFormat.
// Maintains the public API while delegating to the internal
// implementation.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}
