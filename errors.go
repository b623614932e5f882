package astrocore

import (
	"github.com/dostergaard/astro-core/internal/types"
)

// InvalidFormatError is an alias to types.InvalidFormatError.
// Re-exporting from internal/types to maintain the public API.
type InvalidFormatError = types.InvalidFormatError

// UnsupportedFormatError is an alias to types.UnsupportedFormatError.
// Re-exporting from internal/types to maintain the public API.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is an alias to types.CorruptedFileError.
// Re-exporting from internal/types to maintain the public API.
type CorruptedFileError = types.CorruptedFileError

// Warning is an alias to types.Warning.
// Re-exporting from internal/types to maintain the public API.
type Warning = types.Warning
