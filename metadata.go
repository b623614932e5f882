package astrocore

import (
	"github.com/dostergaard/astro-core/internal/types"
)

// Aliases to the internal metadata model. Re-exporting from
// internal/types keeps the public API in this package while the format
// parsers share the same definitions.
type (
	Metadata        = types.Metadata
	Equipment       = types.Equipment
	Detector        = types.Detector
	Filter          = types.Filter
	Exposure        = types.Exposure
	Mount           = types.Mount
	Environment     = types.Environment
	WCS             = types.WCS
	XISFInfo        = types.XISFInfo
	ColorManagement = types.ColorManagement
	DisplayFunction = types.DisplayFunction
	Attachment      = types.Attachment
)
