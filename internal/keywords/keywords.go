// Package keywords maps FITS header keywords into the shared metadata
// record.
//
// The table in Apply is the single source of truth for keyword-to-field
// mapping: both the FITS and XISF parsers dispatch every recognized
// name/value pair through it, so the two formats cannot diverge on a
// keyword's meaning.
package keywords

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dostergaard/astro-core/internal/types"
)

// Apply dispatches one header keyword into the metadata builder.
//
// Unknown keywords are ignored here; callers record every pair in the
// raw header map regardless, so nothing is lost. Optional substructures
// (mount, environment, WCS) are created the moment a relevant keyword is
// observed, even when its value fails to parse. Observation, not parse
// success, is what makes the substructure present.
func Apply(b *types.MetadataBuilder, name, value string) {
	switch name {
	// Equipment
	case "TELESCOP":
		b.Equipment().TelescopeName = value
	case "FOCALLEN":
		b.Equipment().FocalLength = floatPtr(value)
	case "APERTURE":
		b.Equipment().Aperture = floatPtr(value)
	case "FOCRATIO":
		b.Equipment().FocalRatio = floatPtr(value)
	case "FOCPOS", "FOCUSPOS":
		b.Equipment().FocuserPosition = intPtr(value)
	case "FOCTEMP", "FOCUSTEMP":
		b.Equipment().FocuserTemp = floatPtr(value)

	// Detector
	case "INSTRUME", "CAMERA":
		b.Detector().CameraName = value
	case "XPIXSZ", "PIXSIZE":
		b.Detector().PixelSize = floatPtr(value)
	case "XBINNING":
		b.Detector().BinningX = intOr(value, 1)
	case "YBINNING":
		b.Detector().BinningY = intOr(value, 1)
	case "GAIN", "EGAIN":
		b.Detector().Gain = floatPtr(value)
	case "RDNOISE":
		b.Detector().ReadNoise = floatPtr(value)
	case "CCD-TEMP", "CCDTEMP":
		b.Detector().Temperature = floatPtr(value)
	case "SET-TEMP":
		b.Detector().TempSetpoint = floatPtr(value)
	case "OFFSET", "CCDOFFST":
		b.Detector().Offset = intPtr(value)
	case "READOUT", "READOUTM":
		b.Detector().ReadoutMode = value
	case "USBLIMIT", "USBTRFC":
		b.Detector().USBLimit = value
	case "ROTANG", "ROTPA", "ROTATANG":
		b.Detector().RotatorAngle = floatPtr(value)

	// Filter
	case "FILTER":
		b.Filter().Name = value

	// Exposure
	case "OBJECT":
		b.Exposure().ObjectName = value
	case "RA", "OBJCTRA":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			b.Exposure().RA = &f
		} else if deg, ok := ParseSexagesimal(value); ok {
			// Hour-angle form: convert hours to degrees.
			deg *= 15.0
			b.Exposure().RA = &deg
		}
	case "DEC", "OBJCTDEC":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			b.Exposure().Dec = &f
		} else if deg, ok := ParseSexagesimal(value); ok {
			b.Exposure().Dec = &deg
		}
	case "DATE-OBS":
		if t, ok := ParseDate(value); ok {
			b.Exposure().DateObs = t
		} else {
			b.Warn("metadata", fmt.Sprintf("failed to parse date string: %s", value))
		}
	case "EXPTIME", "EXPOSURE":
		b.Exposure().ExposureTime = floatPtr(value)
	case "IMAGETYP", "FRAME":
		b.Exposure().FrameType = value
	case "PROJECT", "PROJNAME":
		b.Exposure().ProjectName = value
	case "SESSIONID", "SESSID":
		b.Exposure().SessionID = value

	// Mount and observatory site
	case "PIERSIDE":
		b.Mount().PierSide = value
	case "SITELAT", "OBSLAT":
		b.Mount().Latitude = floatPtr(value)
	case "SITELONG", "OBSLONG":
		b.Mount().Longitude = floatPtr(value)
	case "SITEELEV", "OBSELEV":
		b.Mount().Height = floatPtr(value)
	case "PEAKRA", "PEAKRAER":
		b.Mount().PeakRAError = floatPtr(value)
	case "PEAKDEC", "PEAKDCER":
		b.Mount().PeakDecError = floatPtr(value)

	// Environment
	case "AMB_TEMP", "AMBTEMP":
		b.Environment().AmbientTemp = floatPtr(value)
	case "HUMIDITY":
		b.Environment().Humidity = floatPtr(value)
	case "SQM", "SQMMAG", "SKYQUAL":
		b.Environment().SQM = floatPtr(value)

	// WCS reference pixel and value
	case "CRPIX1":
		b.WCS().CRPix1 = floatPtr(value)
	case "CRPIX2":
		b.WCS().CRPix2 = floatPtr(value)
	case "CRVAL1":
		b.WCS().CRVal1 = floatPtr(value)
	case "CRVAL2":
		b.WCS().CRVal2 = floatPtr(value)
	}
}

// ParseSexagesimal parses a whitespace-separated "H M S" (or "D M S")
// triple into a decimal value. The result is negative when the first
// token is negative or the string itself begins with '-' (which covers
// the "-0 30 0" case a plain numeric sign would miss).
func ParseSexagesimal(value string) (float64, bool) {
	parts := strings.Fields(value)
	if len(parts) < 3 {
		return 0, false
	}

	h, err1 := strconv.ParseFloat(parts[0], 64)
	m, err2 := strconv.ParseFloat(parts[1], 64)
	s, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}

	sign := 1.0
	if h < 0 || strings.HasPrefix(strings.TrimSpace(value), "-") {
		sign = -1.0
	}

	abs := h
	if abs < 0 {
		abs = -abs
	}
	return sign * (abs + m/60.0 + s/3600.0), true
}

func floatPtr(value string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil
	}
	return &f
}

func intPtr(value string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &n
}

func intOr(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
