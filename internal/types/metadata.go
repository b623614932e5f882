package types

import (
	"math"
	"time"
)

// Metadata is the structured record shared by all format parsers.
//
// Equipment, Detector, Filter, and Exposure are always present (their
// fields are individually optional). Mount, Environment, WCS, XISF, and
// ColorManagement are created only when at least one of their fields was
// observed in the source header; a nil pointer means "no such
// information", which is distinct from a zero value.
//
// Optional scalar fields are pointers for the same reason: many of these
// quantities (temperatures, offsets, coordinates) have meaningful zero
// values, so nil is the only faithful encoding of "not recorded".
type Metadata struct {
	Equipment       Equipment
	Detector        Detector
	Filter          Filter
	Exposure        Exposure
	Mount           *Mount
	Environment     *Environment
	WCS             *WCS
	XISF            *XISFInfo
	ColorManagement *ColorManagement

	// Attachments lists every image payload described by the container.
	// Nil when the header declared none.
	Attachments []Attachment

	// RawHeaders holds every recognized header keyword verbatim,
	// including keywords that were also mapped into a typed field.
	RawHeaders map[string]string
}

// Equipment describes the optical train.
type Equipment struct {
	TelescopeName    string
	FocalLength      *float64 // mm
	Aperture         *float64 // mm
	FocalRatio       *float64
	ReducerFlattener string
	MountModel       string
	FocuserPosition  *int
	FocuserTemp      *float64 // °C
}

// Detector describes the camera and sensor settings.
type Detector struct {
	CameraName   string
	PixelSize    *float64 // μm
	Width        int      // pixels
	Height       int      // pixels
	BinningX     int
	BinningY     int
	Gain         *float64
	Offset       *int
	ReadoutMode  string
	USBLimit     string
	ReadNoise    *float64
	Temperature  *float64 // °C
	TempSetpoint *float64 // °C
	CoolerPower  *float64 // %
	CoolerStatus string
	RotatorAngle *float64 // degrees
}

// Filter describes the filter in the light path.
type Filter struct {
	Name       string
	Position   *int
	Wavelength *float64 // nm
}

// Exposure holds target, pointing, and timing information for one frame.
type Exposure struct {
	ObjectName   string
	RA           *float64 // degrees
	Dec          *float64 // degrees
	DateObs      time.Time
	SessionDate  time.Time
	ExposureTime *float64 // seconds
	FrameType    string   // LIGHT, DARK, BIAS, FLAT
	SequenceID   string
	FrameNumber  *int
	DitherX      *float64
	DitherY      *float64
	ProjectName  string
	SessionID    string
}

// Mount holds mount and guiding information.
type Mount struct {
	PierSide      string
	MeridianFlip  *bool
	Latitude      *float64 // degrees, + north
	Longitude     *float64 // degrees, + east
	Height        *float64 // meters
	GuideCamera   string
	GuideRMS      *float64
	GuideScale    *float64
	DitherEnabled *bool
	PeakRAError   *float64 // pixels
	PeakDecError  *float64 // pixels
}

// Environment holds ambient conditions and software provenance.
type Environment struct {
	AmbientTemp     *float64 // °C
	Humidity        *float64 // %
	DewHeaterPower  *float64 // %
	Voltage         *float64 // V
	Current         *float64 // A
	SoftwareVersion string
	PluginInfo      string
	SQM             *float64 // mag/arcsec²
}

// WCS holds World Coordinate System solution data.
type WCS struct {
	CType1   string
	CType2   string
	CRPix1   *float64
	CRPix2   *float64
	CRVal1   *float64
	CRVal2   *float64
	CD1_1    *float64
	CD1_2    *float64
	CD2_1    *float64
	CD2_2    *float64
	CRota2   *float64
	Airmass  *float64
	Altitude *float64
	Azimuth  *float64
}

// XISFInfo holds container-level metadata specific to XISF files.
type XISFInfo struct {
	Version        string
	Creator        string
	CreationTime   time.Time
	BlockAlignment *int
}

// ColorManagement holds color space and display information.
type ColorManagement struct {
	ColorSpace string
	// ICCProfile is non-nil when the header declared a profile; the
	// payload itself is not decoded.
	ICCProfile      []byte
	DisplayFunction *DisplayFunction
}

// DisplayFunction describes a screen transfer function declared by the
// producing application.
type DisplayFunction struct {
	FunctionType string
	Parameters   map[string]float64
}

// Attachment describes one image payload declared by an <Image> element.
type Attachment struct {
	ID            string
	Geometry      string // width:height:channels
	SampleFormat  string
	BitsPerSample int
	Compression   string
	// CompressionParams preserves the declared parameters verbatim;
	// payload decompression is out of scope.
	CompressionParams map[string]string
	ChecksumType      string
	Checksum          string
	ResolutionX       *float64
	ResolutionY       *float64
	ResolutionUnit    string
}

// plateScaleConstant folds the μm→mm unit conversion into the small-angle
// constant: scale = (pixel μm / focal mm) × 206.265 arcsec/pixel.
const plateScaleConstant = 206.265

// CanCalculatePlateScale reports whether focal length and pixel size are
// both known.
func (m *Metadata) CanCalculatePlateScale() bool {
	return m.Equipment.FocalLength != nil && m.Detector.PixelSize != nil
}

// PlateScale returns the image scale in arcsec/pixel, or false when the
// required fields are absent.
func (m *Metadata) PlateScale() (float64, bool) {
	if !m.CanCalculatePlateScale() || *m.Equipment.FocalLength == 0 {
		return 0, false
	}
	return (*m.Detector.PixelSize / *m.Equipment.FocalLength) * plateScaleConstant, true
}

// FieldOfView returns the sensor field of view in arcminutes (width,
// height), or false when the plate scale cannot be computed.
func (m *Metadata) FieldOfView() (float64, float64, bool) {
	scale, ok := m.PlateScale()
	if !ok {
		return 0, 0, false
	}
	w := float64(m.Detector.Width) * scale / 60.0
	h := float64(m.Detector.Height) * scale / 60.0
	return w, h, true
}

// timezoneOffsetHours approximates a local time zone from the observatory
// longitude: round(longitude / 15) hours. Returns false when no longitude
// is known.
func (m *Metadata) timezoneOffsetHours() (int, bool) {
	if m.Mount == nil || m.Mount.Longitude == nil {
		return 0, false
	}
	return int(math.Round(*m.Mount.Longitude / 15.0)), true
}

// ComputeSessionDate assigns the "observing night" date to the exposure:
// the observation time is shifted by the approximate local offset, and the
// session date is that day's noon, or the previous day's noon when the
// shifted time falls before noon. Exactly noon keeps the same day.
//
// This is deliberately not a timezone-correct computation; it only has to
// bucket frames taken during the same night together.
func (m *Metadata) ComputeSessionDate() {
	if m.Exposure.DateObs.IsZero() {
		return
	}

	local := m.Exposure.DateObs
	if offset, ok := m.timezoneOffsetHours(); ok {
		local = local.Add(time.Duration(offset) * time.Hour)
	}

	noon := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, time.UTC)
	if local.Before(noon) {
		noon = noon.AddDate(0, 0, -1)
	}
	m.Exposure.SessionDate = noon
}
