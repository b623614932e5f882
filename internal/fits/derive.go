package fits

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dostergaard/astro-core/internal/types"
)

// derive fills the fields that have no XISF counterpart and so live
// outside the shared keyword table: axis dimensions, sequencing, guiding,
// cooler state, acquisition software provenance, and the remaining WCS
// solution terms. It runs after every card has been applied, so shared
// table results are already in place.
func derive(b *types.MetadataBuilder) {
	deriveEquipment(b)
	deriveDetector(b)
	deriveFilter(b)
	deriveExposure(b)
	deriveMount(b)
	deriveEnvironment(b)
	deriveWCS(b)
}

func deriveEquipment(b *types.MetadataBuilder) {
	eq := b.Equipment()

	if eq.FocalRatio == nil && eq.FocalLength != nil && eq.Aperture != nil && *eq.Aperture > 0 {
		ratio := *eq.FocalLength / *eq.Aperture
		eq.FocalRatio = &ratio
	}

	if inst, ok := rawString(b, "INSTRUME"); ok {
		lower := strings.ToLower(inst)
		if strings.Contains(lower, "reducer") || strings.Contains(lower, "flattener") {
			eq.ReducerFlattener = inst
		}
	}
	if mount, ok := rawString(b, "MOUNT"); ok {
		eq.MountModel = mount
	}
}

func deriveDetector(b *types.MetadataBuilder) {
	det := b.Detector()

	if w, ok := rawInt(b, "NAXIS1"); ok {
		det.Width = w
	}
	if h, ok := rawInt(b, "NAXIS2"); ok {
		det.Height = h
	}

	if det.TempSetpoint == nil {
		if v, ok := rawFloat(b, "CCD-TEMP-SETPOINT"); ok {
			det.TempSetpoint = &v
		}
	}
	if v, ok := rawFloat(b, "COOL-PWR", "COOLPWR"); ok {
		det.CoolerPower = &v
	}
	if s, ok := rawString(b, "COOL-STAT", "COOLSTAT"); ok {
		det.CoolerStatus = s
	}
}

func deriveFilter(b *types.MetadataBuilder) {
	f := b.Filter()

	if pos, ok := rawInt(b, "FILTERID", "FLTPOS"); ok {
		f.Position = &pos
	}
	if v, ok := rawFloat(b, "WAVELENG", "WAVELEN"); ok {
		f.Wavelength = &v
	}
}

func deriveExposure(b *types.MetadataBuilder) {
	exp := b.Exposure()

	if id, ok := rawString(b, "SEQID", "SEQFILE"); ok {
		exp.SequenceID = id
	}
	if n, ok := rawInt(b, "FRAMENUM", "SEQNUM"); ok {
		exp.FrameNumber = &n
	}
	if v, ok := rawFloat(b, "DX", "DITHX"); ok {
		exp.DitherX = &v
	}
	if v, ok := rawFloat(b, "DY", "DITHY"); ok {
		exp.DitherY = &v
	}
}

func deriveMount(b *types.MetadataBuilder) {
	if s, ok := rawString(b, "MFLIP", "MFOC"); ok {
		flip := parseBool(s)
		b.Mount().MeridianFlip = &flip
	}
	if s, ok := rawString(b, "GUIDECAM"); ok {
		b.Mount().GuideCamera = s
	}
	if v, ok := rawFloat(b, "GUIDERMS"); ok {
		b.Mount().GuideRMS = &v
	}
	if v, ok := rawFloat(b, "GUIDESCALE"); ok {
		b.Mount().GuideScale = &v
	}
	if s, ok := rawString(b, "DITHER"); ok {
		enabled := parseBool(s)
		b.Mount().DitherEnabled = &enabled
	}
}

func deriveEnvironment(b *types.MetadataBuilder) {
	if v, ok := rawFloat(b, "DEWPOWER", "DEWPWR"); ok {
		b.Environment().DewHeaterPower = &v
	}
	if v, ok := rawFloat(b, "VOLTAGE", "SYSVOLT"); ok {
		b.Environment().Voltage = &v
	}
	if v, ok := rawFloat(b, "CURRENT", "SYSCURR"); ok {
		b.Environment().Current = &v
	}

	if ver, ok := rawString(b, "NINA-VERSION"); ok {
		b.Environment().SoftwareVersion = "NINA " + ver
	} else if ver, ok := rawString(b, "EKOS-VERSION"); ok {
		b.Environment().SoftwareVersion = "EKOS " + ver
	}

	var plugins []string
	for name, value := range b.RawHeaders() {
		if strings.HasPrefix(name, "NINA-PLUGIN-") || strings.HasPrefix(name, "EKOS-PLUGIN-") {
			plugins = append(plugins, fmt.Sprintf("%s: %s", name, value))
		}
	}
	if len(plugins) > 0 {
		b.Environment().PluginInfo = strings.Join(plugins, ", ")
	}
}

func deriveWCS(b *types.MetadataBuilder) {
	if s, ok := rawString(b, "CTYPE1"); ok {
		b.WCS().CType1 = s
	}
	if s, ok := rawString(b, "CTYPE2"); ok {
		b.WCS().CType2 = s
	}
	if v, ok := rawFloat(b, "CD1_1"); ok {
		b.WCS().CD1_1 = &v
	}
	if v, ok := rawFloat(b, "CD1_2"); ok {
		b.WCS().CD1_2 = &v
	}
	if v, ok := rawFloat(b, "CD2_1"); ok {
		b.WCS().CD2_1 = &v
	}
	if v, ok := rawFloat(b, "CD2_2"); ok {
		b.WCS().CD2_2 = &v
	}
	if v, ok := rawFloat(b, "CROTA2"); ok {
		b.WCS().CRota2 = &v
	}
	if v, ok := rawFloat(b, "AIRMASS"); ok {
		b.WCS().Airmass = &v
	}
	if v, ok := rawFloat(b, "ALT-OBS", "ALTITUDE"); ok {
		b.WCS().Altitude = &v
	}
	if v, ok := rawFloat(b, "AZ-OBS", "AZIMUTH"); ok {
		b.WCS().Azimuth = &v
	}
}

// rawString returns the first non-empty raw header among keys.
func rawString(b *types.MetadataBuilder, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := b.RawHeader(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// rawFloat returns the first raw header among keys that parses as a float.
func rawFloat(b *types.MetadataBuilder, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := b.RawHeader(k); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// rawInt returns the first raw header among keys that parses as an int.
func rawInt(b *types.MetadataBuilder, keys ...string) (int, bool) {
	for _, k := range keys {
		if v, ok := b.RawHeader(k); ok {
			if n, err := strconv.Atoi(v); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "t"
}
