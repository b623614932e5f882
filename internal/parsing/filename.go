// Package parsing extracts frame information from file names.
//
// Capture software encodes sequencing into file names far more reliably
// than into header keywords: "M31_Ha_300s_0042.xisf" carries the frame
// number, exposure, and filter even when the header has none of them.
// These helpers are fallbacks; header values always win.
package parsing

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// frameNumberPatterns in priority order. Capture tools almost always put
// the sequence counter last in the stem, zero padded.
var frameNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[_-](\d{1,6})$`),         // "light_0042", "frame-7"
	regexp.MustCompile(`(?i)frame\s*(\d{1,6})`),  // "Frame 42"
	regexp.MustCompile(`(?i)no\.?\s*(\d{1,6})$`), // "No. 42"
	regexp.MustCompile(`^(\d{1,6})$`),            // bare "0042"
}

// FrameNumber extracts the sequence counter from a file name. The
// extension and any directory prefix are ignored.
func FrameNumber(path string) (int, bool) {
	stem := stemOf(path)
	for _, re := range frameNumberPatterns {
		if m := re.FindStringSubmatch(stem); len(m) > 1 {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return n, true
		}
	}
	return 0, false
}

var exposurePattern = regexp.MustCompile(`(?i)[_-](\d+(?:\.\d+)?)\s*s(?:ec)?(?:[_-]|$)`)

// ExposureSeconds extracts an exposure duration token like "300s" or
// "2.5sec" from a file name.
func ExposureSeconds(path string) (float64, bool) {
	m := exposurePattern.FindStringSubmatch(stemOf(path))
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// filterTokens maps common file name tokens to canonical filter names.
// Matching is per-token, so the "L" in "LIGHT" does not trigger.
var filterTokens = map[string]string{
	"l":      "L",
	"lum":    "L",
	"r":      "R",
	"red":    "R",
	"g":      "G",
	"green":  "G",
	"b":      "B",
	"blue":   "B",
	"ha":     "Ha",
	"halpha": "Ha",
	"oiii":   "OIII",
	"o3":     "OIII",
	"sii":    "SII",
	"s2":     "SII",
}

// FilterHint extracts a filter name token from a file name.
func FilterHint(path string) (string, bool) {
	stem := strings.ToLower(stemOf(path))
	for _, token := range strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	}) {
		if name, ok := filterTokens[token]; ok {
			return name, true
		}
	}
	return "", false
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
