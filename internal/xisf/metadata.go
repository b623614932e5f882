package xisf

import (
	"strconv"
	"strings"

	"github.com/dostergaard/astro-core/internal/keywords"
	"github.com/dostergaard/astro-core/internal/types"
)

// applyFITSKeywords walks every self-closing <FITSKeyword> element, strips
// one layer of FITS quoting from the value, records the raw header pair,
// and routes the pair through the shared keyword table.
func applyFITSKeywords(text string, b *types.MetadataBuilder) {
	for tag := range selfClosing(text, "<FITSKeyword ") {
		name, ok := attrValue(tag, "name")
		if !ok {
			continue
		}
		value, ok := attrValue(tag, "value")
		if !ok {
			continue
		}
		value = stripQuotes(value)
		b.SetRawHeader(name, value)
		keywords.Apply(b, name, value)
	}
}

// applyStructural maps XISF structural attributes that duplicate or extend
// the FITS keyword set. Geometry and sample format are read from the
// primary image tag; the header-level version and block alignment are
// document-wide lookups.
func applyStructural(text string, b *types.MetadataBuilder) {
	scope := primaryImage(text)

	if geom, ok := attrValue(scope, "geometry"); ok {
		// "W:H:C"; a malformed component degrades to zero, not an error.
		parts := strings.Split(geom, ":")
		if len(parts) >= 2 {
			w, _ := strconv.Atoi(parts[0])
			h, _ := strconv.Atoi(parts[1])
			det := b.Detector()
			det.Width = w
			det.Height = h
		}
	}

	if v, ok := attrValue(text, "version"); ok {
		b.XISF().Version = v
	}
	if v, ok := attrValue(text, "blockAlignment"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			align := n
			b.XISF().BlockAlignment = &align
		}
	}

	if v, ok := propertyValue(text, "XISF:CreationTime"); ok {
		if t, ok := keywords.ParseDate(v); ok {
			b.XISF().CreationTime = t
			if b.Exposure().DateObs.IsZero() {
				b.Exposure().DateObs = t
			}
		}
	}
	if v, ok := propertyValue(text, "XISF:CreatorApplication"); ok {
		b.XISF().Creator = v
		b.Environment().SoftwareVersion = v
	}
}

// applyColorManagement extracts the color space, ICC profile marker, and
// the display function with its parameters.
func applyColorManagement(text string, b *types.MetadataBuilder) {
	scope := primaryImage(text)

	if cs, ok := attrValue(scope, "colorSpace"); ok {
		b.ColorManagement().ColorSpace = cs
	}

	// The profile payload lives in an attachment we do not fetch here;
	// an empty non-nil slice marks its presence.
	if _, ok := propertyValue(text, "ICCProfile"); ok {
		b.ColorManagement().ICCProfile = []byte{}
	}

	fn, ok := attrValue(scope, "displayFunction")
	if !ok {
		return
	}
	df := &types.DisplayFunction{FunctionType: fn}
	if params, ok := attrValue(scope, "displayParameters"); ok {
		df.Parameters = parseDisplayParameters(params)
	}
	b.ColorManagement().DisplayFunction = df
}

// parseDisplayParameters splits "key=value;key=value" pairs with numeric
// values. Pairs without "=" or with non-numeric values are dropped.
func parseDisplayParameters(s string) map[string]float64 {
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ";") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if v, err := strconv.ParseFloat(kv[1], 64); err == nil {
			out[kv[0]] = v
		}
	}
	return out
}
