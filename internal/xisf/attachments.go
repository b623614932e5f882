package xisf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dostergaard/astro-core/internal/types"
)

// catalogAttachments builds one Attachment record per <Image> element in
// the header. Every field degrades independently: a missing id is replaced
// with a positional "image<N>" name, sample format defaults to UInt16 at
// 16 bits, and compression or checksum declarations are carried verbatim
// without validation.
func catalogAttachments(text string) []types.Attachment {
	var attachments []types.Attachment
	for tag := range openTags(text, "<Image ") {
		att := types.Attachment{
			SampleFormat:  "UInt16",
			BitsPerSample: 16,
		}

		if id, ok := attrValue(tag, "id"); ok {
			att.ID = id
		} else {
			att.ID = fmt.Sprintf("image%d", len(attachments))
		}
		if geom, ok := attrValue(tag, "geometry"); ok {
			att.Geometry = geom
		}
		if sf, ok := attrValue(tag, "sampleFormat"); ok {
			att.SampleFormat = sf
		}
		if bps, ok := attrValue(tag, "bitsPerSample"); ok {
			if n, err := strconv.Atoi(bps); err == nil {
				att.BitsPerSample = n
			}
		}

		if comp, ok := attrValue(tag, "compression"); ok {
			att.Compression = comp
			if params, ok := attrValue(tag, "compressionParameters"); ok {
				att.CompressionParams = parseCompressionParams(params)
			}
		}

		if ct, ok := attrValue(tag, "checksumType"); ok {
			att.ChecksumType = ct
			if sum, ok := attrValue(tag, "checksum"); ok {
				att.Checksum = sum
			}
		}

		if xr, ok := attrValue(tag, "xResolution"); ok {
			if v, err := strconv.ParseFloat(xr, 64); err == nil {
				att.ResolutionX = &v
			}
			if yr, ok := attrValue(tag, "yResolution"); ok {
				if v, err := strconv.ParseFloat(yr, 64); err == nil {
					att.ResolutionY = &v
				}
			}
		}
		if unit, ok := attrValue(tag, "resolutionUnit"); ok {
			att.ResolutionUnit = unit
		}

		attachments = append(attachments, att)
	}
	return attachments
}

// parseCompressionParams splits "key=value;key=value" declarations,
// keeping values as strings. Entries without "=" are dropped.
func parseCompressionParams(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}
