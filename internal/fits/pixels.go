package fits

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dostergaard/astro-core/internal/binary"
	"github.com/dostergaard/astro-core/internal/types"
)

// maxDimension bounds each image axis; no real detector comes close.
const maxDimension = 1 << 20

// LoadPixels decodes the primary data unit into normalized float32
// samples. Integer samples are mapped through BZERO/BSCALE and scaled to
// [0, 1]; 32-bit float samples are returned as stored. FITS data is
// big-endian.
func (p *Parser) LoadPixels(r io.ReaderAt, size int64, path string, logger zerolog.Logger) ([]float32, int, int, error) {
	sr := binary.NewSafeReader(r, size, path)

	cards, dataOffset, err := readHeader(sr)
	if err != nil {
		return nil, 0, 0, err
	}
	if len(cards) == 0 || cards[0].Name != "SIMPLE" {
		return nil, 0, 0, &types.InvalidFormatError{
			Path:   path,
			Format: types.FormatFITS,
			Magic:  firstCardBytes(cards),
		}
	}

	lookup := make(map[string]string, len(cards))
	for _, c := range cards {
		lookup[c.Name] = c.Value
	}

	bitpix, ok := cardInt(lookup, "BITPIX")
	if !ok {
		return nil, 0, 0, &types.CorruptedFileError{Path: path, Reason: "missing BITPIX"}
	}
	width, wok := cardInt(lookup, "NAXIS1")
	height, hok := cardInt(lookup, "NAXIS2")
	if !wok || !hok || width <= 0 || height <= 0 {
		return nil, 0, 0, &types.CorruptedFileError{Path: path, Reason: "missing image dimensions"}
	}

	bzero := cardFloatOr(lookup, "BZERO", 0)
	bscale := cardFloatOr(lookup, "BSCALE", 1)

	var sampleBytes int
	switch bitpix {
	case 8:
		sampleBytes = 1
	case 16:
		sampleBytes = 2
	case -32:
		sampleBytes = 4
	default:
		return nil, 0, 0, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "unsupported BITPIX " + strconv.Itoa(bitpix),
		}
	}

	// The dimensions come straight from the header; a data unit larger
	// than the rest of the stream cannot be real and must not be
	// allocated for. maxDimension also keeps the byte count from
	// overflowing below.
	if width > maxDimension || height > maxDimension {
		return nil, 0, 0, &types.CorruptedFileError{
			Path:   path,
			Reason: fmt.Sprintf("implausible image dimensions %dx%d", width, height),
		}
	}
	n := width * height
	need := int64(n) * int64(sampleBytes)
	if need > sr.Size()-dataOffset {
		return nil, 0, 0, &types.CorruptedFileError{
			Path:   path,
			Reason: fmt.Sprintf("data unit of %d bytes exceeds file size %d", need, sr.Size()),
			Offset: dataOffset,
		}
	}

	data := make([]byte, need)
	if err := sr.ReadAt(data, dataOffset, "image data"); err != nil {
		return nil, 0, 0, err
	}

	pixels := make([]float32, n)
	switch bitpix {
	case 8:
		for i, v := range data {
			pixels[i] = clamp01(float32((bzero + bscale*float64(v)) / 255.0))
		}

	case 16:
		for i := 0; i < n; i++ {
			raw := int16(uint16(data[2*i])<<8 | uint16(data[2*i+1]))
			pixels[i] = clamp01(float32((bzero + bscale*float64(raw)) / 65535.0))
		}

	case -32:
		for i := 0; i < n; i++ {
			bits := uint32(data[4*i])<<24 | uint32(data[4*i+1])<<16 |
				uint32(data[4*i+2])<<8 | uint32(data[4*i+3])
			pixels[i] = math.Float32frombits(bits)
		}
	}

	logger.Debug().Str("path", path).
		Int("width", width).Int("height", height).Int("bitpix", bitpix).
		Msg("decoded image data unit")
	return pixels, width, height, nil
}

func cardInt(lookup map[string]string, name string) (int, bool) {
	v, ok := lookup[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func cardFloatOr(lookup map[string]string, name string, fallback float64) float64 {
	if v, ok := lookup[name]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
