// Package fits parses FITS primary headers and image data units.
//
// The header is read as fixed-width cards, every card is preserved as a
// raw header and routed through the shared keyword table, and a second
// pass derives the fields that only exist in FITS headers (axis keywords,
// sequencing, guiding, acquisition software provenance).
package fits

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/dostergaard/astro-core/internal/binary"
	"github.com/dostergaard/astro-core/internal/keywords"
	"github.com/dostergaard/astro-core/internal/registry"
	"github.com/dostergaard/astro-core/internal/types"
)

func init() {
	registry.Register(types.FormatFITS, &Parser{})
}

// Parser implements registry.FormatParser and registry.PixelLoader for
// FITS files.
type Parser struct{}

// Parse extracts metadata from the primary header.
func (p *Parser) Parse(r io.ReaderAt, size int64, path string, logger zerolog.Logger) (*types.File, error) {
	sr := binary.NewSafeReader(r, size, path)

	cards, _, err := readHeader(sr)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 || cards[0].Name != "SIMPLE" {
		return nil, &types.InvalidFormatError{
			Path:   path,
			Format: types.FormatFITS,
			Magic:  firstCardBytes(cards),
		}
	}
	logger.Debug().Str("path", path).Int("cards", len(cards)).
		Msg("read FITS header")

	b := types.NewMetadataBuilder()
	for _, c := range cards {
		b.SetRawHeader(c.Name, c.Value)
		keywords.Apply(b, c.Name, c.Value)
	}
	derive(b)

	warnings := b.Warnings()
	for _, w := range warnings {
		logger.Warn().Str("path", path).Str("stage", w.Stage).Msg(w.Message)
	}

	return &types.File{
		Path:     path,
		Format:   types.FormatFITS,
		Size:     size,
		Meta:     b.Finalize(),
		Warnings: warnings,
	}, nil
}

func firstCardBytes(cards []Card) []byte {
	if len(cards) == 0 {
		return nil
	}
	return []byte(cards[0].Name)
}
