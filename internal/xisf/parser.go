// Package xisf parses XISF (Extensible Image Serialization Format)
// containers as written by PixInsight and modern acquisition tools.
//
// The parser reads the monolithic envelope, scans the embedded XML header
// with flat text lookups, routes FITS keyword elements through the shared
// keyword table, and catalogs image attachments. Malformed fields degrade
// to warnings; only a bad signature or an unreadable stream is an error.
package xisf

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/dostergaard/astro-core/internal/binary"
	"github.com/dostergaard/astro-core/internal/registry"
	"github.com/dostergaard/astro-core/internal/types"
)

func init() {
	registry.Register(types.FormatXISF, &Parser{})
}

// Parser implements registry.FormatParser and registry.PixelLoader for
// XISF containers.
type Parser struct{}

// Parse extracts metadata from an XISF stream.
//
// A header block with no "<?xml" marker is not an error: the block is
// scanned from position 0 as best-effort input and a warning is recorded.
// A declared header size that extends past the end of the stream fails
// before the block is allocated.
func (p *Parser) Parse(r io.ReaderAt, size int64, path string, logger zerolog.Logger) (*types.File, error) {
	sr := binary.NewSafeReader(r, size, path)

	headerSize, err := readEnvelope(sr)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", path).Uint32("headerSize", headerSize).
		Msg("read XISF envelope")

	if int64(headerSize) > sr.Size()-envelopeLen {
		return nil, &types.CorruptedFileError{
			Path:   path,
			Reason: fmt.Sprintf("declared header size %d exceeds file size %d", headerSize, sr.Size()),
			Offset: signatureLen,
		}
	}
	block := make([]byte, headerSize)
	if err := sr.ReadAt(block, envelopeLen, "header block"); err != nil {
		return nil, err
	}

	b := types.NewMetadataBuilder()
	// The container version is always recorded, even for an empty header.
	b.XISF()

	text, found := headerText(block)
	if !found {
		// Best-effort: scan from the start of the block anyway.
		b.Warn("header", "no XML marker in header block")
	}
	applyFITSKeywords(text, b)
	applyStructural(text, b)
	applyColorManagement(text, b)
	b.SetAttachments(catalogAttachments(text))

	warnings := b.Warnings()
	for _, w := range warnings {
		logger.Warn().Str("path", path).Str("stage", w.Stage).Msg(w.Message)
	}

	return &types.File{
		Path:     path,
		Format:   types.FormatXISF,
		Size:     size,
		Meta:     b.Finalize(),
		Warnings: warnings,
	}, nil
}
