package xisf

import (
	"bytes"

	"github.com/dostergaard/astro-core/internal/binary"
	"github.com/dostergaard/astro-core/internal/types"
)

// The monolithic XISF envelope: an 8-byte signature followed by a 4-byte
// little-endian header length. The header block starts immediately after.
const (
	signatureLen = 8
	envelopeLen  = 12
)

var signature = []byte("XISF0100")

// readEnvelope validates the container signature and returns the declared
// header block length in bytes.
//
// A signature mismatch is an InvalidFormatError ("this is not an XISF
// container"), not an I/O error. The header length is returned without
// further validation; callers check it against the stream size before
// allocating the header block.
func readEnvelope(sr *binary.SafeReader) (uint32, error) {
	magic := make([]byte, signatureLen)
	if err := sr.ReadAt(magic, 0, "XISF signature"); err != nil {
		return 0, err
	}
	if !bytes.Equal(magic, signature) {
		return 0, &types.InvalidFormatError{
			Path:   sr.Path(),
			Format: types.FormatXISF,
			Magic:  magic,
		}
	}

	headerSize, err := binary.ReadLE[uint32](sr, signatureLen, "header size")
	if err != nil {
		return 0, err
	}
	return headerSize, nil
}
