package fits

import (
	"strings"

	"github.com/dostergaard/astro-core/internal/binary"
	"github.com/dostergaard/astro-core/internal/types"
)

// FITS headers are a sequence of 2880-byte blocks, each holding 36
// fixed-width 80-byte cards. The header ends at the END card; the data
// unit starts at the next block boundary.
const (
	blockSize = 2880
	cardSize  = 80
	cardsPer  = blockSize / cardSize

	// maxHeaderBlocks bounds the header scan so a corrupted file without
	// an END card cannot make us walk the whole stream.
	maxHeaderBlocks = 100
)

// Card is a single header record. Value has the FITS lexical quoting
// removed: strings lose their enclosing quotes and doubled quotes become
// single, logicals stay as "T"/"F", numbers stay textual.
type Card struct {
	Name    string
	Value   string
	Comment string
}

// readHeader parses the primary header and returns its cards along with
// the byte offset of the data unit. Commentary cards (COMMENT, HISTORY,
// blank keyword) are skipped.
func readHeader(sr *binary.SafeReader) ([]Card, int64, error) {
	var cards []Card
	r := binary.NewReader(sr, 0)

	for blockIdx := 0; blockIdx < maxHeaderBlocks; blockIdx++ {
		block, err := r.ReadBytes(blockSize, "header block")
		if err != nil {
			return nil, 0, err
		}

		for i := 0; i < cardsPer; i++ {
			card := block[i*cardSize : (i+1)*cardSize]
			name := strings.TrimRight(string(card[:8]), " ")

			if name == "END" {
				// The data unit starts at the next block boundary,
				// which is where the reader already sits.
				return cards, r.Offset(), nil
			}
			if name == "" || name == "COMMENT" || name == "HISTORY" {
				continue
			}

			// Keywords longer than eight characters appear either under
			// the HIERARCH convention or, from some acquisition tools,
			// simply run past column 8. Both carry their '=' later in
			// the card.
			var field string
			switch {
			case name == "HIERARCH":
				rest := string(card[9:])
				eq := strings.IndexByte(rest, '=')
				if eq < 0 {
					continue
				}
				name = strings.TrimSpace(rest[:eq])
				field = rest[eq+1:]
			case card[8] == '=':
				field = string(card[10:])
			default:
				full := string(card)
				eq := strings.IndexByte(full, '=')
				if eq < 0 {
					continue
				}
				candidate := strings.TrimSpace(full[:eq])
				if candidate == "" || strings.ContainsRune(candidate, ' ') {
					continue
				}
				name = candidate
				field = full[eq+1:]
			}
			if name == "" {
				continue
			}

			value, comment := parseCardValue(field)
			cards = append(cards, Card{Name: name, Value: value, Comment: comment})
		}
	}

	return nil, 0, &types.CorruptedFileError{
		Path:   sr.Path(),
		Reason: "no END card within header scan limit",
		Offset: maxHeaderBlocks * blockSize,
	}
}

// parseCardValue splits the value field from its inline comment. Quoted
// strings end at the first unescaped quote ('' is an escaped quote);
// unquoted values end at the first '/'.
func parseCardValue(field string) (value, comment string) {
	field = strings.TrimLeft(field, " ")

	if strings.HasPrefix(field, "'") {
		var b strings.Builder
		rest := field[1:]
		for {
			idx := strings.IndexByte(rest, '\'')
			if idx < 0 {
				b.WriteString(rest)
				rest = ""
				break
			}
			if idx+1 < len(rest) && rest[idx+1] == '\'' {
				b.WriteString(rest[:idx+1])
				rest = rest[idx+2:]
				continue
			}
			b.WriteString(rest[:idx])
			rest = rest[idx+1:]
			break
		}
		value = strings.TrimRight(b.String(), " ")
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			comment = strings.TrimSpace(rest[slash+1:])
		}
		return value, comment
	}

	if slash := strings.IndexByte(field, '/'); slash >= 0 {
		comment = strings.TrimSpace(field[slash+1:])
		field = field[:slash]
	}
	return strings.TrimSpace(field), comment
}
