package xisf

import (
	"iter"
	"strings"
)

// The XISF header is XML, but the fields we need are recoverable with flat
// text scanning: attribute values, self-closing elements, and element bodies
// all have fixed lexical shapes. Scanning the header as a string avoids
// pulling a full XML parser into the hot path and tolerates the slightly
// malformed headers some acquisition tools emit. The trade-off is that
// entity references in values stay encoded (&amp; is returned literally)
// and a quoted string containing an embedded `"` truncates early.

// headerText recovers the XML header from the raw header block. The text
// starts at the first "<?xml" marker, or at position 0 when the marker is
// absent, and ends at the first NUL byte after it (writers pad the header
// block with NULs). Invalid UTF-8 sequences are replaced rather than
// rejected. The second result reports whether the marker was found;
// callers treat a marker-free block as best-effort input.
func headerText(block []byte) (string, bool) {
	text := string(block)
	start := strings.Index(text, "<?xml")
	found := start >= 0
	if found {
		text = text[start:]
	}
	if nul := strings.IndexByte(text, 0); nul >= 0 {
		text = text[:nul]
	}
	return strings.ToValidUTF8(text, "�"), found
}

// attrValue returns the value of the first `name="..."` occurrence in text.
// The match is purely lexical: it does not distinguish attributes of
// different elements, so callers that need element-scoped lookup should
// first narrow text to a single tag slice (see openTags).
func attrValue(text, name string) (string, bool) {
	pattern := name + `="`
	start := strings.Index(text, pattern)
	if start < 0 {
		return "", false
	}
	start += len(pattern)
	end := strings.IndexByte(text[start:], '"')
	if end < 0 {
		return "", false
	}
	return text[start : start+end], true
}

// selfClosing yields each self-closing element starting with prefix, as the
// full tag text including the trailing "/>". Occurrences without a closing
// "/>" terminate the sequence.
//
//	for tag := range selfClosing(text, "<FITSKeyword ") { ... }
func selfClosing(text, prefix string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := text
		for {
			start := strings.Index(rest, prefix)
			if start < 0 {
				return
			}
			end := strings.Index(rest[start:], "/>")
			if end < 0 {
				return
			}
			tag := rest[start : start+end+2]
			if !yield(tag) {
				return
			}
			rest = rest[start+end+2:]
		}
	}
}

// openTags yields each opening tag starting with prefix, as the tag text
// including the trailing ">". Used to scope attribute lookups to a single
// element, typically the first <Image> tag.
func openTags(text, prefix string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := text
		for {
			start := strings.Index(rest, prefix)
			if start < 0 {
				return
			}
			end := strings.IndexByte(rest[start:], '>')
			if end < 0 {
				return
			}
			tag := rest[start : start+end+1]
			if !yield(tag) {
				return
			}
			rest = rest[start+end+1:]
		}
	}
}

// propertyValue returns the text body of the first <Property> element with
// the given id, i.e. the content between the closing ">" of the opening tag
// and the next "</Property>", trimmed of surrounding whitespace. The match
// anchors on the id attribute immediately followed by a type attribute, so
// non-Property elements that happen to carry the same id are skipped.
// Properties stored as attributes rather than element bodies are not matched.
func propertyValue(text, id string) (string, bool) {
	pattern := `id="` + id + `" type="`
	start := strings.Index(text, pattern)
	if start < 0 {
		return "", false
	}
	rest := text[start:]
	open := strings.IndexByte(rest, '>')
	if open < 0 {
		return "", false
	}
	rest = rest[open+1:]
	end := strings.Index(rest, "</Property>")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// primaryImage returns the first <Image> opening tag, or text itself when
// the header has none. Scoping geometry and sample format lookups to the
// primary image keeps multi-image headers from cross-contaminating.
func primaryImage(text string) string {
	for tag := range openTags(text, "<Image ") {
		return tag
	}
	return text
}

// stripQuotes removes one layer of enclosing single quotes, the quoting
// convention FITS keyword values carry into XISF headers. Only a single
// layer is removed; doubled quotes stay.
func stripQuotes(v string) string {
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v[1 : len(v)-1]
	}
	return v
}
