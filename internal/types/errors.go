package types

import "fmt"

// InvalidFormatError is returned when a file's magic bytes do not match
// the format being parsed. It is deliberately distinct from I/O errors:
// "this is not such a container" is not the same failure as "the stream
// is broken".
type InvalidFormatError struct {
	Path   string
	Format Format
	Magic  []byte
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("%s: invalid %s signature %q", e.Path, e.Format, e.Magic)
}

// UnsupportedFormatError is returned when no parser recognizes the file.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when file structure is invalid beyond
// recovery.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Warning represents a non-fatal issue encountered during parsing.
//
// Warnings indicate conditions that don't prevent metadata extraction but
// leave the record partially empty: an unparseable timestamp, a payload
// shorter than its declared geometry, a header attribute that could not
// be recovered. Warnings are collected on File.Warnings during parsing.
type Warning struct {
	// Stage where the warning occurred ("envelope", "header",
	// "metadata", "pixels", "attachments").
	Stage string

	// Message describes the issue.
	Message string

	// Offset is the file offset where the issue occurred (0 if not
	// applicable).
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
