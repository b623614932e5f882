// Package types provides the core data structures shared by all format
// parsers: the File handle, the Metadata record and its builder, format
// detection, and the error/warning taxonomy.
package types

// File represents an opened astronomical image file with parsed metadata.
//
// Opening a file reads and parses only the header; pixel data is loaded
// lazily via the root package's LoadPixels. Structured metadata lives in
// Meta, and anything the mapper did not model is preserved verbatim in
// Meta.RawHeaders.
type File struct {
	Path     string
	Format   Format
	Size     int64
	Meta     Metadata
	Warnings []Warning
}
