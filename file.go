package astrocore

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dostergaard/astro-core/internal/registry"

	// Register format parsers.
	_ "github.com/dostergaard/astro-core/internal/fits"
	_ "github.com/dostergaard/astro-core/internal/xisf"
)

// File represents an opened astronomical image file with parsed metadata.
//
// File uses lazy loading: opening a file reads and parses only the
// header. Call LoadPixels to decode the image payload.
//
// Always call Close when done to release file resources:
//
//	file, err := astrocore.Open("light_0042.xisf")
//	if err != nil {
//		return err
//	}
//	defer file.Close()
type File struct {
	// Path to the image file
	Path string

	// Detected format (XISF, FITS)
	Format Format

	// File size in bytes
	Size int64

	// Parsed metadata (format-agnostic)
	Meta Metadata

	// Warnings encountered during parsing (non-fatal issues)
	Warnings []Warning

	// Internal state (unexported)
	reader io.ReaderAt
	parser registry.FormatParser
	opts   *openOptions

	// Cached pixel buffer (nil until LoadPixels called)
	pixels      []float32
	pixelWidth  int
	pixelHeight int
}

// Open opens an image file and reads its metadata.
//
// Supported formats: XISF, FITS
//
// Open performs lazy loading: the image payload is not read into memory,
// only the header is parsed. Use LoadPixels to decode the image.
//
// Malformed header fields do not fail Open; they are collected in
// File.Warnings and the affected metadata fields stay unset. Check
// File.Warnings when field-level fidelity matters.
//
// Options can be provided to customize parsing behavior:
//
//	file, err := astrocore.Open("frame.xisf",
//	    astrocore.WithStrictParsing(),
//	    astrocore.WithLogger(logger),
//	)
func Open(path string, opts ...Option) (*File, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}
	size := stat.Size()

	file, err := openReader(f, size, path, options)
	if err != nil {
		f.Close()
		return nil, err
	}

	// Keep the file handle for lazy pixel loading.
	file.reader = f

	if options.strictParsing && len(file.Warnings) > 0 {
		f.Close()
		return nil, fmt.Errorf("strict parsing failed: %s", file.Warnings[0].Message)
	}

	if options.preloadPixels {
		if _, _, _, err := file.LoadPixels(); err != nil {
			f.Close()
			return nil, fmt.Errorf("preload pixels: %w", err)
		}
	}

	return file, nil
}

// openReader opens from an io.ReaderAt (internal, for testing).
func openReader(r io.ReaderAt, size int64, path string, options *openOptions) (*File, error) {
	format, err := DetectFormat(r, size, path)
	if err != nil {
		return nil, err
	}

	parser := registry.Get(format)
	if parser == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no parser available for format %s", format),
		}
	}

	parsed, err := parser.Parse(r, size, path, options.logger)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	file := &File{
		Path:     path,
		Format:   format,
		Size:     size,
		Meta:     parsed.Meta,
		Warnings: parsed.Warnings,
		parser:   parser,
		opts:     options,
	}

	if options.ignoreWarnings {
		file.Warnings = nil
	}

	return file, nil
}

// Close releases resources held by the file.
//
// After Close is called, the File should not be used.
func (f *File) Close() error {
	if closer, ok := f.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// LoadPixels decodes the primary image into normalized float32 samples
// in [0, 1], returning the buffer with its width and height.
//
// Pixels are lazily loaded: they are not decoded during Open. The first
// call reads and caches the buffer; subsequent calls return the cached
// data. The returned slice is shared and must not be modified.
func (f *File) LoadPixels() ([]float32, int, int, error) {
	if f.pixels != nil {
		return f.pixels, f.pixelWidth, f.pixelHeight, nil
	}

	loader, ok := f.parser.(registry.PixelLoader)
	if !ok {
		return nil, 0, 0, &UnsupportedFormatError{
			Path:   f.Path,
			Reason: fmt.Sprintf("format %s does not support pixel loading", f.Format),
		}
	}

	pixels, width, height, err := loader.LoadPixels(f.reader, f.Size, f.Path, f.opts.logger)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("load pixels: %w", err)
	}

	f.pixels = pixels
	f.pixelWidth = width
	f.pixelHeight = height
	return pixels, width, height, nil
}

// OpenContext opens a file with context support for cancellation.
//
// This is a thin wrapper around Open that checks the context before
// starting; header parsing itself is a single fast read.
func OpenContext(ctx context.Context, path string, opts ...Option) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Open(path, opts...)
}

// OpenMany opens multiple image files concurrently.
//
// Files are parsed in parallel using up to runtime.NumCPU() goroutines.
// Results are returned in the same order as the input paths.
//
// If any file fails to open, all successfully opened files are closed
// and an error is returned.
func OpenMany(ctx context.Context, paths ...string) ([]*File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*File, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			file, err := Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, file := range results {
			if file != nil {
				file.Close()
			}
		}
		return nil, err
	}

	return results, nil
}
