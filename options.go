package astrocore

import (
	"os"

	"github.com/rs/zerolog"
)

// Option configures behavior when opening image files.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	file, err := astrocore.Open("frame.xisf",
//	    astrocore.WithStrictParsing(),
//	    astrocore.WithLogger(logger),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening files.
type openOptions struct {
	strictParsing  bool // Fail on any warning
	ignoreWarnings bool // Suppress all warnings
	preloadPixels  bool // Decode pixels during Open instead of lazily
	logger         zerolog.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() *openOptions {
	return &openOptions{
		logger: defaultLogger(),
	}
}

// defaultLogger emits warnings and above to stderr. Library consumers
// that want structured output or different levels inject their own via
// WithLogger.
func defaultLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
}

// WithStrictParsing treats any warning as a fatal error.
//
// By default, astrocore continues parsing when it encounters issues like
// unparseable dates or malformed geometry strings, returning warnings
// alongside the parsed data. With strict parsing enabled, any warning
// becomes a fatal error.
func WithStrictParsing() Option {
	return func(o *openOptions) {
		o.strictParsing = true
	}
}

// WithIgnoreWarnings suppresses all warnings.
//
// By default, warnings about non-fatal issues are collected in
// File.Warnings. This option discards them.
func WithIgnoreWarnings() Option {
	return func(o *openOptions) {
		o.ignoreWarnings = true
	}
}

// WithPixelPreload decodes the image payload during Open instead of
// lazily on the first LoadPixels call.
//
// Use this when you know you'll need the pixels and want to fail fast if
// the payload cannot be read.
func WithPixelPreload() Option {
	return func(o *openOptions) {
		o.preloadPixels = true
	}
}

// WithLogger routes parser diagnostics through the given logger.
//
// The default logger writes warning-level events to stderr. Pass
// zerolog.Nop() to silence diagnostics entirely.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *openOptions) {
		o.logger = logger
	}
}
