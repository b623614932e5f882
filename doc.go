// Package astrocore provides metadata extraction and quality analysis for
// astronomical image files.
//
// astrocore reads the formats produced by modern capture and processing
// software (XISF and FITS) with a unified API: one Metadata record
// regardless of container, lazy pixel loading, and frame quality metrics
// built on source extraction.
//
// # Quick Start
//
// Reading metadata from an image file:
//
//	file, err := astrocore.Open("light_0042.xisf")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer file.Close()
//
//	fmt.Printf("%s  %s  %.0fs\n",
//		file.Meta.Exposure.ObjectName,
//		file.Meta.Filter.Name,
//		*file.Meta.Exposure.ExposureTime)
//
// # Supported Formats
//
//   - XISF: PixInsight's container format, monolithic files with an
//     embedded XML header and attached image blocks
//   - FITS: the classic standard, primary HDU headers and image data
//
// # Philosophy
//
// Capture software in the field writes headers under pressure: half-run
// sequences, firmware quirks, nonstandard keywords. astrocore degrades
// gracefully rather than failing: malformed fields become warnings, a
// truncated image payload decodes to blank pixels, and everything the
// mapper did not model stays available in Meta.RawHeaders.
//
// # Architecture
//
// The public API lives in this package. Format parsers live under
// internal/ and register themselves at init time; the shared keyword
// table maps FITS-style header keywords into the Metadata record for
// both formats, so a keyword behaves identically whether it arrived in a
// FITS card or an XISF <FITSKeyword> element.
//
// Pixel access is lazy: Open reads only the header, and LoadPixels
// decodes the primary image on first use. The metrics package consumes
// those normalized samples for star detection and quality scoring.
package astrocore
