package astrocore_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	astrocore "github.com/dostergaard/astro-core"
)

// writeXISF writes a minimal monolithic XISF container: signature,
// little-endian header length, NUL-padded XML header at offset 12, then
// the image payload at offset 512.
func writeXISF(t *testing.T, name, header string, payload []byte) string {
	t.Helper()

	buf := &bytes.Buffer{}
	buf.WriteString("XISF0100")
	binary.Write(buf, binary.LittleEndian, uint32(500))
	buf.WriteString(header)
	buf.Write(make([]byte, 500-len(header)))
	buf.Write(payload)

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// writeFITS writes a single-HDU FITS file with the given header cards.
func writeFITS(t *testing.T, name string, cards []string, data []byte) string {
	t.Helper()

	buf := &bytes.Buffer{}
	for _, c := range cards {
		fmt.Fprintf(buf, "%-80s", c)
	}
	fmt.Fprintf(buf, "%-80s", "END")
	for buf.Len()%2880 != 0 {
		buf.WriteByte(' ')
	}
	buf.Write(data)

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func card(name, value string) string {
	return fmt.Sprintf("%-8s= %s", name, value)
}

const xisfHeader = `<?xml version="1.0"?><xisf>` +
	`<Image id="main" geometry="2:2:1" sampleFormat="UInt16" location="attachment:512:8">` +
	`<FITSKeyword name="OBJECT" value="'M 31'" comment=""/>` +
	`<FITSKeyword name="EXPTIME" value="300.0" comment=""/>` +
	`</Image></xisf>`

func xisfPayload() []byte {
	buf := &bytes.Buffer{}
	for _, v := range []uint16{0, 32768, 65535, 16384} {
		binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func TestOpenXISF(t *testing.T) {
	path := writeXISF(t, "frame.xisf", xisfHeader, xisfPayload())

	file, err := astrocore.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	if file.Format != astrocore.FormatXISF {
		t.Errorf("Format = %v, want XISF", file.Format)
	}
	if file.Meta.Exposure.ObjectName != "M 31" {
		t.Errorf("ObjectName = %q, want M 31", file.Meta.Exposure.ObjectName)
	}
	if file.Meta.Exposure.ExposureTime == nil || *file.Meta.Exposure.ExposureTime != 300 {
		t.Errorf("ExposureTime = %v, want 300", file.Meta.Exposure.ExposureTime)
	}
}

func TestOpenFITS(t *testing.T) {
	path := writeFITS(t, "frame.fits", []string{
		card("SIMPLE", "T"),
		card("BITPIX", "16"),
		card("NAXIS1", "2"),
		card("NAXIS2", "2"),
		card("OBJECT", "'NGC 7000'"),
	}, nil)

	file, err := astrocore.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	if file.Format != astrocore.FormatFITS {
		t.Errorf("Format = %v, want FITS", file.Format)
	}
	if file.Meta.Exposure.ObjectName != "NGC 7000" {
		t.Errorf("ObjectName = %q, want NGC 7000", file.Meta.Exposure.ObjectName)
	}
}

func TestOpenUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not an image at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := astrocore.Open(path)
	var unsupported *astrocore.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want UnsupportedFormatError", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := astrocore.Open(filepath.Join(t.TempDir(), "missing.xisf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadPixels(t *testing.T) {
	path := writeXISF(t, "frame.xisf", xisfHeader, xisfPayload())

	file, err := astrocore.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	pixels, w, h, err := file.LoadPixels()
	if err != nil {
		t.Fatalf("LoadPixels failed: %v", err)
	}
	if w != 2 || h != 2 {
		t.Fatalf("dimensions = %dx%d, want 2x2", w, h)
	}
	if pixels[2] != 1.0 {
		t.Errorf("full-scale pixel = %v, want 1.0", pixels[2])
	}

	// Second call returns the cached buffer.
	again, _, _, err := file.LoadPixels()
	if err != nil {
		t.Fatalf("cached LoadPixels failed: %v", err)
	}
	if &again[0] != &pixels[0] {
		t.Error("expected cached pixel buffer on second call")
	}
}

func TestStrictParsing(t *testing.T) {
	header := `<?xml version="1.0"?><xisf>` +
		`<Image geometry="2:2:1">` +
		`<FITSKeyword name="DATE-OBS" value="'not a date'" comment=""/>` +
		`</Image></xisf>`
	path := writeXISF(t, "bad-date.xisf", header, nil)

	if _, err := astrocore.Open(path, astrocore.WithStrictParsing()); err == nil {
		t.Fatal("expected strict parsing to fail on a warning")
	}

	// The same file opens fine without strict mode.
	file, err := astrocore.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()
	if len(file.Warnings) == 0 {
		t.Error("expected a date parse warning")
	}
}

func TestIgnoreWarnings(t *testing.T) {
	header := `<?xml version="1.0"?><xisf>` +
		`<Image geometry="2:2:1">` +
		`<FITSKeyword name="DATE-OBS" value="'not a date'" comment=""/>` +
		`</Image></xisf>`
	path := writeXISF(t, "bad-date.xisf", header, nil)

	file, err := astrocore.Open(path, astrocore.WithIgnoreWarnings())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	if len(file.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", file.Warnings)
	}
}

func TestOpenMany(t *testing.T) {
	paths := []string{
		writeXISF(t, "a.xisf", xisfHeader, xisfPayload()),
		writeFITS(t, "b.fits", []string{
			card("SIMPLE", "T"),
			card("BITPIX", "16"),
			card("NAXIS1", "2"),
			card("NAXIS2", "2"),
		}, nil),
		writeXISF(t, "c.xisf", xisfHeader, xisfPayload()),
	}

	files, err := astrocore.OpenMany(context.Background(), paths...)
	if err != nil {
		t.Fatalf("OpenMany failed: %v", err)
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	// Results keep input order.
	if files[0].Format != astrocore.FormatXISF || files[1].Format != astrocore.FormatFITS {
		t.Errorf("formats = %v, %v; want XISF, FITS", files[0].Format, files[1].Format)
	}
}

func TestOpenManyFailure(t *testing.T) {
	paths := []string{
		writeXISF(t, "a.xisf", xisfHeader, xisfPayload()),
		filepath.Join(t.TempDir(), "missing.xisf"),
	}

	if _, err := astrocore.OpenMany(context.Background(), paths...); err == nil {
		t.Fatal("expected error when one file is missing")
	}
}

func TestOpenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeXISF(t, "frame.xisf", xisfHeader, xisfPayload())
	if _, err := astrocore.OpenContext(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDetectFormat(t *testing.T) {
	xisf := bytes.NewReader(append([]byte("XISF0100"), make([]byte, 16)...))
	format, err := astrocore.DetectFormat(xisf, 24, "a.xisf")
	if err != nil || format != astrocore.FormatXISF {
		t.Errorf("DetectFormat = %v, %v; want XISF", format, err)
	}

	fits := bytes.NewReader([]byte("SIMPLE  =                    T"))
	format, err = astrocore.DetectFormat(fits, 30, "b.fits")
	if err != nil || format != astrocore.FormatFITS {
		t.Errorf("DetectFormat = %v, %v; want FITS", format, err)
	}
}
