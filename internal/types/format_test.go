package types

import (
	"bytes"
	"errors"
	"testing"
)

func TestDetectFormat_XISF(t *testing.T) {
	data := []byte("XISF0100" + "\x00\x00\x00\x00")

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.xisf")
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != FormatXISF {
		t.Errorf("DetectFormat() = %v, want FormatXISF", format)
	}
}

func TestDetectFormat_FITS(t *testing.T) {
	// First card of a conforming primary HDU: keyword padded to column 8.
	data := []byte("SIMPLE  =                    T")

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.fits")
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != FormatFITS {
		t.Errorf("DetectFormat() = %v, want FormatFITS", format)
	}
}

func TestDetectFormat_Unknown(t *testing.T) {
	data := []byte("NOTAFITSFILE")

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.bin")
	if format != FormatUnknown {
		t.Errorf("DetectFormat() = %v, want FormatUnknown", format)
	}
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("DetectFormat() error = %v, want UnsupportedFormatError", err)
	}
}

func TestDetectFormat_TooSmall(t *testing.T) {
	data := []byte("XISF")

	r := bytes.NewReader(data)
	if _, err := DetectFormat(r, int64(len(data)), "tiny.bin"); err == nil {
		t.Fatal("DetectFormat() error = nil for 4-byte file, want error")
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatXISF, "XISF"},
		{FormatFITS, "FITS"},
		{FormatUnknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.format.String(); got != tc.want {
			t.Errorf("Format(%d).String() = %q, want %q", int(tc.format), got, tc.want)
		}
	}
}

func TestFormatExtensions(t *testing.T) {
	if got := FormatFITS.Extensions(); len(got) != 3 || got[0] != ".fits" {
		t.Errorf("FormatFITS.Extensions() = %v, want [.fits .fit .fts]", got)
	}
	if got := FormatXISF.Extensions(); len(got) != 1 || got[0] != ".xisf" {
		t.Errorf("FormatXISF.Extensions() = %v, want [.xisf]", got)
	}
	if got := FormatUnknown.Extensions(); got != nil {
		t.Errorf("FormatUnknown.Extensions() = %v, want nil", got)
	}
}
