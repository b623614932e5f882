package xisf

import (
	"testing"
)

func TestHeaderText(t *testing.T) {
	t.Run("trims at first NUL", func(t *testing.T) {
		block := []byte("junk<?xml version=\"1.0\"?><xisf></xisf>\x00\x00padding")
		got, found := headerText(block)
		want := "<?xml version=\"1.0\"?><xisf></xisf>"
		if !found || got != want {
			t.Errorf("headerText = %q, %v; want %q, true", got, found, want)
		}
	})

	t.Run("no marker scans from position zero", func(t *testing.T) {
		got, found := headerText([]byte("<xisf></xisf>\x00pad"))
		if found {
			t.Error("marker reported found in marker-free block")
		}
		if got != "<xisf></xisf>" {
			t.Errorf("headerText = %q, want full block up to NUL", got)
		}
	})

	t.Run("invalid UTF-8 is replaced", func(t *testing.T) {
		block := []byte("<?xml?><a v=\"\xff\xfe\"/>")
		got, found := headerText(block)
		want := "<?xml?><a v=\"��\"/>"
		if !found || got != want {
			t.Errorf("headerText = %q, %v; want %q, true", got, found, want)
		}
	})
}

func TestAttrValue(t *testing.T) {
	text := `<Image geometry="3856:2180:1" sampleFormat="UInt16" location="attachment:28672:16812160">`

	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"geometry", "3856:2180:1", true},
		{"sampleFormat", "UInt16", true},
		{"location", "attachment:28672:16812160", true},
		{"colorSpace", "", false},
	}
	for _, tt := range tests {
		got, ok := attrValue(text, tt.name)
		if ok != tt.ok || got != tt.value {
			t.Errorf("attrValue(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.value, tt.ok)
		}
	}
}

func TestAttrValueEntitiesStayEncoded(t *testing.T) {
	// The scanner is lexical, not an XML parser: entity references in
	// values are returned verbatim.
	got, ok := attrValue(`<FITSKeyword name="OBJECT" value="M &amp; M"/>`, "value")
	if !ok || got != "M &amp; M" {
		t.Errorf("attrValue = %q, %v; want %q, true", got, ok, "M &amp; M")
	}
}

func TestSelfClosing(t *testing.T) {
	text := `<xisf>` +
		`<FITSKeyword name="OBJECT" value="'M 31'"/>` +
		`<FITSKeyword name="EXPTIME" value="300.0"/>` +
		`<Image geometry="4:4:1">` +
		`<FITSKeyword name="GAIN" value="100"/>` +
		`</Image></xisf>`

	var names []string
	for tag := range selfClosing(text, "<FITSKeyword ") {
		name, ok := attrValue(tag, "name")
		if !ok {
			t.Fatalf("tag without name: %q", tag)
		}
		names = append(names, name)
	}

	want := []string{"OBJECT", "EXPTIME", "GAIN"}
	if len(names) != len(want) {
		t.Fatalf("got %d elements, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("element %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSelfClosingRestartable(t *testing.T) {
	text := `<FITSKeyword name="A"/><FITSKeyword name="B"/>`
	seq := selfClosing(text, "<FITSKeyword ")

	for range 2 {
		count := 0
		for range seq {
			count++
		}
		if count != 2 {
			t.Fatalf("iteration yielded %d elements, want 2", count)
		}
	}
}

func TestOpenTags(t *testing.T) {
	text := `<Image id="main" geometry="4:4:1"><Image id="thumb" geometry="2:2:1">`

	var ids []string
	for tag := range openTags(text, "<Image ") {
		id, _ := attrValue(tag, "id")
		ids = append(ids, id)
	}
	if len(ids) != 2 || ids[0] != "main" || ids[1] != "thumb" {
		t.Errorf("ids = %v, want [main thumb]", ids)
	}
}

func TestPrimaryImageScoping(t *testing.T) {
	// An attribute on a later element must not leak into the primary
	// image scope.
	text := `<Image geometry="4:4:1"><Thumbnail geometry="2:2:1">`
	scope := primaryImage(text)
	got, ok := attrValue(scope, "geometry")
	if !ok || got != "4:4:1" {
		t.Errorf("scoped geometry = %q, %v; want 4:4:1, true", got, ok)
	}
}

func TestPrimaryImageFallbackToDocument(t *testing.T) {
	text := `<xisf geometry="8:8:1"></xisf>`
	scope := primaryImage(text)
	got, ok := attrValue(scope, "geometry")
	if !ok || got != "8:8:1" {
		t.Errorf("fallback geometry = %q, %v; want 8:8:1, true", got, ok)
	}
}

func TestPropertyValue(t *testing.T) {
	text := `<Property id="XISF:CreatorApplication" type="String">PixInsight 1.8.9</Property>` +
		`<Property id="XISF:CreationTime" type="TimePoint">2023-05-15T02:30:00Z</Property>`

	got, ok := propertyValue(text, "XISF:CreatorApplication")
	if !ok || got != "PixInsight 1.8.9" {
		t.Errorf("CreatorApplication = %q, %v", got, ok)
	}
	got, ok = propertyValue(text, "XISF:CreationTime")
	if !ok || got != "2023-05-15T02:30:00Z" {
		t.Errorf("CreationTime = %q, %v", got, ok)
	}
	if _, ok := propertyValue(text, "XISF:Missing"); ok {
		t.Error("expected missing property to report false")
	}
}

func TestPropertyValueIgnoresNonPropertyElements(t *testing.T) {
	// An element that carries the same id but no type attribute must not
	// satisfy the lookup or bleed into an unrelated </Property>.
	text := `<Table id="XISF:CreatorApplication"><Row>stale</Row></Table>` +
		`<Property id="XISF:CreatorApplication" type="String">PixInsight 1.8.9</Property>`

	got, ok := propertyValue(text, "XISF:CreatorApplication")
	if !ok || got != "PixInsight 1.8.9" {
		t.Errorf("CreatorApplication = %q, %v; want PixInsight 1.8.9, true", got, ok)
	}

	if _, ok := propertyValue(`<Table id="XISF:CreationTime"/>`, "XISF:CreationTime"); ok {
		t.Error("expected id without a type attribute to report false")
	}
}

func TestStripQuotes(t *testing.T) {
	tests := []struct{ in, want string }{
		{"'M 31'", "M 31"},
		{"''quoted''", "'quoted'"},
		{"plain", "plain"},
		{"'", "'"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripQuotes(tt.in); got != tt.want {
			t.Errorf("stripQuotes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
