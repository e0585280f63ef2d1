package bmfont

import (
	"bytes"
	"testing"

	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

func TestTextDescriptorRoundTrip(t *testing.T) {
	d := descriptor{
		info:   info{face: "Test", size: 12, bold: true, padding: [4]int{1, 2, 3, 4}, spacing: [2]int{1, 1}},
		common: common{lineHeight: 16, base: 12, scaleW: 256, scaleH: 256, pages: 1},
		pages:  []string{"test_0.png"},
		chars: []charRec{
			{id: 'A', x: 0, y: 0, w: 8, h: 8, xadvance: 9, page: 0, chnl: 15},
		},
		kernings: []kerningRec{{first: 'A', second: 'V', amount: -1}},
	}
	got := parseText(writeText(d))
	if got.info.face != d.info.face || got.info.size != d.info.size || got.info.bold != d.info.bold {
		t.Fatalf("info round-trip = %+v, want %+v", got.info, d.info)
	}
	if len(got.chars) != 1 || got.chars[0].id != 'A' || got.chars[0].xadvance != 9 {
		t.Fatalf("chars round-trip = %+v", got.chars)
	}
	if len(got.kernings) != 1 || got.kernings[0].amount != -1 {
		t.Fatalf("kernings round-trip = %+v", got.kernings)
	}
}

func TestBinaryDescriptorRoundTrip(t *testing.T) {
	d := descriptor{
		info:   info{face: "Test", size: 12},
		common: common{lineHeight: 16, base: 12, scaleW: 256, scaleH: 256, pages: 1},
		pages:  []string{"test_0.png"},
		chars:  []charRec{{id: 'B', x: 1, y: 2, w: 4, h: 4, xadvance: 5, page: 0, chnl: 15}},
	}
	got, err := parseBinary(writeBinary(d))
	if err != nil {
		t.Fatal(err)
	}
	if got.info.face != "Test" || len(got.chars) != 1 || got.chars[0].id != 'B' {
		t.Fatalf("round-trip = %+v", got)
	}
}

func TestParseXMLDescriptor(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<font>
  <info face="Test" size="12" bold="1" italic="0" charset="" unicode="0" stretchH="100" smooth="1" aa="1" padding="1,2,3,4" spacing="1,1" outline="0"/>
  <common lineHeight="16" base="12" scaleW="256" scaleH="256" pages="1" packed="0" alphaChnl="0" redChnl="0" greenChnl="0" blueChnl="0"/>
  <pages>
    <page id="0" file="test_0.png"/>
  </pages>
  <chars count="1">
    <char id="65" x="0" y="0" width="8" height="8" xoffset="0" yoffset="0" xadvance="9" page="0" chnl="15"/>
  </chars>
  <kernings count="1">
    <kerning first="65" second="86" amount="-1"/>
  </kernings>
</font>`)
	d, err := parseXML(data)
	if err != nil {
		t.Fatal(err)
	}
	if d.info.face != "Test" || d.info.size != 12 || !d.info.bold {
		t.Fatalf("info = %+v", d.info)
	}
	if d.info.padding != [4]int{1, 2, 3, 4} {
		t.Fatalf("padding = %v", d.info.padding)
	}
	if len(d.pages) != 1 || d.pages[0] != "test_0.png" {
		t.Fatalf("pages = %v", d.pages)
	}
	if len(d.chars) != 1 || d.chars[0].id != 65 || d.chars[0].xadvance != 9 {
		t.Fatalf("chars = %+v", d.chars)
	}
	if len(d.kernings) != 1 || d.kernings[0].amount != -1 {
		t.Fatalf("kernings = %+v", d.kernings)
	}
}

func TestParseJSONDescriptor(t *testing.T) {
	data := []byte(`{
		"pages": ["test_0.png"],
		"chars": [{"id":65,"x":0,"y":0,"width":8,"height":8,"xoffset":0,"yoffset":0,"xadvance":9,"page":0,"chnl":15}],
		"info": {"face":"Test","size":12,"bold":1,"italic":0,"charset":"","unicode":0,"stretchH":100,"smooth":1,"aa":1,"padding":[1,2,3,4],"spacing":[1,1],"outline":0},
		"common": {"lineHeight":16,"base":12,"scaleW":256,"scaleH":256,"pages":1,"packed":0,"alphaChnl":0,"redChnl":0,"greenChnl":0,"blueChnl":0},
		"kernings": [{"first":65,"second":86,"amount":-1}]
	}`)
	d, err := parseJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if d.info.face != "Test" || d.info.size != 12 || !d.info.bold {
		t.Fatalf("info = %+v", d.info)
	}
	if d.info.padding != [4]int{1, 2, 3, 4} {
		t.Fatalf("padding = %v", d.info.padding)
	}
	if len(d.pages) != 1 || d.pages[0] != "test_0.png" {
		t.Fatalf("pages = %v", d.pages)
	}
	if len(d.chars) != 1 || d.chars[0].id != 65 || d.chars[0].xadvance != 9 {
		t.Fatalf("chars = %+v", d.chars)
	}
	if len(d.kernings) != 1 || d.kernings[0].amount != -1 {
		t.Fatalf("kernings = %+v", d.kernings)
	}
}

func TestDecodeAutodetectsXMLAndJSON(t *testing.T) {
	xmlData := []byte(`<font><info face="X" size="1" bold="0" italic="0" charset="" unicode="0" stretchH="100" smooth="0" aa="1" padding="0,0,0,0" spacing="0,0" outline="0"/><common lineHeight="1" base="1" scaleW="1" scaleH="1" pages="0" packed="0" alphaChnl="0" redChnl="0" greenChnl="0" blueChnl="0"/><pages></pages><chars count="0"></chars></font>`)
	s, err := container.Open(bytes.NewReader(xmlData), "x.fnt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(s, nil, nil); err != nil {
		t.Fatalf("XML descriptor with no pages: %v", err)
	}

	jsonData := []byte(`{"pages":[],"chars":[],"info":{"face":"X","size":1},"common":{"lineHeight":1,"base":1}}`)
	s2, err := container.Open(bytes.NewReader(jsonData), "x.fnt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(s2, nil, nil); err != nil {
		t.Fatalf("JSON descriptor with no pages: %v", err)
	}
}

func TestPackGlyphsNoOverlap(t *testing.T) {
	rasters := []raster.Raster{
		raster.New(10, 10), raster.New(20, 5), raster.New(5, 30), raster.New(40, 40),
	}
	results := packGlyphs(rasters, 64)
	for i := range results {
		for j := i + 1; j < len(results); j++ {
			a, b := results[i], results[j]
			if a.page != b.page {
				continue
			}
			if a.x < b.x+b.w && b.x < a.x+a.w && a.y < b.y+b.h && b.y < a.y+a.h {
				t.Fatalf("glyphs %d and %d overlap: %+v, %+v", i, j, a, b)
			}
		}
	}
}

// memContainer is a minimal in-memory container.Container for tests.
type memContainer struct{ files map[string][]byte }

func (m *memContainer) Members() []string {
	names := make([]string, 0, len(m.files))
	for k := range m.files {
		names = append(names, k)
	}
	return names
}

func (m *memContainer) Open(name string) (*container.Stream, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, &notFoundErr{name}
	}
	return container.Open(bytes.NewReader(data), name)
}

func (m *memContainer) Close() error { return nil }

type notFoundErr struct{ name string }

func (e *notFoundErr) Error() string { return "not found: " + e.name }

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := raster.New(6, 6)
	for y := 1; y < 5; y++ {
		for x := 1; x < 5; x++ {
			r = r.Set(x, y, true)
		}
	}
	glyphs := []font.Glyph{font.New(r).WithCodepoint([]byte{'X'})}
	props := font.NewProperties().
		Set(font.PropFamily, "SheetFont").
		Set(font.PropAscent, "6").
		Set(font.PropDescent, "2")
	f := font.Build(glyphs, props)

	descBytes, pages, err := EncodePages(f, EncodeOptions{PageSize: 32, PagePrefix: "sheet"})
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}

	mc := &memContainer{files: map[string][]byte{
		"sheet.fnt":   descBytes,
		"sheet_0.png": pages[0],
	}}
	s, err := mc.Open("sheet.fnt")
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(s, mc, nil)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := decoded.GlyphByCodepoint([]byte{'X'})
	if !ok {
		t.Fatal("missing codepoint X after round trip")
	}
	if g.Raster.IsBlank() {
		t.Error("decoded glyph should carry ink")
	}
}
