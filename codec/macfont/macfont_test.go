package macfont

import (
	"testing"

	"bitfont.dev/go/bitfont/bitio"
)

func be16(v int) []byte { return []byte{byte(v >> 8), byte(v)} }

// buildNFNT assembles a minimal bare uncompressed NFNT: one coded glyph
// ('A', codepoint 65) plus the trailing missing-glyph slot, packed into a
// single 16-pixel-wide, 8-row strike (rowWords=1).
func buildNFNT() []byte {
	var b []byte
	b = append(b, be16(0x9000)...) // fontType: no color/compress/width/height tables
	b = append(b, be16(65)...)     // firstChar
	b = append(b, be16(65)...)     // lastChar
	b = append(b, be16(8)...)      // widMax
	b = append(b, be16(0)...)      // kernMax
	b = append(b, be16(0)...)      // nDescent
	b = append(b, be16(16)...)     // fRectWidth
	b = append(b, be16(8)...)      // fRectHeight
	b = append(b, be16(0)...)      // owTLoc (unused by this decoder)
	b = append(b, be16(6)...)      // ascent
	b = append(b, be16(2)...)      // descent
	b = append(b, be16(0)...)      // leading
	b = append(b, be16(1)...)      // rowWords

	// strike: 8 rows, 2 bytes each; left byte is 'A', right byte (the
	// missing glyph) stays blank.
	for y := 0; y < 8; y++ {
		b = append(b, 0xAA, 0x00)
	}
	// location table: 3 entries ('A' spans bits 0..7, missing spans 8..15,
	// terminator closes the missing glyph's width).
	b = append(b, be16(0)...)
	b = append(b, be16(8)...)
	b = append(b, be16(16)...)
	// width/offset table: 'A', missing, terminator.
	b = append(b, 0, 8)
	b = append(b, 0, 8)
	b = append(b, 0xFF, 0xFF)

	return b
}

func TestDecode(t *testing.T) {
	f, err := Decode(buildNFNT(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}
	g, ok := f.GlyphByCodepoint([]byte{65})
	if !ok {
		t.Fatal("missing codepoint 65")
	}
	if g.Raster.Width() != 8 || g.Raster.Height() != 8 {
		t.Errorf("raster size = %dx%d, want 8x8", g.Raster.Width(), g.Raster.Height())
	}
	if g.Raster.IsBlank() {
		t.Error("codepoint 65 should not be blank")
	}
	if _, ok := f.GlyphByTag("missing"); !ok {
		t.Error("missing the trailing \"missing\" glyph")
	}
	if dc, ok := f.Property("default_char"); !ok || dc != "missing" {
		t.Errorf("default_char = %q, %v, want the missing glyph's tag", dc, ok)
	}
}

func TestDecodeRejectsColorFont(t *testing.T) {
	data := buildNFNT()
	data[0], data[1] = be16(0x9000|ftColorTable)[0], be16(0x9000|ftColorTable)[1]
	if _, err := Decode(data, nil); err == nil {
		t.Fatal("expected an UnsupportedFeatureError for a colour NFNT")
	}
}

func TestEncodeProducesNonEmptyResource(t *testing.T) {
	f, err := Decode(buildNFNT(), nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) <= 26 {
		t.Fatalf("Encode produced %d bytes, want more than a bare header", len(data))
	}
	rec, err := readFontRec(data, bitio.BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	if rec.firstChar != 65 || rec.lastChar != 65 {
		t.Errorf("firstChar/lastChar = %d/%d, want 65/65", rec.firstChar, rec.lastChar)
	}
}
