package macfont

import (
	"testing"
)

func le16(v int) []byte { return []byte{byte(v), byte(v >> 8)} }

// buildIIgs assembles a minimal IIgs font file: a p-string name, the
// little-endian toolbox header, and the same one-glyph-plus-missing NFNT
// shape buildNFNT uses, stored little-endian with the width/offset table
// addressed through owTLoc.
func buildIIgs() []byte {
	var b []byte
	name := "Test"
	b = append(b, byte(len(name)))
	b = append(b, name...)

	b = append(b, le16(6)...)      // offset to NFNT, in words (= header size)
	b = append(b, le16(3)...)      // family id
	b = append(b, le16(1)...)      // style: bold
	b = append(b, le16(12)...)     // pointSize
	b = append(b, le16(0x0101)...) // version
	b = append(b, le16(8)...)      // fbrExtent

	b = append(b, le16(0)...)  // fontType (unused on IIgs)
	b = append(b, le16(65)...) // firstChar
	b = append(b, le16(65)...) // lastChar
	b = append(b, le16(8)...)  // widMax
	b = append(b, le16(0)...)  // kernMax
	b = append(b, le16(0)...)  // nDescent
	b = append(b, le16(16)...) // fRectWidth
	b = append(b, le16(8)...)  // fRectHeight
	// strike(16) + loc(6) + 10 remaining header bytes, in words
	b = append(b, le16(16)...) // owTLoc
	b = append(b, le16(6)...)  // ascent
	b = append(b, le16(2)...)  // descent
	b = append(b, le16(0)...)  // leading
	b = append(b, le16(1)...)  // rowWords

	for y := 0; y < 8; y++ {
		b = append(b, 0xAA, 0x00)
	}
	b = append(b, le16(0)...)
	b = append(b, le16(8)...)
	b = append(b, le16(16)...)
	b = append(b, 0, 8)
	b = append(b, 0, 8)
	b = append(b, 0xFF, 0xFF)

	return b
}

func TestDecodeIIgs(t *testing.T) {
	f, err := DecodeIIgs(buildIIgs(), nil)
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
	if fam, _ := f.Property("family"); fam != "Test" {
		t.Errorf("family = %q, want \"Test\"", fam)
	}
	if w, _ := f.Property("weight"); w != "bold" {
		t.Errorf("weight = %q, want \"bold\"", w)
	}
	if ps, _ := f.Property("point_size"); ps != "12" {
		t.Errorf("point_size = %q, want \"12\"", ps)
	}
	if enc, _ := f.Property("encoding"); enc != "mac-roman" {
		t.Errorf("encoding = %q, want \"mac-roman\"", enc)
	}
	if sf, _ := f.Property("source_format"); sf != "IIgs v1.1" {
		t.Errorf("source_format = %q, want \"IIgs v1.1\"", sf)
	}
}

func TestDecodeIIgsTruncatedHeader(t *testing.T) {
	data := buildIIgs()[:8]
	if _, err := DecodeIIgs(data, nil); err == nil {
		t.Fatal("expected a BadStructureError for a truncated header")
	}
}
