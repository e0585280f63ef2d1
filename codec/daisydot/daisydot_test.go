package daisydot

import (
	"bytes"
	"testing"

	"bitfont.dev/go/bitfont/container"
)

// buildDD3 assembles a Daisy-Dot III file covering every codepoint the
// format stores (DD3 has no space glyph of its own): each glyph is a
// single-column, non-doubled 16-row cell, followed by the final header.
func buildDD3() []byte {
	var buf bytes.Buffer
	buf.Write(dd3Magic)
	for range ddRange()[1:] {
		buf.WriteByte(1) // double=0, width=1
		buf.WriteByte(0xAA)
		buf.WriteByte(0x55)
	}
	buf.WriteByte(7) // height
	buf.WriteByte(5) // underline
	buf.WriteByte(4) // space_width
	return buf.Bytes()
}

func TestDecodeDD3(t *testing.T) {
	data := buildDD3()
	s, err := container.Open(bytes.NewReader(data), "test.nlq")
	if err != nil {
		t.Fatal(err)
	}
	f, err := Decode(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := len(ddRange()) // 90 stored glyphs plus the synthesized space
	if f.Len() != want {
		t.Fatalf("Len() = %d, want %d", f.Len(), want)
	}
	space, ok := f.GlyphByCodepoint([]byte{0x20})
	if !ok {
		t.Fatal("missing the synthesized space glyph")
	}
	if space.Raster.Width() != 4 {
		t.Errorf("space width = %d, want 4", space.Raster.Width())
	}
	g, ok := f.GlyphByCodepoint([]byte{byte(ddRange()[1])})
	if !ok {
		t.Fatalf("missing codepoint %d", ddRange()[1])
	}
	if g.Raster.Height() != space.Raster.Height() {
		t.Errorf("glyph height %d != space height %d after normalization", g.Raster.Height(), space.Raster.Height())
	}
	if g.Raster.IsBlank() {
		t.Error("decoded glyph should not be blank")
	}
	if asc, ok := f.Property("ascent"); !ok || asc != "4" {
		t.Errorf("ascent = %q, %v, want 4", asc, ok)
	}
	if desc, ok := f.Property("descent"); !ok || desc != "4" {
		t.Errorf("descent = %q, %v, want 4", desc, ok)
	}
}

func TestDecodeUnknownMagic(t *testing.T) {
	s, err := container.Open(bytes.NewReader([]byte("not a daisy file")), "bad.nlq")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(s, nil); err == nil {
		t.Fatal("expected an error for an unrecognized magic")
	}
}
