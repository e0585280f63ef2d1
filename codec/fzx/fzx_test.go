package fzx

import (
	"bytes"
	"testing"

	"bitfont.dev/go/bitfont/container"
)

// buildFZX assembles a single-glyph FZX file: an 8-pixel-tall cell holding
// one glyph (codepoint 32, the space) whose bitmap immediately follows
// its 3-byte character-table entry.
func buildFZX() []byte {
	var buf bytes.Buffer
	buf.WriteByte(8) // height
	buf.WriteByte(1) // tracking
	buf.WriteByte(32) // lastchar: one glyph (32..32)

	// charEntry: offset=3 (the entry's own table position is 3, and the
	// bitmap starts right after the 3-byte table, i.e. at absolute 6),
	// kern=0, width-1=7 (width 8), shift=0.
	buf.WriteByte(0x03)
	buf.WriteByte(0x00)
	buf.WriteByte(0x07)

	buf.Write([]byte{0xFF, 0x81, 0x81, 0xFF, 0x81, 0x81, 0x81, 0x00})
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := buildFZX()
	s, err := container.Open(bytes.NewReader(data), "test.fzx")
	if err != nil {
		t.Fatal(err)
	}
	f, err := Decode(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", f.Len())
	}
	g, ok := f.GlyphByCodepoint([]byte{32})
	if !ok {
		t.Fatal("missing codepoint 32")
	}
	if g.Raster.Width() != 8 || g.Raster.Height() != 8 {
		t.Errorf("raster size = %dx%d, want 8x8", g.Raster.Width(), g.Raster.Height())
	}
	if g.Raster.IsBlank() {
		t.Error("decoded glyph should not be blank")
	}
	if enc, ok := f.Property("encoding"); !ok || enc != "zx-spectrum" {
		t.Errorf("encoding = %q, %v, want zx-spectrum", enc, ok)
	}
}
