package amiga

import (
	"bytes"
	"testing"

	"bitfont.dev/go/bitfont/container"
)

func be16(v int) []byte { return []byte{byte(v >> 8), byte(v)} }
func be32(v int) []byte { return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)} }

// buildHunkFont assembles a minimal Amiga disk-font hunk file: a header
// hunk with an empty library-name list and a single-slot size table,
// followed by a code hunk holding one DiskFontHeader/TextFont and an 8x8
// single-row strike for codepoint 65 ('A') plus the trailing "default"
// glyph, both referencing the same location-table entry.
func buildHunkFont(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.Write(be32(hunkHeader))
	buf.Write(be32(0)) // empty library-name list: numLongs=0 terminates it
	buf.Write(be32(0)) // hunk table size (unread)
	buf.Write(be32(0)) // first hunk slot
	buf.Write(be32(0)) // last hunk slot: numSizes = 0-0+1 = 1
	buf.Write(be32(0)) // the one hunk's size entry (unread)
	buf.Write(be32(hunkCode))

	// DiskFontHeader/TextFont (118 bytes).
	buf.Write(make([]byte, 8))  // dfh_NextSegment, dfh_ReturnCode
	buf.Write(make([]byte, 14)) // Node
	buf.Write(make([]byte, 2))  // dfh_FileID
	buf.Write(be16(3))          // dfh_Revision
	buf.Write(make([]byte, 4))  // dfh_Segment
	name := make([]byte, maxFontName)
	copy(name, "TestFont")
	buf.Write(name)
	buf.Write(make([]byte, 20)) // Message
	buf.Write(be16(8))          // tf_YSize
	buf.WriteByte(0)            // tf_Style
	buf.WriteByte(0)            // tf_Flags (not proportional)
	buf.Write(be16(8))          // tf_XSize
	buf.Write(be16(0))          // tf_Baseline
	buf.Write(be16(1))          // tf_BoldSmear
	buf.Write(be16(0))          // tf_Accessors
	buf.WriteByte(65)           // tf_LoChar
	buf.WriteByte(65)           // tf_HiChar
	buf.Write(be32(114))        // tf_CharData: base+114-114 = base
	buf.Write(be16(1))          // tf_Modulo
	buf.Write(be32(122))        // tf_CharLoc: base+122-114 = base+8
	buf.Write(be32(0))          // tf_CharSpace (absent)
	buf.Write(be32(0))          // tf_CharKern (absent)

	// strike: one row byte per scanline, 8 rows.
	buf.Write([]byte{0xFF, 0x81, 0x81, 0xFF, 0x81, 0x81, 0x81, 0x00})

	// location table: two entries (char 'A', then the trailing default),
	// both spanning the full 8-pixel-wide strike.
	buf.Write(be16(0))
	buf.Write(be16(8))
	buf.Write(be16(0))
	buf.Write(be16(8))

	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := buildHunkFont(t)
	s, err := container.Open(bytes.NewReader(data), "test.font")
	if err != nil {
		t.Fatal(err)
	}
	f, err := Decode(s, nil)
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
	if _, ok := f.GlyphByTag("default"); !ok {
		t.Error("missing the trailing default glyph")
	}
	if name, ok := f.Property("name"); !ok || name != "TestFont" {
		t.Errorf("name = %q, %v, want TestFont", name, ok)
	}
	if sp, ok := f.Property("spacing"); !ok || sp != "monospace" {
		t.Errorf("spacing = %q, %v, want monospace", sp, ok)
	}
}

func TestDecodeRejectsColorFont(t *testing.T) {
	data := buildHunkFont(t)
	// tf_Style is the single byte right after tf_Revision/tf_Segment/
	// dfh_Name/Message, at offset 7(hunkHeaderList)+... easiest to just
	// locate it by replacing the already-known style byte position.
	styleOffset := 7*4 + 8 + 14 + 2 + 2 + 4 + maxFontName + 20 + 2
	data[styleOffset] = fsfColorFont
	s, err := container.Open(bytes.NewReader(data), "test.font")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(s, nil); err == nil {
		t.Fatal("expected an UnsupportedFeatureError for a ColorFont")
	}
}
