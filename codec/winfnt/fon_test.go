package winfnt

import (
	"bytes"
	"testing"

	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
)

// fntPayload encodes a two-glyph FNT v2 resource to embed in the
// synthetic containers below.
func fntPayload(t *testing.T) []byte {
	t.Helper()
	glyphs := []font.Glyph{solidGlyph(8, 8, 'A'), solidGlyph(8, 8, 'B')}
	props := font.NewProperties().
		Set(font.PropFamily, "Embedded").
		Set(font.PropAscent, "8").
		Set(font.PropSpacing, string(font.SpacingProportional))
	f := font.Build(glyphs, props)

	var buf bytes.Buffer
	w := container.NewWriter(&buf, "embedded.fnt")
	if err := Encode(w, f, EncodeOptions{Version: 0x200}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func putU16At(b []byte, off int, v uint16) { bitio.PutU16(b[off:], v, bitio.LittleEndian) }
func putU32At(b []byte, off int, v uint32) { bitio.PutU32(b[off:], v, bitio.LittleEndian) }

// buildNEFON wraps one FNT resource in a minimal MZ/NE executable: the
// resource table holds a single type-0x8008 block with one entry whose
// start/size are stored shifted by the table's alignment shift.
func buildNEFON(t *testing.T) []byte {
	t.Helper()
	fnt := fntPayload(t)

	const (
		neOff        = 0x40
		rsrcTableOff = 0x40 // relative to neOff
		shift        = 4
		payloadOff   = 0xA0
	)
	payloadSize := (len(fnt) + 15) &^ 15

	data := make([]byte, payloadOff+payloadSize)
	data[0], data[1] = 'M', 'Z'
	putU32At(data, 0x3c, neOff)
	data[neOff], data[neOff+1] = 'N', 'E'
	putU16At(data, neOff+0x24, rsrcTableOff)
	data[neOff+0x36] = 0 // Windows target

	base := neOff + rsrcTableOff
	putU16At(data, base, shift)
	putU16At(data, base+2, 0x8008) // RT_FONT
	putU16At(data, base+4, 1)      // count
	// 4 reserved bytes, then the entry: start, size, flags, id, reserved.
	entry := base + 10
	putU16At(data, entry, payloadOff>>shift)
	putU16At(data, entry+2, uint16(payloadSize>>shift))
	putU16At(data, entry+12, 0) // terminator type id

	copy(data[payloadOff:], fnt)
	return data
}

// buildPEFON wraps one FNT resource in a minimal MZ/PE executable: a
// single .rsrc section whose directory tree is type 0x08 -> name -> data
// entry, the data entry's RVA expressed relative to the section's
// virtual address.
func buildPEFON(t *testing.T) []byte {
	t.Helper()
	fnt := fntPayload(t)

	const (
		peOff      = 0x40
		rsrcRaw    = 0x80
		rsrcVA     = 0x1000
		payloadOff = 0xE0 // = rsrcRaw + 0x60
	)

	data := make([]byte, payloadOff+len(fnt))
	data[0], data[1] = 'M', 'Z'
	putU32At(data, 0x3c, peOff)
	copy(data[peOff:], []byte{'P', 'E', 0, 0})
	putU16At(data, peOff+0x06, 1) // one section
	putU16At(data, peOff+0x14, 0) // optional header size

	sect := peOff + 0x18
	copy(data[sect:], ".rsrc")
	putU32At(data, sect+8, 0x200)    // virtual size
	putU32At(data, sect+12, rsrcVA)  // virtual address
	putU32At(data, sect+20, rsrcRaw) // raw data pointer

	// root directory: one id entry of type 0x08 pointing at a subdirectory.
	putU16At(data, rsrcRaw+14, 1)
	putU32At(data, rsrcRaw+16, 0x08)
	putU32At(data, rsrcRaw+20, 0x80000000|0x20)

	// name-level directory: one leaf entry.
	sub := rsrcRaw + 0x20
	putU16At(data, sub+14, 1)
	putU32At(data, sub+16, 1)    // resource id
	putU32At(data, sub+20, 0x40) // leaf: data entry at rsrcRaw+0x40

	dataEntry := rsrcRaw + 0x40
	putU32At(data, dataEntry, rsrcVA+(payloadOff-rsrcRaw)) // RVA
	putU32At(data, dataEntry+4, uint32(len(fnt)))          // size

	copy(data[payloadOff:], fnt)
	return data
}

func decodeFONBytes(t *testing.T, data []byte) []*font.Font {
	t.Helper()
	s, err := container.Open(bytes.NewReader(data), "test.fon")
	if err != nil {
		t.Fatal(err)
	}
	fonts, err := DecodeFON(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	return fonts
}

func checkExtractedFont(t *testing.T, f *font.Font) {
	t.Helper()
	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}
	for _, cp := range []byte{'A', 'B'} {
		g, ok := f.GlyphByCodepoint([]byte{cp})
		if !ok {
			t.Fatalf("missing codepoint %c", cp)
		}
		if g.Raster.Width() != 8 || g.Raster.Height() != 8 {
			t.Errorf("glyph %c: raster size = %dx%d, want 8x8", cp, g.Raster.Width(), g.Raster.Height())
		}
		if g.Raster.IsBlank() {
			t.Errorf("glyph %c should be solid ink", cp)
		}
	}
	if fam, _ := f.Property(font.PropFamily); fam != "Embedded" {
		t.Errorf("family = %q, want \"Embedded\"", fam)
	}
}

func TestDecodeFONFromNE(t *testing.T) {
	fonts := decodeFONBytes(t, buildNEFON(t))
	if len(fonts) != 1 {
		t.Fatalf("got %d fonts, want 1", len(fonts))
	}
	checkExtractedFont(t, fonts[0])
}

func TestDecodeFONFromPE(t *testing.T) {
	fonts := decodeFONBytes(t, buildPEFON(t))
	if len(fonts) != 1 {
		t.Fatalf("got %d fonts, want 1", len(fonts))
	}
	checkExtractedFont(t, fonts[0])
}

func TestDecodeFONRejectsUnknownInner(t *testing.T) {
	data := make([]byte, 0x60)
	data[0], data[1] = 'M', 'Z'
	putU32At(data, 0x3c, 0x40)
	data[0x40], data[0x41] = 'X', 'X'
	s, err := container.Open(bytes.NewReader(data), "bad.fon")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeFON(s, nil); err == nil {
		t.Fatal("expected an error for an unrecognized inner magic")
	}
}
