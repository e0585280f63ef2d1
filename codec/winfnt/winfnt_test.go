package winfnt

import (
	"bytes"
	"testing"

	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

func solidGlyph(w, h int, cp byte) font.Glyph {
	r := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r = r.Set(x, y, true)
		}
	}
	return font.New(r).WithCodepoint([]byte{cp})
}

func TestEncodeDecodeRoundTripV2(t *testing.T) {
	glyphs := []font.Glyph{solidGlyph(8, 8, 'A'), solidGlyph(8, 8, 'B')}
	props := font.NewProperties().
		Set(font.PropFamily, "Test").
		Set(font.PropAscent, "8").
		Set(font.PropDescent, "2").
		Set(font.PropLeading, "1").
		Set(font.PropPointSize, "12").
		Set(font.PropWeight, "bold").
		Set(font.PropDevice, "TestDevice").
		Set(font.PropSpacing, string(font.SpacingProportional))
	f := font.Build(glyphs, props)

	var buf bytes.Buffer
	w := container.NewWriter(&buf, "test.fnt")
	if err := Encode(w, f, EncodeOptions{Version: 0x200}); err != nil {
		t.Fatal(err)
	}

	s, err := container.Open(bytes.NewReader(buf.Bytes()), "test.fnt")
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", decoded.Len())
	}
	g, ok := decoded.GlyphByCodepoint([]byte{'A'})
	if !ok {
		t.Fatal("missing codepoint A")
	}
	if g.Raster.IsBlank() {
		t.Error("decoded glyph should be solid ink")
	}

	wantProps := map[font.PropertyName]string{
		font.PropFamily:    "Test",
		font.PropPointSize: "12",
		font.PropAscent:    "8",
		font.PropDescent:   "2",
		font.PropLeading:   "1",
		font.PropWeight:    "bold",
		font.PropDevice:    "TestDevice",
	}
	for name, want := range wantProps {
		got, ok := decoded.Property(name)
		if !ok || got != want {
			t.Errorf("Property(%s) = %q, %v; want %q", name, got, ok, want)
		}
	}
}

func TestEncodeDecodeRoundTripV3(t *testing.T) {
	glyphs := []font.Glyph{solidGlyph(8, 8, 'A'), solidGlyph(8, 8, 'B')}
	props := font.NewProperties().
		Set(font.PropFamily, "TestV3").
		Set(font.PropAscent, "8").
		Set(font.PropPointSize, "10").
		Set(font.PropSpacing, string(font.SpacingProportional))
	f := font.Build(glyphs, props)

	var buf bytes.Buffer
	w := container.NewWriter(&buf, "test3.fnt")
	if err := Encode(w, f, EncodeOptions{Version: 0x300}); err != nil {
		t.Fatal(err)
	}

	s, err := container.Open(bytes.NewReader(buf.Bytes()), "test3.fnt")
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", decoded.Len())
	}
	for _, cp := range []byte{'A', 'B'} {
		g, ok := decoded.GlyphByCodepoint([]byte{cp})
		if !ok {
			t.Fatalf("missing codepoint %c", cp)
		}
		if g.Raster.IsBlank() {
			t.Errorf("decoded glyph %c should be solid ink", cp)
		}
	}
	if got, ok := decoded.Property(font.PropFamily); !ok || got != "TestV3" {
		t.Errorf("Property(family) = %q, %v; want %q", got, ok, "TestV3")
	}
	if got, ok := decoded.Property(font.PropPointSize); !ok || got != "10" {
		t.Errorf("Property(point_size) = %q, %v; want %q", got, ok, "10")
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	data := make([]byte, 130)
	bitio.PutU16(data[0:], 0x0400, bitio.LittleEndian)
	s, err := container.Open(bytes.NewReader(data), "bad.fnt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(s, nil); err == nil {
		t.Fatal("expected UnsupportedVersionError")
	}
}

func TestLXUnpack1(t *testing.T) {
	// reps=3, len=2, bytes={0xAA, 0xBB}, then terminator reps=0
	page := []byte{3, 0, 2, 0, 0xAA, 0xBB, 0, 0}
	got := lxUnpack1(page)
	want := bytes.Repeat([]byte{0xAA, 0xBB}, 3)
	if !bytes.Equal(got, want) {
		t.Errorf("lxUnpack1 = %v, want %v", got, want)
	}
}

func TestLXUnpack2(t *testing.T) {
	for _, tc := range []struct {
		name string
		page []byte
		want []byte
	}{
		{
			// case 0 with a non-zero low byte: length1 = 4>>2 = 1, one
			// literal byte copied from right after the low control byte;
			// the 00 00 control word ends the stream.
			"single-literal",
			[]byte{0x04, 'A', 0x00, 0x00},
			[]byte{'A'},
		},
		{
			// case 0 with a zero low byte: high byte is a run length,
			// filled with the byte following the control word.
			"run-fill",
			[]byte{0x00, 0x03, 0xAA, 0x00, 0x00},
			[]byte{0xAA, 0xAA, 0xAA},
		},
		{
			// 3-byte literal block, then a case-2 back-reference copying
			// 3 bytes from offset -3.
			"backref",
			[]byte{0x0C, 'A', 'B', 'C', 0x32, 0x00, 0x00, 0x00},
			[]byte("ABCABC"),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := lxUnpack2(tc.page)
			if !bytes.Equal(got, tc.want) {
				t.Errorf("lxUnpack2 = %v, want %v", got, tc.want)
			}
		})
	}
}
