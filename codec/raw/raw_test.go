package raw

import (
	"bytes"
	"testing"

	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

func TestDecodeSingleCellStrike(t *testing.T) {
	// Two 8x8 glyphs, one per row, left-aligned, MSB-first: an all-ink
	// 'A' cell followed by a blank cell.
	data := bytes.Repeat([]byte{0xFF}, 8)
	data = append(data, bytes.Repeat([]byte{0x00}, 8)...)
	s, err := container.Open(bytes.NewReader(data), "test.raw")
	if err != nil {
		t.Fatal(err)
	}
	fonts, err := Decode(s, DefaultOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(fonts) != 1 {
		t.Fatalf("got %d fonts, want 1", len(fonts))
	}
	f := fonts[0]
	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}
	g0, ok := f.GlyphByCodepoint([]byte{0})
	if !ok {
		t.Fatal("missing codepoint 0")
	}
	if g0.Raster.IsBlank() {
		t.Error("codepoint 0 should be solid ink")
	}
	g1, ok := f.GlyphByCodepoint([]byte{1})
	if !ok {
		t.Fatal("missing codepoint 1")
	}
	if !g1.Raster.IsBlank() {
		t.Error("codepoint 1 should be blank")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := raster.New(8, 8)
	for y := 0; y < 8; y++ {
		r = r.Set(y%8, y, true)
	}
	glyphs := []font.Glyph{font.New(r)}
	f := font.Build(glyphs, font.NewProperties())

	var buf bytes.Buffer
	w := container.NewWriter(&buf, "out.raw")
	opt := DefaultOptions()
	if err := Encode(w, f, opt); err != nil {
		t.Fatal(err)
	}

	s, err := container.Open(bytes.NewReader(buf.Bytes()), "out.raw")
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(s, opt, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded[0].Glyphs()[0].Raster
	if !got.Equal(r) {
		t.Errorf("round-tripped raster differs from original")
	}
}

func TestEncodeDecodeRoundTripStrikeGeometry(t *testing.T) {
	// Three 6x8 cells: the packed strike row is 18 pixels wide, so the
	// alignment choice actually moves bits around within the row bytes.
	glyphs := make([]font.Glyph, 3)
	for i := range glyphs {
		r := raster.New(6, 8)
		for y := 0; y < 8; y++ {
			r = r.Set((i+y)%6, y, true)
		}
		glyphs[i] = font.New(r).WithCodepoint([]byte{byte(i)})
	}
	f := font.Build(glyphs, font.NewProperties())

	for _, tc := range []struct {
		name        string
		align       raster.Align
		strikeCount int
		padding     int
	}{
		{"left-2", raster.AlignLeft, 2, 0},
		{"right-2", raster.AlignRight, 2, 0},
		{"bit-3", raster.AlignBit, 3, 0},
		{"left-2-padded", raster.AlignLeft, 2, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opt := DefaultOptions()
			opt.CellWidth, opt.CellHeight = 6, 8
			opt.Align = tc.align
			opt.StrikeCount = tc.strikeCount
			opt.Padding = tc.padding
			opt.Count = len(glyphs)

			var buf bytes.Buffer
			w := container.NewWriter(&buf, "strike.raw")
			if err := Encode(w, f, opt); err != nil {
				t.Fatal(err)
			}

			s, err := container.Open(bytes.NewReader(buf.Bytes()), "strike.raw")
			if err != nil {
				t.Fatal(err)
			}
			decoded, err := Decode(s, opt, nil)
			if err != nil {
				t.Fatal(err)
			}
			got := decoded[0].Glyphs()
			if len(got) != len(glyphs) {
				t.Fatalf("Len() = %d, want %d", len(got), len(glyphs))
			}
			for i := range glyphs {
				if !got[i].Raster.Equal(glyphs[i].Raster) {
					t.Errorf("glyph %d: raster differs after round trip", i)
				}
			}
		})
	}
}

func TestDecodeStrikeCount(t *testing.T) {
	opt := DefaultOptions()
	opt.CellWidth, opt.CellHeight = 8, 8
	opt.StrikeCount = 2
	row := bytes.Repeat([]byte{0xFF, 0x00}, 8)
	s, err := container.Open(bytes.NewReader(row), "strike.raw")
	if err != nil {
		t.Fatal(err)
	}
	fonts, err := Decode(s, opt, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fonts[0].Len() != 2 {
		t.Fatalf("Len() = %d, want 2", fonts[0].Len())
	}
}
