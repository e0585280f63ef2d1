// Package daisydot implements the Daisy-Dot II/III NLQ dot-matrix
// printer font codec: two interleaved 8-row bitmap passes per glyph
// column (simulating a double-strike near-letter-quality printer head)
// reassembled into a single 16- or 32-row glyph bitmap.
package daisydot

import (
	"strconv"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

const formatName = "daisydot"

var (
	dd2Magic = []byte("DAISY-DOT NLQ FONT\x9b")
	dd3Magic = []byte("3\x9b")
)

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     formatName,
		Suffixes: []string{".nlq"},
		Magics: []bitfont.Magic{
			{0x44, 0x41, 0x49, 0x53, 0x59}, // "DAISY..."
			{0x33, 0x9b},                  // "3\x9b"
		},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			f, err := Decode(s, d)
			if err != nil {
				return nil, err
			}
			return []*font.Font{f}, nil
		},
	})
}

// ddRange is the codepoint sequence DD2/DD3 fonts store glyphs for:
// printable ASCII 32..124, skipping 96 ('`') and 123 ('{').
func ddRange() []int {
	out := make([]int, 0, 91)
	for cp := 32; cp <= 124; cp++ {
		if cp == 96 || cp == 123 {
			continue
		}
		out = append(out, cp)
	}
	return out
}

// Decode reads a Daisy-Dot II or III font, distinguished by magic.
func Decode(s *container.Stream, d bitfont.Diagnostics) (*font.Font, error) {
	d = diagOrDefault(d)
	data, err := readAll(s)
	if err != nil {
		return nil, err
	}
	switch {
	case hasPrefix(data, dd2Magic):
		return parseDaisy2(data, d)
	case hasPrefix(data, dd3Magic):
		return parseDaisy3(data, d)
	default:
		return nil, &bitfont.UnknownFormatError{Name: s.Name()}
	}
}

func hasPrefix(data, prefix []byte) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if data[i] != b {
			return false
		}
	}
	return true
}

// buildPassMatrix interleaves two 8-bit-per-column dot-matrix passes into
// a single 16-row glyph bitmap: even rows come from pass0, odd rows from
// pass1, each column's high bit landing at the top.
func buildPassMatrix(pass0, pass1 []byte, width int) raster.Raster {
	r := raster.New(width, 16)
	for c := 0; c < width; c++ {
		var b0, b1 byte
		if c < len(pass0) {
			b0 = pass0[c]
		}
		if c < len(pass1) {
			b1 = pass1[c]
		}
		for k := 0; k < 8; k++ {
			r = r.Set(c, 2*k, b0&(0x80>>uint(k)) != 0)
			r = r.Set(c, 2*k+1, b1&(0x80>>uint(k)) != 0)
		}
	}
	return r
}

func slice(data []byte, start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(data) {
		end = len(data)
	}
	if end < start {
		return nil
	}
	return data[start:end]
}

func parseDaisy2(data []byte, d bitfont.Diagnostics) (*font.Font, error) {
	ofs := len(dd2Magic)
	var glyphs []font.Glyph
	for _, cp := range ddRange() {
		if ofs >= len(data) {
			return nil, &bitfont.BadStructureError{Format: formatName, Reason: "Daisy-Dot II glyph table truncated"}
		}
		width := int(data[ofs])
		if width < 1 || width > 19 {
			d.Warnf("daisydot: glyph width %d outside the expected 1-19 range, continuing", width)
		}
		pass0 := slice(data, ofs+1, ofs+width+1)
		pass1 := slice(data, ofs+width+1, ofs+2*width+1)
		r := buildPassMatrix(pass0, pass1, width)
		glyphs = append(glyphs, font.New(r).WithCodepoint([]byte{byte(cp)}))
		ofs += 2*width + 2 // +2: the width byte plus the trailing 0x9b separator
	}

	props := font.NewProperties().
		Set(font.PropRightBearing, "1").
		Set("daisydot.line_height", "20").
		Set(font.PropSourceFormat, "Daisy-Dot II")
	return font.Build(glyphs, props), nil
}

func parseDaisy3(data []byte, d bitfont.Diagnostics) (*font.Font, error) {
	ofs := len(dd3Magic)
	rng := ddRange()[1:] // DD3 does not store a space glyph
	var glyphs []font.Glyph
	for _, cp := range rng {
		if ofs >= len(data) {
			return nil, &bitfont.BadStructureError{Format: formatName, Reason: "Daisy-Dot III glyph table truncated"}
		}
		b := int(data[ofs])
		double, width := b/64 != 0, b%64
		ofs++
		if width < 1 || width > 32 {
			d.Warnf("daisydot: glyph width %d outside the expected 1-32 range, continuing", width)
		}
		pass0 := slice(data, ofs, ofs+width)
		pass1 := slice(data, ofs+width, ofs+2*width)
		matrix := buildPassMatrix(pass0, pass1, width)
		ofs += 2 * width
		if double {
			pass0b := slice(data, ofs, ofs+width)
			pass1b := slice(data, ofs+width, ofs+2*width)
			matrix = raster.ConcatVertical(matrix, buildPassMatrix(pass0b, pass1b, width))
			ofs += 2 * width
		}
		glyphs = append(glyphs, font.New(matrix).WithCodepoint([]byte{byte(cp)}))
	}

	if ofs+3 > len(data) {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "Daisy-Dot III trailer truncated"}
	}
	dd3Height := int(data[ofs])
	underline := int(data[ofs+1])
	spaceWidth := int(data[ofs+2])

	height := 0
	for _, g := range glyphs {
		if h := g.Raster.Height(); h > height {
			height = h
		}
	}
	for i, g := range glyphs {
		if g.Raster.Height() < height {
			glyphs[i] = g.WithRaster(g.Raster.Expand(0, height-g.Raster.Height(), 0, 0, false))
		}
	}

	space := font.New(raster.New(spaceWidth, height)).WithCodepoint([]byte{0x20})
	glyphs = append([]font.Glyph{space}, glyphs...)

	pixelSize := dd3Height + 1
	descent := dd3Height - underline + 2

	props := font.NewProperties().
		Set(font.PropRightBearing, "1").
		Set(font.PropSourceFormat, "Daisy-Dot III").
		Set(font.PropShiftUp, strconv.Itoa(pixelSize-height-descent)).
		Set(font.PropAscent, strconv.Itoa(pixelSize-descent)).
		Set(font.PropDescent, strconv.Itoa(descent)).
		Set("daisydot.underline_descent", "1").
		Set("daisydot.line_height", strconv.Itoa(pixelSize+4))
	return font.Build(glyphs, props), nil
}

func readAll(s *container.Stream) ([]byte, error) {
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := s.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			break
		}
	}
	return out, nil
}

func diagOrDefault(d bitfont.Diagnostics) bitfont.Diagnostics {
	if d == nil {
		return bitfont.DiscardDiagnostics{}
	}
	return d
}
