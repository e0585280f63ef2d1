// Package small gathers three minor DOS/CP-M bitmap formats too small to
// warrant their own package: the Kaypro/PCR 8x8 strike font, and two
// COM-executable "self-displaying" font stubs (REXXCOM Font Mania,
// PSFCOM) that the loader recognizes by magic but does not decode
// further.
//
// REXXCOM/PSFCOM decoding is left as an UnsupportedFeatureError stub:
// their glyph payload sits after a variable-length DOS COM executable
// stub, and guessing a fixed header size would silently corrupt glyph
// data rather than fail loudly.
package small

import (
	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

const (
	pcrFormatName     = "pcr"
	rexxcomFormatName = "rexxcom"
	psfcomFormatName  = "psfcom"
)

const (
	pcrHeaderSize = 256
	pcrCellWidth  = 8
	pcrCellHeight = 8
	pcrGlyphCount = 256
	pcrStrikeSize = pcrGlyphCount * pcrCellHeight // 2048, one row byte per glyph row
)

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     pcrFormatName,
		Suffixes: []string{".pcr"},
		Magics: []bitfont.Magic{
			{'K', 'P', 'G', 0x01, 0x02, 0x20, 0x01},
			{'K', 'P', 'G', 0x01, 0x01, 0x20, 0x01},
		},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			f, err := DecodePCR(s, d)
			if err != nil {
				return nil, err
			}
			return []*font.Font{f}, nil
		},
	})
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     rexxcomFormatName,
		Suffixes: []string{".com"},
		Magics:   []bitfont.Magic{{0xEB, 0x4D}, {0xEB, 0x4E}},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			return nil, &bitfont.UnsupportedFeatureError{Format: rexxcomFormatName, Feature: "REXXCOM Font Mania payload (only magic recognition is implemented)"}
		},
	})
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     psfcomFormatName,
		Suffixes: []string{".com"},
		Magics:   []bitfont.Magic{{0xEB, 0x04, 0xEB, 0xC3}},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			return nil, &bitfont.UnsupportedFeatureError{Format: psfcomFormatName, Feature: "PSFCOM payload (only magic recognition is implemented)"}
		},
	})
}

// DecodePCR reads a Kaypro/PCR bitmap font: a fixed 256-byte header
// (ignored beyond magic dispatch) followed by 256 glyphs of 8x8 pixels,
// one byte per row, at codepoints 0..255.
func DecodePCR(s *container.Stream, d bitfont.Diagnostics) (*font.Font, error) {
	d = diagOrDefault(d)
	data, err := readAll(s)
	if err != nil {
		return nil, err
	}
	if len(data) < pcrHeaderSize+pcrStrikeSize {
		return nil, &bitfont.BadStructureError{Format: pcrFormatName, Reason: "PCR file shorter than header plus strike"}
	}
	strike := data[pcrHeaderSize : pcrHeaderSize+pcrStrikeSize]

	glyphs := make([]font.Glyph, 0, pcrGlyphCount)
	for cp := 0; cp < pcrGlyphCount; cp++ {
		start := cp * pcrCellHeight
		cell := strike[start : start+pcrCellHeight]
		r := raster.FromBytes(cell, pcrCellWidth, pcrCellHeight, raster.AlignLeft, 1)
		glyphs = append(glyphs, font.New(r).WithCodepoint([]byte{byte(cp)}))
	}

	props := font.NewProperties().
		Set(font.PropSpacing, string(font.SpacingCharacterCell)).
		Set(font.PropSourceFormat, "PCR")
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
