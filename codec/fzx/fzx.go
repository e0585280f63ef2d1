// Package fzx implements the ZX Spectrum FZX proportional font codec: a
// 3-byte header (cell height, tracking, last codepoint) followed by a
// packed per-glyph table of 14-bit offset / 2-bit kern / 4-bit
// width-minus-one / 4-bit shift entries addressing a trailing bitstream
// of glyph bitmaps, one row per ceil(width/8) bytes.
package fzx

import (
	"strconv"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

const formatName = "fzx"

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     formatName,
		Suffixes: []string{".fzx"},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			f, err := Decode(s, d)
			if err != nil {
				return nil, err
			}
			return []*font.Font{f}, nil
		},
	})
}

const headerSize = 3 // height, tracking, lastchar
const charEntrySize = 3

const firstCodepoint = 32 // FZX glyphs start at the space character

type charEntry struct {
	offset int
	kern   int
	width  int // already +1, i.e. the real pixel width
	shift  int
}

func readCharEntry(b []byte) charEntry {
	u16 := int(b[0]) | int(b[1])<<8
	return charEntry{
		offset: u16 & 0x3FFF,
		kern:   (u16 >> 14) & 0x3,
		width:  int(b[2]&0x0F) + 1,
		shift:  int(b[2]>>4) & 0x0F,
	}
}

// Decode reads an FZX font.
func Decode(s *container.Stream, d bitfont.Diagnostics) (*font.Font, error) {
	d = diagOrDefault(d)
	data, err := readAll(s)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "FZX header truncated"}
	}
	height := int(data[0])
	tracking := int(int8(data[1]))
	lastChar := int(data[2])

	nChars := lastChar - firstCodepoint + 1
	if nChars <= 0 {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "FZX lastchar precedes the space character"}
	}
	tableEnd := headerSize + nChars*charEntrySize
	if tableEnd > len(data) {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "FZX character table truncated"}
	}

	entries := make([]charEntry, nChars)
	offsets := make([]int, nChars+1)
	for i := 0; i < nChars; i++ {
		off := headerSize + i*charEntrySize
		e := readCharEntry(data[off : off+charEntrySize])
		entries[i] = e
		// offsets are relative to the entry's own position in the table.
		offsets[i] = off + e.offset
	}
	offsets[nChars] = len(data)

	maxKern := 0
	for _, e := range entries {
		if e.kern > maxKern {
			maxKern = e.kern
		}
	}

	glyphs := make([]font.Glyph, 0, nChars)
	for i, e := range entries {
		start, end := offsets[i], offsets[i+1]
		if end < start || end > len(data) {
			return nil, &bitfont.BadStructureError{Format: formatName, Reason: "FZX glyph bitmap out of range"}
		}
		glyphBytes := data[start:end]
		stride := bitio.CeilDiv(e.width, 8)
		var rows int
		if stride > 0 {
			rows = len(glyphBytes) / stride
		}
		r := raster.FromBytes(glyphBytes, e.width, rows, raster.AlignLeft, stride)

		// Pad to the cell height/width: top=shift, bottom fills the rest
		// of the cell, left aligns all glyphs to the widest kern, right
		// only matters for glyphs whose bitmap decoded narrower than
		// width (i.e. empty glyphs).
		bottom := height - r.Height() - e.shift
		right := e.width - r.Width()
		left := maxKern - e.kern
		r = r.Expand(left, bottom, right, e.shift, false)

		g := font.New(r).WithCodepoint([]byte{byte(firstCodepoint + i)})
		glyphs = append(glyphs, g)
	}

	props := font.NewProperties().
		Set("fzx.offset", strconv.Itoa(-maxKern)+" 0").
		Set("fzx.tracking", strconv.Itoa(tracking)).
		Set(font.PropEncoding, "zx-spectrum").
		Set(font.PropSpacing, string(font.SpacingProportional))
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
