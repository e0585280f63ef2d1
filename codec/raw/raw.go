// Package raw implements the raw/strike bitmap codec: a
// bare array of packed glyph cells, or a "strike" of several glyphs
// packed side by side in each row, with no format-specific header at
// all. Every other parameter a real font file would give for free
// (cell size, row count, byte alignment) must be supplied by the
// caller.
package raw

import (
	"io"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     "raw",
		Suffixes: []string{".raw", ".bin"},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			return Decode(s, DefaultOptions(), d)
		},
	})
	bitfont.RegisterSaver(&bitfont.Saver{
		Name: "raw",
		Encode: func(w *container.Stream, fonts []*font.Font, d bitfont.Diagnostics) error {
			if len(fonts) == 0 {
				return nil
			}
			return Encode(w, fonts[0], DefaultOptions())
		},
	})
}

// Options carries the strike geometry the headerless format cannot
// describe itself.
type Options struct {
	CellWidth      int
	CellHeight     int
	Offset         int
	Padding        int
	Count          int // <=0 means "all that fit"
	StrikeCount    int
	StrikeBytes    int // -1 means "derive from StrikeCount*CellWidth/8"
	Align          raster.Align
	FirstCodepoint int
}

// DefaultOptions returns the zero-configuration defaults: an 8x8 cell,
// one glyph per strike row, left-aligned, starting at codepoint 0.
func DefaultOptions() Options {
	return Options{
		CellWidth:   8,
		CellHeight:  8,
		StrikeCount: 1,
		StrikeBytes: -1,
		Align:       raster.AlignLeft,
	}
}

func codepointBytes(cp int) []byte {
	if cp < 256 {
		return []byte{byte(cp)}
	}
	return []byte{byte(cp >> 8), byte(cp)}
}

// Decode skips Offset bytes, derives the strike geometry that was not
// given, then crops StrikeCount cells out of each strike row.
func Decode(s *container.Stream, opt Options, d bitfont.Diagnostics) ([]*font.Font, error) {
	if opt.CellWidth <= 0 || opt.CellHeight <= 0 {
		return nil, &bitfont.ConstraintViolatedError{Format: "raw", Reason: "cell size must be positive"}
	}
	if opt.StrikeCount <= 0 {
		opt.StrikeCount = 1
	}

	data, err := io.ReadAll(s)
	if err != nil {
		return nil, &bitfont.IoError{Op: "read", Err: err}
	}
	switch {
	case opt.Offset > 0 && opt.Offset <= len(data):
		data = data[opt.Offset:]
	case opt.Offset > len(data):
		data = nil
	}

	strikeBytes := opt.StrikeBytes
	if strikeBytes < 0 {
		strikeBytes = bitio.CeilDiv(opt.StrikeCount*opt.CellWidth, 8)
	}
	rowBytes := strikeBytes*opt.CellHeight + opt.Padding
	if rowBytes <= 0 {
		return nil, &bitfont.ConstraintViolatedError{Format: "raw", Reason: "derived row size is zero"}
	}

	nrows := (len(data) + rowBytes - 1) / rowBytes
	totalWanted := opt.Count
	if totalWanted > 0 {
		if wantedRows := bitio.CeilDiv(totalWanted, opt.StrikeCount); wantedRows < nrows {
			nrows = wantedRows
		}
	}

	glyphs := make([]font.Glyph, 0, nrows*opt.StrikeCount)
	codepoint := opt.FirstCodepoint
	strikeWidth := opt.StrikeCount * opt.CellWidth
	for row := 0; row < nrows; row++ {
		start := row * rowBytes
		want := strikeBytes * opt.CellHeight
		chunk := make([]byte, want)
		if start < len(data) {
			end := start + want
			if end > len(data) {
				end = len(data)
			}
			copy(chunk, data[start:end])
		}
		strikeRaster := raster.FromBytes(chunk, strikeWidth, opt.CellHeight, opt.Align, strikeBytes)
		for cell := 0; cell < opt.StrikeCount; cell++ {
			if totalWanted > 0 && len(glyphs) >= totalWanted {
				break
			}
			left := cell * opt.CellWidth
			cropped := raster.New(opt.CellWidth, opt.CellHeight)
			for y := 0; y < opt.CellHeight; y++ {
				for x := 0; x < opt.CellWidth; x++ {
					cropped = cropped.Set(x, y, strikeRaster.Get(left+x, y))
				}
			}
			g := font.New(cropped).WithCodepoint(codepointBytes(codepoint))
			glyphs = append(glyphs, g)
			codepoint++
		}
	}

	props := font.NewProperties().Set(font.PropSpacing, string(font.SpacingCharacterCell))
	f := font.Build(glyphs, props)
	return []*font.Font{f}, nil
}

// Encode writes f as strike rows of StrikeCount glyphs each, the
// inverse of Decode under the same geometry: glyph cells concatenate
// horizontally into each row (the last row padded with blank cells),
// each row serializes at the chosen alignment, and Padding zero bytes
// separate consecutive rows.
func Encode(w *container.Stream, f *font.Font, opt Options) error {
	glyphs := f.Glyphs()
	if len(glyphs) == 0 {
		return nil
	}
	cw, ch := opt.CellWidth, opt.CellHeight
	if cw <= 0 || ch <= 0 {
		cw, ch = glyphs[0].Raster.Width(), glyphs[0].Raster.Height()
	}
	strikeCount := opt.StrikeCount
	if strikeCount <= 0 {
		strikeCount = 1
	}

	cell := func(g font.Glyph) raster.Raster {
		r := g.Raster
		if r.Width() != cw || r.Height() != ch {
			r = r.Expand(0, 0, cw-r.Width(), ch-r.Height(), false)
		}
		return r
	}

	var pad []byte
	if opt.Padding > 0 {
		pad = make([]byte, opt.Padding)
	}
	for start := 0; start < len(glyphs); start += strikeCount {
		row := cell(glyphs[start])
		for i := 1; i < strikeCount; i++ {
			next := raster.New(cw, ch)
			if start+i < len(glyphs) {
				next = cell(glyphs[start+i])
			}
			row = raster.ConcatHorizontal(row, next)
		}
		b := row.ToBytes(opt.Align, bitio.CeilDiv(row.Width(), 8))
		if _, err := w.Write(b); err != nil {
			return &bitfont.IoError{Op: "write", Err: err}
		}
		if len(pad) > 0 {
			if _, err := w.Write(pad); err != nil {
				return &bitfont.IoError{Op: "write", Err: err}
			}
		}
	}
	return nil
}
