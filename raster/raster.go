// Package raster implements the rectangular monochrome pixel matrix that
// underlies every glyph in this module, along with
// the crop/expand/concatenate/transpose/mirror operations and the
// configurable-alignment byte serialization every binary codec needs.
//
// A Raster is a value type: every operation returns a new Raster rather
// than mutating the receiver, the same copy-on-modify discipline Glyph
// and Font follow.
package raster

import (
	"fmt"

	"bitfont.dev/go/bitfont/bitio"
)

// Raster is a width x height matrix of 0/1 pixels, stored one byte per
// pixel for simplicity of indexing; on-disk packing only happens at the
// edges (ToBytes/FromBytes).
//
// Invariants: Width, Height >= 0; len(rows) == Height and len(row) == Width
// for every row. The zero Raster is the empty (0x0) raster and is legal.
type Raster struct {
	width, height int
	// rows[y][x], true = ink.
	rows [][]bool
}

// New returns a blank (all-paper) raster of the given size.
func New(width, height int) Raster {
	if width < 0 || height < 0 {
		panic("raster: negative dimension")
	}
	rows := make([][]bool, height)
	for y := range rows {
		rows[y] = make([]bool, width)
	}
	return Raster{width: width, height: height, rows: rows}
}

// FromRows builds a Raster from row-major boolean data. Every row must
// have the same length; the function panics otherwise.
func FromRows(rows [][]bool) Raster {
	height := len(rows)
	width := 0
	if height > 0 {
		width = len(rows[0])
	}
	out := make([][]bool, height)
	for y, row := range rows {
		if len(row) != width {
			panic(fmt.Sprintf("raster: row %d has length %d, want %d", y, len(row), width))
		}
		out[y] = append([]bool(nil), row...)
	}
	return Raster{width: width, height: height, rows: out}
}

// Width returns the raster's width in pixels.
func (r Raster) Width() int { return r.width }

// Height returns the raster's height in pixels.
func (r Raster) Height() int { return r.height }

// Get returns the pixel at (x, y). Out-of-range coordinates return false.
func (r Raster) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return false
	}
	return r.rows[y][x]
}

// Set returns a copy of r with the pixel at (x, y) set to v.
func (r Raster) Set(x, y int, v bool) Raster {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return r
	}
	out := r.clone()
	out.rows[y][x] = v
	return out
}

func (r Raster) clone() Raster {
	rows := make([][]bool, r.height)
	for y, row := range r.rows {
		rows[y] = append([]bool(nil), row...)
	}
	return Raster{width: r.width, height: r.height, rows: rows}
}

// Equal reports whether two rasters have the same dimensions and pixels.
func (r Raster) Equal(other Raster) bool {
	if r.width != other.width || r.height != other.height {
		return false
	}
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			if r.rows[y][x] != other.rows[y][x] {
				return false
			}
		}
	}
	return true
}

// IsBlank reports whether the raster has no ink pixels at all.
func (r Raster) IsBlank() bool {
	for _, row := range r.rows {
		for _, v := range row {
			if v {
				return false
			}
		}
	}
	return true
}

// InkBounds returns the minimal rectangle enclosing all ink (1) pixels, in
// (left, bottom, right, top) form with bottom/top measured from the
// raster bottom, the basis for Glyph.InkBounds. ok is false if the
// raster is blank.
func (r Raster) InkBounds() (left, bottom, right, top int, ok bool) {
	left, bottom, right, top = r.width, r.height, 0, 0
	found := false
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			if !r.rows[y][x] {
				continue
			}
			found = true
			if x < left {
				left = x
			}
			if x+1 > right {
				right = x + 1
			}
			// y=0 is the top row in our row-major storage; InkBounds is
			// expressed with the raster bottom at 0, so flip here.
			fromBottom := r.height - y
			if fromBottom > top {
				top = fromBottom
			}
			if fromBottom-1 < bottom {
				bottom = fromBottom - 1
			}
		}
	}
	if !found {
		return 0, 0, 0, 0, false
	}
	return left, bottom, right, top, true
}

// Crop returns the raster with l columns removed from the left, b rows
// from the bottom, r columns from the right and t rows from the top.
// Negative arguments are equivalent to Expand with the same magnitude.
func (r Raster) Crop(l, b, rr, t int) Raster {
	return r.Expand(-l, -b, -rr, -t, false)
}

// Expand grows the raster by l/b/r/t pixels on each side (negative values
// crop), filling new pixels with fill.
func (r Raster) Expand(l, b, rr, t int, fill bool) Raster {
	newWidth := r.width + l + rr
	newHeight := r.height + b + t
	if newWidth < 0 {
		newWidth = 0
	}
	if newHeight < 0 {
		newHeight = 0
	}
	out := New(newWidth, newHeight)
	for y := 0; y < newHeight; y++ {
		for x := 0; x < newWidth; x++ {
			out.rows[y][x] = fill
		}
	}
	// Source pixel (sx, sy) maps to destination (sx+l, sy+t) because row 0
	// is the top row and "t" grows the top.
	for sy := 0; sy < r.height; sy++ {
		dy := sy + t
		if dy < 0 || dy >= newHeight {
			continue
		}
		for sx := 0; sx < r.width; sx++ {
			dx := sx + l
			if dx < 0 || dx >= newWidth {
				continue
			}
			out.rows[dy][dx] = r.rows[sy][sx]
		}
	}
	return out
}

// Transpose swaps rows and columns.
func (r Raster) Transpose() Raster {
	out := New(r.height, r.width)
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			out.rows[x][y] = r.rows[y][x]
		}
	}
	return out
}

// Mirror flips the raster horizontally (left-right) if horizontal is true,
// otherwise vertically (top-bottom).
func (r Raster) Mirror(horizontal bool) Raster {
	out := r.clone()
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			if horizontal {
				out.rows[y][x] = r.rows[y][r.width-1-x]
			} else {
				out.rows[y][x] = r.rows[r.height-1-y][x]
			}
		}
	}
	return out
}

// ConcatHorizontal places other to the right of r; both must have equal
// height.
func ConcatHorizontal(r, other Raster) Raster {
	if r.height != other.height {
		panic("raster: ConcatHorizontal height mismatch")
	}
	out := New(r.width+other.width, r.height)
	for y := 0; y < r.height; y++ {
		copy(out.rows[y], r.rows[y])
		copy(out.rows[y][r.width:], other.rows[y])
	}
	return out
}

// ConcatVertical stacks other below r; both must have equal width.
func ConcatVertical(r, other Raster) Raster {
	if r.width != other.width {
		panic("raster: ConcatVertical width mismatch")
	}
	out := New(r.width, r.height+other.height)
	for y := 0; y < r.height; y++ {
		copy(out.rows[y], r.rows[y])
	}
	for y := 0; y < other.height; y++ {
		copy(out.rows[r.height+y], other.rows[y])
	}
	return out
}

// Align selects where padding bits land when a row's bit-width is not a
// multiple of 8.
type Align int

const (
	// AlignLeft packs the row starting at the most significant bit of the
	// first byte, padding with unused bits at the end of the last byte.
	AlignLeft Align = iota
	// AlignRight pads at the start of the first byte instead.
	AlignRight
	// AlignBit is serialized by ToBytes/FromBytes exactly like AlignLeft,
	// each row padded to whole bytes; callers doing strike work get
	// bit-level packing of cells within a strike row by serializing the
	// whole strike row as one raster.
	AlignBit
)

// ToBytes serializes the raster one row at a time, each row padded to a
// whole number of bytes per align, using stride bytes per row (0 means the
// minimal ceil(width/8)).
func (r Raster) ToBytes(align Align, stride int) []byte {
	minStride := bitio.CeilDiv(r.width, 8)
	if stride <= 0 {
		stride = minStride
	}
	out := make([]byte, stride*r.height)
	for y := 0; y < r.height; y++ {
		row := out[y*stride : (y+1)*stride]
		shift := 0
		if align == AlignRight {
			shift = stride*8 - r.width
		}
		for x := 0; x < r.width; x++ {
			if !r.rows[y][x] {
				continue
			}
			bitio.SetBit(row, x+shift, bitio.MSBFirst, true)
		}
	}
	return out
}

// FromBytes deserializes a raster of the given width/height from data
// packed stride bytes per row (0 means minimal ceil(width/8)).
func FromBytes(data []byte, width, height int, align Align, stride int) Raster {
	minStride := bitio.CeilDiv(width, 8)
	if stride <= 0 {
		stride = minStride
	}
	out := New(width, height)
	for y := 0; y < height; y++ {
		start := y * stride
		end := start + stride
		if end > len(data) {
			end = len(data)
		}
		if start >= len(data) {
			break
		}
		row := data[start:end]
		shift := 0
		if align == AlignRight {
			shift = stride*8 - width
		}
		for x := 0; x < width; x++ {
			out.rows[y][x] = bitio.GetBit(row, x+shift, bitio.MSBFirst)
		}
	}
	return out
}
