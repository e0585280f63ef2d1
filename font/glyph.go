// Package font implements the Glyph and Font value types: a labelled
// raster plus metrics, and an ordered collection of glyphs with a
// two-tier (set/derived) property bag. Both types are immutable by
// construction; every mutator returns a modified copy.
package font

import (
	"bytes"
	"sort"

	"bitfont.dev/go/bitfont/raster"
)

// Rect is an integer rectangle in raster pixel space, left/bottom
// inclusive and right/top exclusive, with the origin at the glyph
// baseline. It is the type returned by Glyph.InkBounds and Font's
// bounding_box property.
type Rect struct {
	Left, Bottom, Right, Top int
}

// IsZero reports whether the rectangle covers no area.
func (r Rect) IsZero() bool {
	return r.Left == 0 && r.Bottom == 0 && r.Right == 0 && r.Top == 0
}

// Extend enlarges r in place to also cover other.
func (r *Rect) Extend(other Rect) {
	if other.IsZero() {
		return
	}
	if r.IsZero() {
		*r = other
		return
	}
	if other.Left < r.Left {
		r.Left = other.Left
	}
	if other.Bottom < r.Bottom {
		r.Bottom = other.Bottom
	}
	if other.Right > r.Right {
		r.Right = other.Right
	}
	if other.Top > r.Top {
		r.Top = other.Top
	}
}

// Glyph is a labelled raster plus metrics. The zero value is
// a valid empty (0x0, unlabelled) glyph. All label fields are optional;
// Codepoint and Char are nil when unset, Tags is nil or empty when unset.
type Glyph struct {
	Raster raster.Raster

	Codepoint []byte
	Char      []rune
	Tags      []string

	LeftBearing  int
	RightBearing int
	ShiftUp      int

	// Kerning maps a following glyph's codepoint (as a byte string key,
	// see CodepointKey) to a signed advance adjustment applied when this
	// glyph is immediately followed by that codepoint.
	Kerning map[string]int
}

// New returns a glyph with the given raster and zero metrics.
func New(r raster.Raster) Glyph {
	return Glyph{Raster: r}
}

// CodepointKey turns a codepoint byte string into the map key used by
// Kerning and by Font's by_codepoint index.
func CodepointKey(codepoint []byte) string { return string(codepoint) }

// AdvanceWidth is left_bearing + raster.width + right_bearing.
func (g Glyph) AdvanceWidth() int {
	return g.LeftBearing + g.Raster.Width() + g.RightBearing
}

// InkBounds is the minimal enclosing rectangle of 1-pixels, in glyph
// space (raster-bottom at ShiftUp). ok is false for a blank raster.
func (g Glyph) InkBounds() (rect Rect, ok bool) {
	left, bottom, right, top, found := g.Raster.InkBounds()
	if !found {
		return Rect{}, false
	}
	return Rect{Left: left, Bottom: bottom + g.ShiftUp, Right: right, Top: top + g.ShiftUp}, true
}

// HasCodepoint reports whether g carries the given codepoint label.
func (g Glyph) HasCodepoint(codepoint []byte) bool {
	return g.Codepoint != nil && bytes.Equal(g.Codepoint, codepoint)
}

// HasChar reports whether g carries the given character label.
func (g Glyph) HasChar(ch []rune) bool {
	if len(g.Char) != len(ch) {
		return false
	}
	for i := range ch {
		if g.Char[i] != ch[i] {
			return false
		}
	}
	return true
}

// HasTag reports whether g carries the given tag.
func (g Glyph) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// WithRaster returns a copy of g with the raster replaced.
func (g Glyph) WithRaster(r raster.Raster) Glyph {
	out := g
	out.Raster = r
	return out
}

// WithCodepoint returns a copy of g with the codepoint label replaced.
// A nil codepoint clears the label.
func (g Glyph) WithCodepoint(codepoint []byte) Glyph {
	out := g
	if codepoint == nil {
		out.Codepoint = nil
	} else {
		out.Codepoint = append([]byte(nil), codepoint...)
	}
	return out
}

// WithChar returns a copy of g with the character label replaced.
func (g Glyph) WithChar(ch []rune) Glyph {
	out := g
	if ch == nil {
		out.Char = nil
	} else {
		out.Char = append([]rune(nil), ch...)
	}
	return out
}

// WithTag returns a copy of g with tag added to its tag set (a no-op if
// already present).
func (g Glyph) WithTag(tag string) Glyph {
	if g.HasTag(tag) {
		return g
	}
	out := g
	out.Tags = append(append([]string(nil), g.Tags...), tag)
	sort.Strings(out.Tags)
	return out
}

// WithBearings returns a copy of g with the left/right bearings replaced.
func (g Glyph) WithBearings(left, right int) Glyph {
	out := g
	out.LeftBearing, out.RightBearing = left, right
	return out
}

// WithShiftUp returns a copy of g with shift_up replaced.
func (g Glyph) WithShiftUp(shiftUp int) Glyph {
	out := g
	out.ShiftUp = shiftUp
	return out
}

// WithKerning returns a copy of g with the kerning amount for the given
// following codepoint set (or removed, if amount is nil).
func (g Glyph) WithKerning(codepoint []byte, amount *int) Glyph {
	out := g
	m := make(map[string]int, len(g.Kerning))
	for k, v := range g.Kerning {
		m[k] = v
	}
	key := CodepointKey(codepoint)
	if amount == nil {
		delete(m, key)
	} else {
		m[key] = *amount
	}
	out.Kerning = m
	return out
}
