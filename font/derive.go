package font

import (
	"fmt"
	"strconv"
)

// computeDerived fills f.derived with every default value this module
// implements a derivation rule for. No property's default may depend on
// itself transitively; the order below is topological: pixel_size
// depends on
// ascent/descent, which depend on bounding_box, which depends only on the
// glyphs themselves.
func (f *Font) computeDerived() {
	bbox, hasBBox := f.deriveBoundingBox()
	if hasBBox {
		f.derived[PropBoundingBox] = fmt.Sprintf("%d,%d,%d,%d", bbox.Left, bbox.Bottom, bbox.Right, bbox.Top)
	}

	ascent, hasAscent := f.props.get(PropAscent)
	descent, hasDescent := f.props.get(PropDescent)
	if !hasAscent && hasBBox {
		ascent = strconv.Itoa(bbox.Top)
		f.derived[PropAscent] = ascent
		hasAscent = true
	}
	if !hasDescent && hasBBox {
		descent = strconv.Itoa(-bbox.Bottom)
		f.derived[PropDescent] = descent
		hasDescent = true
	}
	if hasAscent && hasDescent {
		a, errA := strconv.Atoi(ascent)
		d, errD := strconv.Atoi(descent)
		if errA == nil && errD == nil {
			if _, set := f.props.get(PropPixelSize); !set {
				f.derived[PropPixelSize] = strconv.Itoa(a + d)
			}
		}
	}

	if v, ok := f.deriveSpacing(); ok {
		if _, set := f.props.get(PropSpacing); !set {
			f.derived[PropSpacing] = string(v)
		}
	}

	if avg, ok := f.deriveAverageAdvance(); ok {
		if _, set := f.props.get(PropAverageAdv); !set {
			f.derived[PropAverageAdv] = strconv.FormatFloat(avg, 'f', 2, 64)
		}
	}

	if v, ok := f.deriveRasterSize(); ok {
		if _, set := f.props.get(PropRasterSize); !set {
			f.derived[PropRasterSize] = v
		}
	}

	if h, ok := f.deriveCharHeight('X'); ok {
		if _, set := f.props.get(PropCapHeight); !set {
			f.derived[PropCapHeight] = strconv.Itoa(h)
		}
	}
	if h, ok := f.deriveCharHeight('x'); ok {
		if _, set := f.props.get(PropXHeight); !set {
			f.derived[PropXHeight] = strconv.Itoa(h)
		}
	}

	if _, set := f.props.get(PropDirection); !set {
		f.derived[PropDirection] = string(DirectionLTR)
	}
}

func (f *Font) deriveBoundingBox() (Rect, bool) {
	var bbox Rect
	found := false
	for _, g := range f.glyphs {
		r, ok := g.InkBounds()
		if !ok {
			continue
		}
		bbox.Extend(r)
		found = true
	}
	return bbox, found
}

// deriveSpacing classifies the font's spacing:
// proportional unless every glyph shares one advance width (or one
// of exactly two widths in a 1:2 ratio, "multi-cell" for double-width
// scripts), in which case character-cell (no bearings, raster width ==
// advance) or monospace (bearings present) applies.
func (f *Font) deriveSpacing() (Spacing, bool) {
	if len(f.glyphs) == 0 {
		return "", false
	}
	widths := map[int]bool{}
	allZeroBearing := true
	cellLike := true
	for _, g := range f.glyphs {
		adv := g.AdvanceWidth()
		widths[adv] = true
		if g.LeftBearing != 0 || g.RightBearing != 0 {
			allZeroBearing = false
		}
		if g.Raster.Width() != adv {
			cellLike = false
		}
	}
	switch len(widths) {
	case 1:
		if allZeroBearing && cellLike {
			return SpacingCharacterCell, true
		}
		return SpacingMonospace, true
	case 2:
		var vals []int
		for w := range widths {
			vals = append(vals, w)
		}
		lo, hi := vals[0], vals[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo > 0 && hi == 2*lo {
			return SpacingMultiCell, true
		}
	}
	return SpacingProportional, true
}

func (f *Font) deriveAverageAdvance() (float64, bool) {
	if len(f.glyphs) == 0 {
		return 0, false
	}
	total := 0
	for _, g := range f.glyphs {
		total += g.AdvanceWidth()
	}
	return float64(total) / float64(len(f.glyphs)), true
}

func (f *Font) deriveRasterSize() (string, bool) {
	if len(f.glyphs) == 0 {
		return "", false
	}
	w, h := f.glyphs[0].Raster.Width(), f.glyphs[0].Raster.Height()
	for _, g := range f.glyphs[1:] {
		if g.Raster.Width() > w {
			w = g.Raster.Width()
		}
		if g.Raster.Height() > h {
			h = g.Raster.Height()
		}
	}
	return fmt.Sprintf("%dx%d", w, h), true
}

func (f *Font) deriveCharHeight(ch rune) (int, bool) {
	g, ok := f.GlyphByChar([]rune{ch})
	if !ok {
		return 0, false
	}
	r, ok := g.InkBounds()
	if !ok {
		return 0, false
	}
	return r.Top - r.Bottom, true
}
