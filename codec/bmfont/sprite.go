package bmfont

import (
	"image"
	"image/color"

	// Decoders registered for side effect so spritesheet pages can be
	// any of the common image formats, sniffed by magic.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

// extractGlyphs reads each page image and crops one raster per char
// record, then rebases the horizontal metrics to a common origin.
//
// Ink-vs-paper is decided with the char's channel mask plus a
// luminance+alpha threshold. The exact per-channel disposition semantics
// when a common block mixes glyph/outline/zero/one across R/G/B/A are
// not well defined by AngelCode's own tooling; the threshold agrees with
// the distinct-tuple reconstruction whenever a page uses a single glyph
// channel, the overwhelmingly common case in practice.
func extractGlyphs(d descriptor, pages []image.Image) ([]font.Glyph, error) {
	// bearings are rebased so the smallest xoffset (and smallest trailing
	// gap) across the font becomes zero; the remainder is per-glyph padding.
	minXoff, minTrail := 0, 0
	first := true
	for _, c := range d.chars {
		trail := c.xadvance - c.xoffset - c.w
		if first || c.xoffset < minXoff {
			minXoff = c.xoffset
		}
		if first || trail < minTrail {
			minTrail = trail
		}
		first = false
	}

	glyphs := make([]font.Glyph, 0, len(d.chars))
	for _, c := range d.chars {
		if c.page < 0 || c.page >= len(pages) {
			continue
		}
		r := cropGlyph(pages[c.page], c, d.common)
		left := c.xoffset - minXoff
		right := (c.xadvance - c.xoffset - c.w) - minTrail
		r = r.Expand(left, 0, right, 0, false)
		shiftUp := d.common.base - (c.yoffset + c.h)
		g := font.New(r).
			WithCodepoint(codepointBytesFromID(c.id)).
			WithShiftUp(shiftUp).
			WithBearings(minXoff, minTrail)
		glyphs = append(glyphs, g)
	}
	return glyphs, nil
}

func codepointBytesFromID(id int) []byte {
	if id < 256 {
		return []byte{byte(id)}
	}
	return []byte{byte(id >> 8), byte(id)}
}

// channelMask reports which of R,G,B,A this char's chnl bitmask selects,
// per AngelCode's convention (1=B, 2=G, 4=R, 8=A).
func channelMask(chnl int) (r, g, b, a bool) {
	if chnl == 0 {
		return true, true, true, true
	}
	return chnl&4 != 0, chnl&2 != 0, chnl&1 != 0, chnl&8 != 0
}

func cropGlyph(img image.Image, c charRec, cm common) raster.Raster {
	out := raster.New(c.w, c.h)
	if img == nil || c.w == 0 || c.h == 0 {
		return out
	}
	useR, useG, useB, useA := channelMask(c.chnl)
	bounds := img.Bounds()
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			px := bounds.Min.X + c.x + x
			py := bounds.Min.Y + c.y + y
			if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
				continue
			}
			out = out.Set(x, y, isInk(img.At(px, py), useR, useG, useB, useA))
		}
	}
	return out
}

func isInk(c color.Color, useR, useG, useB, useA bool) bool {
	r, g, b, a := c.RGBA()
	if useA && a < 0x8000 {
		return false
	}
	var sum, count uint32
	if useR {
		sum += r
		count++
	}
	if useG {
		sum += g
		count++
	}
	if useB {
		sum += b
		count++
	}
	if count == 0 {
		return a > 0x8000
	}
	avg := sum / count
	return avg < 0x8000
}
