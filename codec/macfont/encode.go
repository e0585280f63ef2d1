package macfont

import (
	"bytes"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

// Encode packs a font into a bare NFNT/FONT resource: each
// glyph is expanded to the font's vertical ink bounds, packed horizontally
// into a single word-aligned strike, and addressed through a location
// table and a width/offset table. Glyphs without a single-byte codepoint
// label are not storable and are skipped; codepoints in
// [firstChar,lastChar] with no glyph get the (0xFF,0xFF) sentinel.
func Encode(f *font.Font) ([]byte, error) {
	glyphs := f.Glyphs()

	byCode := make(map[int]font.Glyph)
	first, last := -1, -1
	var missing font.Glyph
	haveMissing := false
	for _, g := range glyphs {
		if g.HasTag("missing") {
			missing = g
			haveMissing = true
			continue
		}
		if len(g.Codepoint) != 1 {
			continue
		}
		cp := int(g.Codepoint[0])
		byCode[cp] = g
		if first == -1 || cp < first {
			first = cp
		}
		if last == -1 || cp > last {
			last = cp
		}
	}
	if first == -1 {
		return nil, &bitfont.ConstraintViolatedError{Format: formatName, Reason: "no single-byte-codepoint glyphs to encode"}
	}
	if !haveMissing {
		missing = font.New(raster.New(0, 0)).WithTag("missing")
	}

	top, bottom := 0, 0
	haveInk := false
	consider := func(g font.Glyph) {
		rect, ok := g.InkBounds()
		if !ok {
			return
		}
		if !haveInk || rect.Top > top {
			top = rect.Top
		}
		if !haveInk || rect.Bottom < bottom {
			bottom = rect.Bottom
		}
		haveInk = true
	}
	for _, g := range byCode {
		consider(g)
	}
	consider(missing)
	fRectHeight := top - bottom
	if fRectHeight <= 0 {
		fRectHeight = 1
	}

	// normalize vertically to [bottom, top); bearings and advance are
	// unaffected by this, only the stored bitmap rows.
	normalize := func(g font.Glyph) raster.Raster {
		padBottom := g.ShiftUp - bottom
		padTop := top - g.Raster.Height() - g.ShiftUp
		return g.Raster.Expand(0, padBottom, 0, padTop, false)
	}

	slots := last - first + 2 // coded range plus the trailing missing slot
	type cell struct {
		r       raster.Raster
		present bool
		offset  int
		width   int
	}
	cells := make([]cell, slots)
	kern := 0
	for cp := first; cp <= last; cp++ {
		idx := cp - first
		g, ok := byCode[cp]
		if !ok {
			continue
		}
		cells[idx] = cell{r: normalize(g), present: true}
		if g.LeftBearing < kern {
			kern = g.LeftBearing
		}
	}
	cells[slots-1] = cell{r: normalize(missing), present: true}
	if missing.LeftBearing < kern {
		kern = missing.LeftBearing
	}
	kern = -kern
	if kern < 0 {
		kern = 0
	}

	strike := raster.New(0, fRectHeight)
	locs := make([]int, slots+1)
	for i := range cells {
		locs[i] = strike.Width()
		if !cells[i].present {
			cells[i].offset, cells[i].width = 0xFF, 0xFF
			continue
		}
		var g font.Glyph
		if i == slots-1 {
			g = missing
		} else {
			g = byCode[first+i]
		}
		strike = raster.ConcatHorizontal(strike, cells[i].r)
		offset := g.LeftBearing + kern
		width := g.AdvanceWidth()
		if offset >= 0xFF || width >= 0xFF {
			return nil, &bitfont.ConstraintViolatedError{Format: formatName, Reason: "glyph advance or offset too large for an 8-bit NFNT field"}
		}
		cells[i].offset, cells[i].width = offset, width
	}
	locs[slots] = strike.Width()

	if pad := (16 - strike.Width()%16) % 16; pad > 0 {
		strike = strike.Expand(0, 0, pad, 0, false)
	}
	rowWords := strike.Width() / 16
	if rowWords == 0 {
		rowWords = 1
	}
	strikeBytes := strike.ToBytes(raster.AlignLeft, rowWords*2)

	locBytes := make([]byte, (slots+1)*2)
	for i, l := range locs {
		locBytes[i*2], locBytes[i*2+1] = byte(l>>8), byte(l)
	}
	// the width/offset table carries one extra (0xFF,0xFF) terminator slot.
	woBytes := make([]byte, (slots+1)*2)
	for i, c := range cells {
		woBytes[i*2], woBytes[i*2+1] = byte(c.offset), byte(c.width)
	}
	woBytes[slots*2], woBytes[slots*2+1] = 0xFF, 0xFF

	owTLoc := (len(strikeBytes) + len(locBytes) + 10) / 2
	if owTLoc > 0xFFFF {
		return nil, &bitfont.ConstraintViolatedError{Format: formatName, Reason: "width/offset table offset exceeds the 16-bit owTLoc field"}
	}

	maxWidth := 0
	for _, c := range cells {
		if c.width != 0xFF && c.width > maxWidth {
			maxWidth = c.width
		}
	}

	fontType := uint16(1<<15 | 1<<12) // reserved_15/reserved_12 per Apple's documented convention
	if sp, _ := f.Property(font.PropSpacing); sp == string(font.SpacingMonospace) || sp == string(font.SpacingCharacterCell) {
		fontType |= 1 << 13
	}

	ascent := top
	if v, ok := f.Property(font.PropAscent); ok {
		if n, ok := atoi(v); ok {
			ascent = n
		}
	}
	descent := -bottom
	if v, ok := f.Property(font.PropDescent); ok {
		if n, ok := atoi(v); ok {
			descent = n
		}
	}

	var buf bytes.Buffer
	u16 := func(v int) { buf.Write([]byte{byte(v >> 8), byte(v)}) }
	u16(int(fontType))
	u16(first)
	u16(last)
	u16(maxWidth)
	u16(-kern & 0xFFFF)
	u16(bottom & 0xFFFF)
	u16(strike.Width())
	u16(fRectHeight)
	u16(owTLoc)
	u16(ascent)
	u16(descent)
	u16(0) // leading: not tracked on Font, left at zero like an unhinted strike
	u16(rowWords)

	buf.Write(strikeBytes)
	buf.Write(locBytes)
	buf.Write(woBytes)
	return buf.Bytes(), nil
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}
