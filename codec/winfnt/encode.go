package winfnt

import (
	"strconv"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/charmap"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

// EncodeOptions selects the target FNT revision: v2 by default, v3
// optionally.
type EncodeOptions struct {
	Version uint16 // 0x200 or 0x300
}

// Encode writes f as a Windows FNT resource. All glyph codepoints must
// fit in a byte; colour/ABC v3 variants are out of scope and rejected.
func Encode(w *container.Stream, f *font.Font, opt EncodeOptions) error {
	const format = "windows-fnt"
	if opt.Version != 0x200 && opt.Version != 0x300 {
		opt.Version = 0x200
	}

	glyphs := f.Glyphs()
	minCp, maxCp := 256, -1
	for _, g := range glyphs {
		if len(g.Codepoint) != 1 {
			return &bitfont.ConstraintViolatedError{Format: format, Reason: "all codepoints must fit in one byte"}
		}
		cp := int(g.Codepoint[0])
		if cp < minCp {
			minCp = cp
		}
		if cp > maxCp {
			maxCp = cp
		}
	}
	if maxCp < 0 {
		return &bitfont.ConstraintViolatedError{Format: format, Reason: "font has no glyphs"}
	}

	byCp := make(map[int]font.Glyph, len(glyphs))
	maxHeight := 0
	for _, g := range glyphs {
		byCp[int(g.Codepoint[0])] = g
		if h := g.Raster.Height(); h > maxHeight {
			maxHeight = h
		}
	}

	numChars := maxCp - minCp + 1
	entrySize := 4
	if opt.Version >= 0x300 {
		entrySize = 6
	}
	tableStart := 0x76
	if opt.Version >= 0x300 {
		tableStart = 0x94
	}

	// First pass: lay out column-major glyph bitmaps back-to-back to
	// learn each glyph's offset.
	type laidOut struct {
		width  int
		offset int
		cols   []byte
	}
	entries := make([]laidOut, numChars+1)
	cursor := tableStart + (numChars+1)*entrySize
	for i := 0; i < numChars; i++ {
		cp := minCp + i
		g, ok := byCp[cp]
		width := 0
		var cols []byte
		if ok {
			width = g.Raster.Width()
			cols = columnMajor(g.Raster, maxHeight)
		}
		entries[i] = laidOut{width: width, offset: cursor, cols: cols}
		cursor += len(cols)
	}
	entries[numChars] = laidOut{width: 0, offset: cursor} // sentinel

	spacing, _ := f.Property(font.PropSpacing)
	monospace := spacing == string(font.SpacingMonospace) || spacing == string(font.SpacingCharacterCell)

	name, _ := f.Property(font.PropFamily)
	deviceStr, _ := f.Property(font.PropDevice)
	facePos := cursor
	devicePos := facePos + len(name) + 1
	totalSize := devicePos + len(deviceStr) + 1

	buf := make([]byte, totalSize)
	bitio.PutU16(buf[0:], opt.Version, bitio.LittleEndian)
	bitio.PutU32(buf[2:], uint32(totalSize), bitio.LittleEndian)

	ascent := propInt(f, font.PropAscent, maxHeight)

	// Offsets below follow the canonical v2/v3 layout used throughout
	// this package's decoder (tableStart constants above).
	pixWidth := 0
	if monospace {
		for _, g := range glyphs {
			if w := g.Raster.Width(); w > pixWidth {
				pixWidth = w
			}
		}
	}
	writeFixedHeader(buf, opt.Version, f, numChars, minCp, maxCp, ascent, maxHeight, pixWidth, monospace, uint32(facePos), uint32(devicePos), uint32(tableStart))

	for i, e := range entries {
		p := tableStart + i*entrySize
		bitio.PutU16(buf[p:], uint16(e.width), bitio.LittleEndian)
		if entrySize == 6 {
			bitio.PutU32(buf[p+2:], uint32(e.offset), bitio.LittleEndian)
		} else {
			bitio.PutU16(buf[p+2:], uint16(e.offset), bitio.LittleEndian)
		}
	}
	for _, e := range entries[:numChars] {
		copy(buf[e.offset:], e.cols)
	}
	copy(buf[facePos:], name)
	copy(buf[devicePos:], deviceStr)

	if _, err := w.Write(buf); err != nil {
		return &bitfont.IoError{Op: "write", Err: err}
	}
	return nil
}

// columnMajor serializes a glyph the way FNT stores it: contiguous
// 8-pixel-wide byte columns of height bytes each, the bytewise transpose
// of the row-major packing.
func columnMajor(r raster.Raster, height int) []byte {
	if r.Height() < height {
		r = r.Expand(0, height-r.Height(), 0, 0, false)
	}
	stride := bitio.CeilDiv(r.Width(), 8)
	rows := r.ToBytes(raster.AlignLeft, stride)
	out := make([]byte, stride*height)
	for c := 0; c < stride; c++ {
		for y := 0; y < height; y++ {
			out[c*height+y] = rows[y*stride+c]
		}
	}
	return out
}

func propInt(f *font.Font, name font.PropertyName, def int) int {
	v, ok := f.Property(name)
	if !ok {
		return def
	}
	n, ok := atoiSafe(v)
	if !ok {
		return def
	}
	return n
}

func atoiSafe(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
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

// writeFixedHeader fills in the fixed-layout fields of the FNT header at
// their real on-disk offsets (dfVersion at 0x00, dfSize at 0x02,
// dfCopyright 60 bytes at 0x06, dfType at 0x42, then dfPoints at 0x44 and
// onward), the same sequence Decode reads at winfnt.go's header walk.
func writeFixedHeader(buf []byte, version uint16, f *font.Font, numChars, minCp, maxCp, ascent, maxHeight, pixWidth int, monospace bool, facePos, devicePos, tableStart uint32) {
	bitio.PutU16(buf[0x44:], uint16(propInt(f, font.PropPointSize, 0)), bitio.LittleEndian) // dfPoints
	bitio.PutU16(buf[0x46:], 96, bitio.LittleEndian)                                        // dfVertRes
	bitio.PutU16(buf[0x48:], 96, bitio.LittleEndian)                                        // dfHorizRes
	bitio.PutU16(buf[0x4a:], uint16(ascent), bitio.LittleEndian)                            // dfAscent
	bitio.PutU16(buf[0x4c:], uint16(propInt(f, font.PropDescent, 0)), bitio.LittleEndian)    // dfInternalLeading
	bitio.PutU16(buf[0x4e:], uint16(propInt(f, font.PropLeading, 0)), bitio.LittleEndian)    // dfExternalLeading

	weightName, _ := f.Property(font.PropWeight)
	weight := weightValues[weightName]
	if weight == 0 {
		weight = 400
	}
	bitio.PutU16(buf[0x53:], uint16(weight), bitio.LittleEndian) // dfWeight

	encName, hasEnc := f.Property(font.PropEncoding)
	charSet := charmap.ToWindowsCharSet(encName)
	// A charset the decoder could not map is kept as windows.dfCharSet
	// and written back unchanged.
	if raw, ok := f.Property("windows.dfCharSet"); ok && !hasEnc {
		if v, err := strconv.ParseUint(raw, 0, 8); err == nil {
			charSet = byte(v)
		}
	}
	buf[0x55] = charSet // dfCharSet

	bitio.PutU16(buf[0x56:], uint16(pixWidth), bitio.LittleEndian) // dfPixWidth
	bitio.PutU16(buf[0x58:], uint16(maxHeight), bitio.LittleEndian)                           // dfPixHeight

	pitchAndFamily := byte(0)
	if !monospace {
		pitchAndFamily |= 1
	}
	buf[0x5a] = pitchAndFamily // dfPitchAndFamily

	buf[0x5f] = byte(minCp)         // dfFirstChar
	buf[0x60] = byte(maxCp)         // dfLastChar
	buf[0x61] = 0                   // dfDefaultChar: offset from firstChar is 0
	buf[0x62] = byte(maxCp - minCp) // dfBreakChar

	bitio.PutU32(buf[0x65:], devicePos, bitio.LittleEndian) // dfDevice
	bitio.PutU32(buf[0x69:], facePos, bitio.LittleEndian)   // dfFace
	bitio.PutU32(buf[0x6d:], 0, bitio.LittleEndian)         // dfBitsPointer
	bitio.PutU32(buf[0x71:], tableStart, bitio.LittleEndian) // dfBitsOffset
	if version >= 0x300 {
		var flags uint32
		if monospace {
			flags = 0x1 // DFF_FIXED
		} else {
			flags = 0x2 // DFF_PROPORTIONAL
		}
		bitio.PutU32(buf[0x76:], flags, bitio.LittleEndian) // dfFlags
	}
}
