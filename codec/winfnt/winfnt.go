// Package winfnt implements the Windows FNT bitmap font resource codec:
// versions 1.00/2.00/3.00, decoded either as a bare FNT resource or
// extracted from an NE/PE/LX FON executable (see fon.go).
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

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     "windows-fnt",
		Suffixes: []string{".fnt"},
		Magics:   []bitfont.Magic{{0x00, 0x01}, {0x00, 0x02}, {0x00, 0x03}},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			f, err := Decode(s, d)
			if err != nil {
				return nil, err
			}
			return []*font.Font{f}, nil
		},
	})
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     "windows-fon",
		Suffixes: []string{".fon"},
		Magics:   []bitfont.Magic{{'M', 'Z'}},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			return DecodeFON(s, d)
		},
	})
	bitfont.RegisterSaver(&bitfont.Saver{
		Name: "windows-fnt",
		Encode: func(w *container.Stream, fonts []*font.Font, d bitfont.Diagnostics) error {
			if len(fonts) == 0 {
				return nil
			}
			return Encode(w, fonts[0], EncodeOptions{Version: 0x200})
		},
	})
}

// weightNames maps the nearest-hundred dfWeight value to its canonical
// style name.
var weightNames = map[int]string{
	100: "thin", 200: "extra-light", 300: "light", 400: "regular",
	500: "medium", 600: "semi-bold", 700: "bold", 800: "extra-bold", 900: "heavy",
}

var weightValues = map[string]int{
	"thin": 100, "extra-light": 200, "light": 300, "regular": 400,
	"medium": 500, "semi-bold": 600, "bold": 700, "extra-bold": 800, "heavy": 900,
}

func snapWeight(w int) int {
	if w <= 0 {
		return 400
	}
	snapped := ((w + 50) / 100) * 100
	if snapped < 100 {
		snapped = 100
	}
	if snapped > 900 {
		snapped = 900
	}
	return snapped
}

// pitchFamilyStyle maps the upper nibble of dfPitchAndFamily to a style
// name, per the Windows GDI family constants (FF_ROMAN etc.).
var pitchFamilyStyle = map[byte]string{
	0x10: "roman", 0x20: "swiss", 0x30: "modern", 0x40: "script", 0x50: "decorative",
}

type header struct {
	version                                  uint16
	pointSize                                uint16
	vertRes, horizRes                        uint16
	ascent                                   uint16
	internalLeading, externalLeading         uint16
	italic, underline, strikeOut             bool
	weight                                   uint16
	charSet                                  byte
	pixWidth, pixHeight                      uint16
	pitchAndFamily                           byte
	avgWidth, maxWidth                       uint16
	firstChar, lastChar                      byte
	defaultChar, breakChar                   byte
	widthBytes                               uint16
	device, face                             uint32
	bitsPointer                              uint32
	bitsOffset                               uint32
	reserved                                 byte
	flags                                    uint32 // v3 only
	aSpace, bSpace, cSpace                   uint16  // v3 only
	colorPointer                             uint32
}

// Decode reads a single Windows FNT resource. s must be
// positioned at the start of the resource (byte 0 of the dfVersion
// field).
func Decode(s *container.Stream, d bitfont.Diagnostics) (*font.Font, error) {
	d = diagOrDefault(d)

	const format = "windows-fnt"
	data, err := readAll(s)
	if err != nil {
		return nil, err
	}
	return decodeBytes(data, d)
}

func decodeBytes(data []byte, d bitfont.Diagnostics) (*font.Font, error) {
	const format = "windows-fnt"
	if len(data) < 118 {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "header truncated"}
	}
	r := bitio.NewReader(byteReader(data), bitio.LittleEndian)

	h := header{}
	h.version, _ = r.U16()
	switch h.version {
	case 0x100, 0x200, 0x300:
	default:
		return nil, &bitfont.UnsupportedVersionError{Format: format, Version: versionString(h.version)}
	}
	r.Skip(4) // dfSize
	r.Skip(60) // dfCopyright
	dfType, _ := r.U16()
	if dfType&1 != 0 {
		return nil, &bitfont.UnsupportedFeatureError{Format: format, Feature: "vector font (dfType bit 0 set)"}
	}
	h.pointSize, _ = r.U16()
	h.vertRes, _ = r.U16()
	h.horizRes, _ = r.U16()
	h.ascent, _ = r.U16()
	h.internalLeading, _ = r.U16()
	h.externalLeading, _ = r.U16()
	ital, _ := r.U8()
	h.italic = ital != 0
	ul, _ := r.U8()
	h.underline = ul != 0
	so, _ := r.U8()
	h.strikeOut = so != 0
	h.weight, _ = r.U16()
	h.charSet, _ = r.U8()
	h.pixWidth, _ = r.U16()
	h.pixHeight, _ = r.U16()
	h.pitchAndFamily, _ = r.U8()
	h.avgWidth, _ = r.U16()
	h.maxWidth, _ = r.U16()
	fc, _ := r.U8()
	h.firstChar = fc
	lc, _ := r.U8()
	h.lastChar = lc
	dc, _ := r.U8()
	h.defaultChar = dc
	bc, _ := r.U8()
	h.breakChar = bc
	h.widthBytes, _ = r.U16()
	h.device, _ = r.U32()
	h.face, _ = r.U32()
	h.bitsPointer, _ = r.U32()
	h.bitsOffset, _ = r.U32()
	if h.version >= 0x200 {
		h.reserved, _ = r.U8()
	}
	if h.version >= 0x300 {
		h.flags, _ = r.U32()
		h.aSpace, _ = r.U16()
		h.bSpace, _ = r.U16()
		h.cSpace, _ = r.U16()
		h.colorPointer, _ = r.U32()
		r.Skip(16) // dfReserved1
	}

	if h.pixWidth > 0 && h.pitchAndFamily&1 == 1 {
		d.Warnf("%s: dfPixWidth=%d but pitch bit claims proportional", format, h.pixWidth)
	}
	if h.version >= 0x300 {
		const (
			dffProportional = 0x02 | 0x08
			dffABC          = 0x04 | 0x08
			dffColor        = 0x20 | 0x40 | 0x80
		)
		if h.flags&dffColor != 0 {
			return nil, &bitfont.UnsupportedFeatureError{Format: format, Feature: "colour FNT v3"}
		}
		if h.flags&dffABC != 0 {
			return nil, &bitfont.UnsupportedFeatureError{Format: format, Feature: "ABC-spaced FNT v3"}
		}
		if (h.flags&dffProportional != 0) != (h.pixWidth == 0) {
			d.Warnf("%s: dfFlags=%#x pitch bits disagree with dfPixWidth=%d", format, h.flags, h.pixWidth)
		}
	}

	numChars := int(h.lastChar) - int(h.firstChar) + 1
	if numChars <= 0 {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "lastChar < firstChar"}
	}

	glyphs, err := readGlyphTable(data, h, numChars, d)
	if err != nil {
		return nil, err
	}

	props := font.NewProperties()
	props.Set(font.PropSourceFormat, format)
	if name := cString(data, int(h.device)); name != "" {
		props.Set(font.PropDevice, name)
	}
	if name := cString(data, int(h.face)); name != "" {
		props.Set(font.PropFamily, name)
	}
	props.Set(font.PropPointSize, strconv.Itoa(int(h.pointSize)))
	props.Set(font.PropAscent, strconv.Itoa(int(h.ascent)))
	descent := int(h.internalLeading)
	if descent == 0 {
		descent = int(h.pixHeight) - int(h.ascent)
	}
	if descent > 0 {
		props.Set(font.PropDescent, strconv.Itoa(descent))
	}
	props.Set(font.PropLeading, strconv.Itoa(int(h.externalLeading)))
	props.Set(font.PropWeight, weightName(int(h.weight)))
	style := pitchFamilyStyle[h.pitchAndFamily&0xf0]
	if style != "" {
		props.Set(font.PropStyle, style)
	}
	// spacing follows dfPixWidth; the pitch bit (set = proportional) is
	// only cross-checked against it above.
	if h.pixWidth > 0 {
		props.Set(font.PropSpacing, string(font.SpacingCharacterCell))
	} else {
		props.Set(font.PropSpacing, string(font.SpacingProportional))
	}
	if name, ok := charmap.FromWindowsCharSet(h.charSet); ok {
		props.Set(font.PropEncoding, name)
	} else {
		props.Set("windows.dfCharSet", fmtWindowsCharSet(h.charSet))
	}
	if h.italic {
		props.Set(font.PropSlant, "italic")
	}
	if h.underline || h.strikeOut {
		props.Set(font.PropDecoration, decorationName(h.underline, h.strikeOut))
	}

	return font.Build(glyphs, props), nil
}

func decorationName(underline, strikeOut bool) string {
	switch {
	case underline && strikeOut:
		return "underline,strikeout"
	case underline:
		return "underline"
	case strikeOut:
		return "strikeout"
	default:
		return ""
	}
}

func fmtWindowsCharSet(b byte) string {
	const hex = "0123456789abcdef"
	return "0x" + string([]byte{hex[b>>4], hex[b&0xf]})
}

func weightName(w int) string {
	snapped := snapWeight(w)
	if name, ok := weightNames[snapped]; ok {
		return name
	}
	return "regular"
}

func versionString(v uint16) string {
	return strconv.Itoa(int(v>>8)) + "." + strconv.Itoa(int(v&0xff))
}

// readGlyphTable dispatches between the v1 global-strike layout and the
// v2/v3 per-glyph column-major layout.
func readGlyphTable(data []byte, h header, numChars int, d bitfont.Diagnostics) ([]font.Glyph, error) {
	const format = "windows-fnt"
	const headerSize = 118 // fixed up-front; the v2 table starts right after, the v1 table one byte earlier

	tableStart := charTableStart(h)

	if h.version == 0x100 {
		return readV1(data, h, numChars, tableStart, d)
	}
	return readV23(data, h, numChars, tableStart, d)
}

func charTableStart(h header) int {
	if h.version >= 0x300 {
		return 0x94 // after dfReserved1 in v3 (dfReserved1 is part of the 0x94-byte v3 header)
	}
	if h.version == 0x200 {
		return 0x76
	}
	return 0x75 // v1: table starts right after dfBitsOffset (no dfReserved byte)
}

func readV1(data []byte, h header, numChars int, tableStart int, d bitfont.Diagnostics) ([]font.Glyph, error) {
	const format = "windows-fnt"
	// v1: a single (numChars+1) array of u16 offsets into the strike,
	// widths derived from consecutive offsets.
	entries := numChars + 1
	need := tableStart + entries*2
	if need > len(data) {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "v1 char table truncated"}
	}
	offsets := make([]int, entries)
	for i := 0; i < entries; i++ {
		offsets[i] = int(bitio.U16(data[tableStart+i*2:], bitio.LittleEndian))
	}

	strikeStart := int(h.bitsOffset)
	rowBytes := int(h.widthBytes)
	if rowBytes == 0 {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "dfWidthBytes is zero"}
	}
	height := int(h.pixHeight)
	strikeLen := rowBytes * height
	strike := make([]byte, strikeLen)
	if strikeStart < len(data) {
		end := strikeStart + strikeLen
		if end > len(data) {
			end = len(data)
		}
		copy(strike, data[strikeStart:end])
	}
	strikeWidth := rowBytes * 8
	strikeRaster := raster.FromBytes(strike, strikeWidth, height, raster.AlignLeft, rowBytes)

	glyphs := make([]font.Glyph, 0, numChars)
	for i := 0; i < numChars; i++ {
		width := offsets[i+1] - offsets[i]
		if width < 0 {
			width = 0
		}
		codepoint := int(h.firstChar) + i
		g := cropGlyph(strikeRaster, offsets[i], width, height, codepoint, d)
		if g != nil {
			glyphs = append(glyphs, *g)
		}
	}
	return glyphs, nil
}

func readV23(data []byte, h header, numChars int, tableStart int, d bitfont.Diagnostics) ([]font.Glyph, error) {
	const format = "windows-fnt"
	entrySize := 4 // (width:u16, offset:u16) for v2; v3 offset is u32
	if h.version >= 0x300 {
		entrySize = 6
	}
	entries := numChars + 1
	need := tableStart + entries*entrySize
	if need > len(data) {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "v2/v3 char table truncated"}
	}

	type entry struct {
		width  int
		offset int
	}
	table := make([]entry, entries)
	for i := 0; i < entries; i++ {
		p := tableStart + i*entrySize
		width := int(bitio.U16(data[p:], bitio.LittleEndian))
		var offset int
		if entrySize == 6 {
			offset = int(bitio.U32(data[p+2:], bitio.LittleEndian))
		} else {
			offset = int(bitio.U16(data[p+2:], bitio.LittleEndian))
		}
		table[i] = entry{width: width, offset: offset}
	}

	height := int(h.pixHeight)
	glyphs := make([]font.Glyph, 0, numChars)
	for i := 0; i < numChars; i++ {
		width := table[i].width
		offset := table[i].offset
		colBytes := bitio.CeilDiv(width, 8)
		need := colBytes * height
		columns := make([]byte, need)
		if offset < len(data) {
			end := offset + need
			if end > len(data) {
				end = len(data)
			}
			copy(columns, data[offset:end])
		}
		// FNT stores each glyph as contiguous 8-pixel-wide byte columns of
		// dfPixHeight bytes each; transpose them bytewise into rows.
		rowMajor := make([]byte, need)
		for y := 0; y < height; y++ {
			for c := 0; c < colBytes; c++ {
				rowMajor[y*colBytes+c] = columns[c*height+y]
			}
		}
		r := raster.FromBytes(rowMajor, width, height, raster.AlignLeft, colBytes)

		codepoint := int(h.firstChar) + i
		if r.IsBlank() && codepoint != 0x00 && codepoint != 0x20 {
			continue
		}
		g := font.New(r).WithCodepoint(codepointBytes(codepoint)).WithBearings(0, 0)
		glyphs = append(glyphs, g)
	}
	return glyphs, nil
}

func cropGlyph(strike raster.Raster, left, width, height, codepoint int, d bitfont.Diagnostics) *font.Glyph {
	if width == 0 {
		if codepoint != 0x00 && codepoint != 0x20 {
			return nil
		}
	}
	r := raster.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r = r.Set(x, y, strike.Get(left+x, y))
		}
	}
	if r.IsBlank() && codepoint != 0x00 && codepoint != 0x20 {
		return nil
	}
	g := font.New(r).WithCodepoint(codepointBytes(codepoint))
	return &g
}

func codepointBytes(cp int) []byte {
	if cp < 0 {
		cp = 0
	}
	if cp < 256 {
		return []byte{byte(cp)}
	}
	return []byte{byte(cp >> 8), byte(cp)}
}

func cString(data []byte, offset int) string {
	if offset <= 0 || offset >= len(data) {
		return ""
	}
	end := offset
	for end < len(data) && data[end] != 0 {
		end++
	}
	return string(data[offset:end])
}

func diagOrDefault(d bitfont.Diagnostics) bitfont.Diagnostics {
	if d == nil {
		return bitfont.DiscardDiagnostics{}
	}
	return d
}
