// Apple IIgs font files are little-endian NFNT resources stripped of the
// resource fork, prefixed by a p-string name and a IIgs toolbox header.
// Unlike the Mac variant, the width/offset table is located through
// owTLoc (an offset in words from the owTLoc field itself), whose high
// 16 bits come from the version 1.05+ extended header.

package macfont

import (
	"fmt"
	"strconv"
	"strings"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/charmap"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
)

const iigsFormatName = "iigs"

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     iigsFormatName,
		Suffixes: []string{".iigs"},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			data, err := readAll(s)
			if err != nil {
				return nil, err
			}
			f, err := DecodeIIgs(data, d)
			if err != nil {
				return nil, err
			}
			return []*font.Font{f}, nil
		},
	})
}

// iigsHeader is the little-endian toolbox header that follows the
// p-string font name.
type iigsHeader struct {
	offset    uint16 // to the NFNT header, in 16-bit words from this header
	family    uint16
	style     uint16
	pointSize uint16
	version   uint16
	fbrExtent uint16
}

const iigsHeaderSize = 12

// IIgs style bitfield.
const (
	iigsStyleBold      = 1 << 0
	iigsStyleItalic    = 1 << 1
	iigsStyleUnderline = 1 << 2
	iigsStyleOutline   = 1 << 3
	iigsStyleShadow    = 1 << 4
)

// DecodeIIgs parses an Apple IIgs font file.
func DecodeIIgs(data []byte, d bitfont.Diagnostics) (*font.Font, error) {
	d = diagOrDefault(d)
	if len(data) < 1 {
		return nil, &bitfont.BadStructureError{Format: iigsFormatName, Reason: "empty file"}
	}
	nameLen := int(data[0])
	hdrOff := 1 + nameLen
	if len(data) < hdrOff+iigsHeaderSize {
		return nil, &bitfont.BadStructureError{Format: iigsFormatName, Reason: "IIgs header truncated"}
	}
	name := macRomanString(data[1:hdrOff])
	hdr := iigsHeader{
		offset:    bitio.U16(data[hdrOff:], bitio.LittleEndian),
		family:    bitio.U16(data[hdrOff+2:], bitio.LittleEndian),
		style:     bitio.U16(data[hdrOff+4:], bitio.LittleEndian),
		pointSize: bitio.U16(data[hdrOff+6:], bitio.LittleEndian),
		version:   bitio.U16(data[hdrOff+8:], bitio.LittleEndian),
		fbrExtent: bitio.U16(data[hdrOff+10:], bitio.LittleEndian),
	}

	nfntOff := hdrOff + int(hdr.offset)*2
	if nfntOff < hdrOff+iigsHeaderSize || nfntOff+fontRecSize > len(data) {
		return nil, &bitfont.BadStructureError{Format: iigsFormatName, Reason: "NFNT offset out of range"}
	}

	// The extended header, when present, sits between the toolbox header
	// and the NFNT.
	owTLocHigh := 0
	if hdr.version >= 0x0105 && nfntOff >= hdrOff+iigsHeaderSize+2 {
		owTLocHigh = int(bitio.U16(data[hdrOff+iigsHeaderSize:], bitio.LittleEndian))
	}

	rec, err := readFontRec(data[nfntOff:], bitio.LittleEndian)
	if err != nil {
		return nil, err
	}
	if rec.fontType&ftColorTable != 0 {
		return nil, &bitfont.UnsupportedFeatureError{Format: iigsFormatName, Feature: "colour/depth!=0 NFNT"}
	}

	stride := int(rec.rowWords) * 2
	strikeStart := nfntOff + fontRecSize
	locOff := strikeStart + stride*int(rec.fRectHeight)
	nChars := int(rec.lastChar) - int(rec.firstChar) + 2
	locCount := nChars + 1
	if locOff+locCount*2 > len(data) {
		return nil, &bitfont.BadStructureError{Format: iigsFormatName, Reason: "location table truncated"}
	}
	strike := data[strikeStart:locOff]
	locs := make([]int, locCount)
	for i := 0; i < locCount; i++ {
		locs[i] = int(bitio.U16(data[locOff+i*2:], bitio.LittleEndian))
	}

	woOff := nfntOff + owTLocFieldOffset + (int(rec.owTLoc)+(owTLocHigh<<16))*2
	if woOff < 0 || woOff+nChars*2 > len(data) {
		return nil, &bitfont.BadStructureError{Format: iigsFormatName, Reason: "width/offset table out of range"}
	}
	owTable := data[woOff : woOff+nChars*2]

	glyphs, err := strikeGlyphs(rec, strike, stride, locs, owTable)
	if err != nil {
		return nil, err
	}

	props := font.NewProperties().
		Set(font.PropFamily, name).
		Set(font.PropPointSize, strconv.Itoa(int(hdr.pointSize))).
		Set(font.PropAscent, strconv.Itoa(int(rec.ascent))).
		Set(font.PropDescent, strconv.Itoa(int(rec.descent))).
		Set(font.PropLeading, strconv.Itoa(int(rec.leading))).
		Set(font.PropEncoding, "mac-roman").
		Set(font.PropSourceFormat, fmt.Sprintf("IIgs v%d.%d", hdr.version>>8, hdr.version&0xff)).
		Set(font.PropertyName("iigs.family-id"), strconv.Itoa(int(hdr.family)))
	if hdr.style&iigsStyleBold != 0 {
		props = props.Set(font.PropWeight, "bold")
	}
	if hdr.style&iigsStyleItalic != 0 {
		props = props.Set(font.PropSlant, "italic")
	}
	var decoration []string
	if hdr.style&iigsStyleUnderline != 0 {
		decoration = append(decoration, "underline")
	}
	if hdr.style&iigsStyleOutline != 0 {
		decoration = append(decoration, "outline")
	}
	if hdr.style&iigsStyleShadow != 0 {
		decoration = append(decoration, "shadow")
	}
	if len(decoration) > 0 {
		props = props.Set(font.PropDecoration, strings.Join(decoration, " "))
	}

	f := font.Build(glyphs, props)
	if _, ok := f.GlyphByTag("missing"); ok {
		f = f.SetProperty(font.PropDefaultChar, "missing")
	}
	return f, nil
}

func macRomanString(b []byte) string {
	cm, ok := charmap.Lookup("mac-roman")
	if !ok {
		return string(b)
	}
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		if r, ok := cm.ToRune([]byte{c}); ok {
			runes = append(runes, r)
		} else {
			runes = append(runes, rune(c))
		}
	}
	return string(runes)
}
