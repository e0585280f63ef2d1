// Package amiga implements the AmigaOS disk font codec: a hunk-file
// container (header hunk + code hunk) wrapping a DiskFontHeader and
// TextFont structure whose in-hunk pointers are relative to the start
// of the hunk's ReturnCode field.
package amiga

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

const formatName = "amiga"

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     formatName,
		Suffixes: []string{".font"},
		Magics:   []bitfont.Magic{{0x00, 0x00, 0x03, 0xf3}},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			f, err := Decode(s, d)
			if err != nil {
				return nil, err
			}
			return []*font.Font{f}, nil
		},
	})
}

const (
	hunkHeader = 0x3f3
	hunkCode   = 0x3e9
)

// tf_Flags.
const (
	fpfRevPath      = 0x04
	fpfTallDot      = 0x08
	fpfWideDot      = 0x10
	fpfProportional = 0x20
)

// tf_Style.
const (
	fsfUnderlined = 0x01
	fsfBold       = 0x02
	fsfItalic     = 0x04
	fsfExtended   = 0x08
	fsfColorFont  = 0x40
)

const maxFontName = 32

// diskFontHeader is the on-disk DiskFontHeader/Node/Message/TextFont
// field sequence, big-endian, with the fields this codec ignores
// skipped during the read.
type diskFontHeader struct {
	name string // dfh_Name, NUL/tag-separated, 32 bytes

	ySize, xSize, baseline, boldSmear, accessors uint16
	style, flags                                 byte
	loChar, hiChar                               byte
	charData                                     uint32
	modulo                                       uint16
	charLoc, charSpace, charKern                  uint32
	revision                                     uint16
}

// headerSize is the byte size of _AMIGA_HEADER: 4+4 (dfh_NextSegment,
// dfh_ReturnCode) + 4+4+1+1+4 (Node) + 2+2 (FileID/Revision) + 4 (Segment)
// + 32 (Name) + 4+4+1+1+4+4+2 (Message+ln) + 2+1+1+2+2+2+2+1+1+4+2+4+4+4.
const headerSize = 8 + 14 + 2 + 2 + 4 + maxFontName + 4 + 4 + 1 + 1 + 4 + 4 + 2 +
	2 + 1 + 1 + 2 + 2 + 2 + 2 + 1 + 1 + 4 + 2 + 4 + 4 + 4

func readHeader(data []byte) (diskFontHeader, int, error) {
	r := bitio.NewReader(bytes.NewReader(data), bitio.BigEndian)
	fail := func(err error) (diskFontHeader, int, error) {
		return diskFontHeader{}, 0, &bitfont.BadStructureError{Format: formatName, Reason: "font hunk header truncated", Err: err}
	}

	var h diskFontHeader
	if err := r.Skip(4 + 4); err != nil { // dfh_NextSegment, dfh_ReturnCode
		return fail(err)
	}
	if err := r.Skip(4 + 4 + 1 + 1 + 4); err != nil { // Node
		return fail(err)
	}
	if err := r.Skip(2); err != nil { // dfh_FileID
		return fail(err)
	}
	rev, err := r.U16() // dfh_Revision
	if err != nil {
		return fail(err)
	}
	h.revision = rev
	if err := r.Skip(4); err != nil { // dfh_Segment
		return fail(err)
	}
	nameBytes, err := r.Bytes(maxFontName) // dfh_Name
	if err != nil {
		return fail(err)
	}
	h.name = string(nameBytes)
	// Message embedded at the start of TextFont.
	if err := r.Skip(4 + 4 + 1 + 1 + 4 + 4 + 2); err != nil {
		return fail(err)
	}
	if h.ySize, err = r.U16(); err != nil {
		return fail(err)
	}
	if h.style, err = r.U8(); err != nil {
		return fail(err)
	}
	if h.flags, err = r.U8(); err != nil {
		return fail(err)
	}
	if h.xSize, err = r.U16(); err != nil {
		return fail(err)
	}
	if h.baseline, err = r.U16(); err != nil {
		return fail(err)
	}
	if h.boldSmear, err = r.U16(); err != nil {
		return fail(err)
	}
	if h.accessors, err = r.U16(); err != nil {
		return fail(err)
	}
	if h.loChar, err = r.U8(); err != nil {
		return fail(err)
	}
	if h.hiChar, err = r.U8(); err != nil {
		return fail(err)
	}
	if h.charData, err = r.U32(); err != nil {
		return fail(err)
	}
	if h.modulo, err = r.U16(); err != nil {
		return fail(err)
	}
	if h.charLoc, err = r.U32(); err != nil {
		return fail(err)
	}
	if h.charSpace, err = r.U32(); err != nil {
		return fail(err)
	}
	if h.charKern, err = r.U32(); err != nil {
		return fail(err)
	}
	return h, int(r.Pos()), nil
}

// Decode reads an Amiga disk font file: hunk header, code hunk,
// DiskFontHeader/TextFont, then the glyph strike and location/spacing/
// kerning tables addressed relative to the hunk payload.
func Decode(s *container.Stream, d bitfont.Diagnostics) (*font.Font, error) {
	d = diagOrDefault(d)
	data, err := readAll(s)
	if err != nil {
		return nil, err
	}
	pos := 0
	if len(data) < 4 || int(bitio.U32(data[0:4], bitio.BigEndian)) != hunkHeader {
		return nil, &bitfont.UnknownFormatError{Name: s.Name()}
	}
	pos += 4
	// null-terminated list of library-name strings (each "num_longs" u32
	// followed by num_longs*4 bytes); an empty (num_longs==0) entry ends
	// the list.
	for {
		if pos+4 > len(data) {
			return nil, &bitfont.BadStructureError{Format: formatName, Reason: "header truncated in library name list"}
		}
		numLongs := int(bitio.U32(data[pos:pos+4], bitio.BigEndian))
		pos += 4
		if numLongs < 1 {
			break
		}
		pos += numLongs * 4
	}
	if pos+12 > len(data) {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "header truncated in hunk size table"}
	}
	firstSlot := int(bitio.U32(data[pos+4:pos+8], bitio.BigEndian))
	lastSlot := int(bitio.U32(data[pos+8:pos+12], bitio.BigEndian))
	pos += 12
	numSizes := lastSlot - firstSlot + 1
	if numSizes < 0 || pos+numSizes*4 > len(data) {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "header truncated in hunk size table"}
	}
	pos += numSizes * 4

	if pos+4 > len(data) {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "missing code hunk"}
	}
	hunkID := int(bitio.U32(data[pos:pos+4], bitio.BigEndian))
	pos += 4
	if hunkID != hunkCode {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "no code hunk found"}
	}

	hh, hhLen, err := readHeader(data[pos:])
	if err != nil {
		return nil, err
	}
	if hh.style&fsfColorFont != 0 {
		return nil, &bitfont.UnsupportedFeatureError{Format: formatName, Feature: "ColorFont"}
	}
	// In-hunk pointers (tf_CharData etc.) are relative to the start of the
	// hunk's ReturnCode field, 4 bytes into the header; readHeader
	// starts past the hunk ID, at pos, and the bitmap data follows
	// immediately after the header it just consumed.
	loc := -headerSize + 4
	base := pos + hhLen

	glyphs, offsetX, err := readStrike(data, base, &hh, loc)
	if err != nil {
		return nil, err
	}

	props := parseProps(hh, offsetX)
	return font.Build(glyphs, props), nil
}

func readStrike(data []byte, base int, hh *diskFontHeader, loc int) ([]font.Glyph, int, error) {
	xsize, ysize := int(hh.xSize), int(hh.ySize)
	modulo := int(hh.modulo)
	loChar, hiChar := int(hh.loChar), int(hh.hiChar)
	proportional := hh.flags&fpfProportional != 0

	posCharData := base + int(hh.charData) + loc
	posCharLoc := base + int(hh.charLoc) + loc
	var posCharSpace, posCharKern int
	hasSpace := hh.charSpace != 0
	hasKern := hh.charKern != 0
	if hasSpace {
		posCharSpace = base + int(hh.charSpace) + loc
	}
	if hasKern {
		posCharKern = base + int(hh.charKern) + loc
	}

	rows := make([][]byte, ysize)
	for i := 0; i < ysize; i++ {
		start := posCharData + i*modulo
		end := start + modulo
		rows[i] = sliceOrZero(data, start, end)
	}

	nchars := hiChar - loChar + 1 + 1 // +1 for the trailing "default" glyph
	type loc16 struct{ offset, width int }
	locs := make([]loc16, nchars)
	for i := 0; i < nchars; i++ {
		off := posCharLoc + i*4
		b := sliceOrZero(data, off, off+4)
		locs[i] = loc16{offset: int(bitio.U16(b[0:2], bitio.BigEndian)), width: int(bitio.U16(b[2:4], bitio.BigEndian))}
	}

	spacing := make([]int, nchars)
	if proportional && hasSpace {
		for i := range spacing {
			off := posCharSpace + i*2
			b := sliceOrZero(data, off, off+2)
			spacing[i] = int(int16(bitio.U16(b, bitio.BigEndian)))
		}
	} else {
		for i := range spacing {
			spacing[i] = xsize
		}
	}

	kerning := make([]int, nchars)
	if hasKern {
		for i := range kerning {
			off := posCharKern + i*2
			b := sliceOrZero(data, off, off+2)
			kerning[i] = int(int16(bitio.U16(b, bitio.BigEndian)))
		}
	}
	offsetX := 0
	if len(kerning) > 0 {
		offsetX = kerning[0]
		for _, k := range kerning {
			if k < offsetX {
				offsetX = k
			}
		}
	}
	for i := range kerning {
		kerning[i] -= offsetX
	}

	glyphs := make([]font.Glyph, 0, nchars)
	for i, l := range locs {
		rowsSlice := make([][]bool, ysize)
		for y := 0; y < ysize; y++ {
			rowsSlice[y] = bitsOfRange(rows[y], l.offset, l.offset+l.width)
		}
		r := raster.FromRows(rowsSlice)
		width := spacing[i]
		kern := kerning[i]
		padded := raster.New(width, ysize)
		for y := 0; y < ysize; y++ {
			for x := 0; x < l.width && kern+x < width; x++ {
				padded = padded.Set(kern+x, y, r.Get(x, y))
			}
		}
		g := font.New(padded)
		if i < nchars-1 {
			g = g.WithCodepoint([]byte{byte(loChar + i)})
		} else {
			g = g.WithTag("default")
		}
		glyphs = append(glyphs, g)
	}
	return glyphs, offsetX, nil
}

func sliceOrZero(data []byte, start, end int) []byte {
	if start < 0 || end < start {
		return make([]byte, max0(end-start))
	}
	n := end - start
	out := make([]byte, n)
	if start < len(data) {
		realEnd := end
		if realEnd > len(data) {
			realEnd = len(data)
		}
		copy(out, data[start:realEnd])
	}
	return out
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// bitsOfRange returns the bits of row in [from, to) as a slice of
// bools, MSB-first; bits past the end of row read as paper.
func bitsOfRange(row []byte, from, to int) []bool {
	if to < from {
		to = from
	}
	out := make([]bool, to-from)
	for i := from; i < to; i++ {
		byteIdx := i / 8
		if byteIdx >= len(row) {
			continue
		}
		bitIdx := i % 8
		out[i-from] = row[byteIdx]&(0x80>>bitIdx) != 0
	}
	return out
}

func parseProps(hh diskFontHeader, offsetX int) font.Properties {
	props := font.NewProperties()

	name, tags := splitNulTags(hh.name)
	for i, tag := range tags {
		props = props.Set(font.PropertyName(fmt.Sprintf("amiga.dfh_Name.%d", i+1)), tag)
	}
	if name != "" {
		props = props.Set(font.PropName, name)
		props = props.Set(font.PropFamily, familyOf(name))
	}
	props = props.Set(font.PropRevision, strconv.Itoa(int(hh.revision)))

	if hh.style&fsfBold != 0 {
		props = props.Set(font.PropWeight, "bold")
	} else {
		props = props.Set(font.PropWeight, "regular")
	}
	if hh.style&fsfItalic != 0 {
		props = props.Set(font.PropSlant, "italic")
	} else {
		props = props.Set(font.PropSlant, "roman")
	}
	if hh.style&fsfExtended != 0 {
		props = props.Set(font.PropSetwidth, "expanded")
	} else {
		props = props.Set(font.PropSetwidth, "medium")
	}
	if hh.style&fsfUnderlined != 0 {
		props = props.Set(font.PropDecoration, "underline")
	}

	if hh.flags&fpfProportional != 0 {
		props = props.Set(font.PropSpacing, string(font.SpacingProportional))
	} else {
		props = props.Set(font.PropSpacing, string(font.SpacingMonospace))
	}
	if hh.flags&fpfRevPath != 0 {
		props = props.Set(font.PropDirection, string(font.DirectionRTL))
	}
	switch {
	case hh.flags&fpfTallDot != 0 && hh.flags&fpfWideDot == 0:
		props = props.Set(font.PropDPI, "96 48")
	case hh.flags&fpfWideDot != 0 && hh.flags&fpfTallDot == 0:
		props = props.Set(font.PropDPI, "48 96")
	default:
		props = props.Set(font.PropDPI, "96")
	}

	props = props.Set(font.PropEncoding, "iso8859-1")
	props = props.Set(font.PropDefaultChar, "default")
	props = props.Set(font.PropShiftUp, strconv.Itoa(int(hh.baseline)-int(hh.ySize)))
	if offsetX != 0 {
		props = props.Set(font.PropLeftBearing, strconv.Itoa(offsetX))
	}
	if hh.boldSmear != 1 {
		props = props.Set("amiga.tf_BoldSmear", strconv.Itoa(int(hh.boldSmear)))
	}
	return props
}

func familyOf(name string) string {
	for i, c := range name {
		if c == '/' || c == ' ' {
			return name[:i]
		}
	}
	return name
}

// splitNulTags splits a fixed-size NUL-padded/NUL-separated name field:
// the first segment is the font name, subsequent NUL-separated segments
// (before the final zero padding) are preserved as opaque tags.
func splitNulTags(raw string) (name string, tags []string) {
	raw = strings.TrimRight(raw, "\x00")
	parts := strings.Split(raw, "\x00")
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
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
