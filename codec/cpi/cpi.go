// Package cpi implements the DOS/OS2 codepage-information bitmap font
// codec: MS-DOS, Windows NT, and DR-DOS flavours of the same
// linked-list-of-codepages container, each holding one or more
// fixed-cell screen font bitmaps.
package cpi

import (
	"strconv"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/charmap"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

const formatName = "cpi"

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:      formatName,
		Suffixes:  []string{".cpi", ".cp"},
		MultiFont: true,
		Magics: []bitfont.Magic{
			append([]byte{0xff}, []byte("FONT   ")...),
			append([]byte{0xff}, []byte("FONT.NT")...),
			append([]byte{0x7f}, []byte("DRFONT ")...),
		},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			return Decode(s, d)
		},
	})
}

// device types.
const (
	deviceScreen  = 1
	devicePrinter = 2
)

// codepage-info versions.
const (
	cpFont   = 1
	cpDRFont = 2
)

const (
	cpiHeaderSize  = 23
	fihSize        = 2
	cpehSize       = 28
	cpihSize       = 6
	screenFHSize   = 6
	loIndexEntries = 256
)

type cpiHeader struct {
	id0       byte
	id        string // 7 bytes
	fihOffset int
}

func readCPIHeader(data []byte) (cpiHeader, error) {
	if len(data) < cpiHeaderSize {
		return cpiHeader{}, &bitfont.BadStructureError{Format: formatName, Reason: "header truncated"}
	}
	h := cpiHeader{
		id0: data[0],
		id:  string(data[1:8]),
	}
	h.fihOffset = int(bitio.U32(data[19:23], bitio.LittleEndian))
	return h, nil
}

type codepageEntryHeader struct {
	nextCPEHOffset int
	deviceType     int
	deviceName     string
	codepage       int
	cpihOffset     int
}

func readCPEH(data []byte, off int) (codepageEntryHeader, error) {
	if off < 0 || off+cpehSize > len(data) {
		return codepageEntryHeader{}, &bitfont.BadStructureError{Format: formatName, Reason: "codepage entry header out of range"}
	}
	b := data[off : off+cpehSize]
	return codepageEntryHeader{
		nextCPEHOffset: int(bitio.U32(b[2:6], bitio.LittleEndian)),
		deviceType:     int(bitio.U16(b[6:8], bitio.LittleEndian)),
		deviceName:     string(b[8:16]),
		codepage:       int(bitio.U16(b[16:18], bitio.LittleEndian)),
		cpihOffset:     int(bitio.U32(b[24:28], bitio.LittleEndian)),
	}, nil
}

type codepageInfoHeader struct {
	version  int
	numFonts int
}

func readCPIH(data []byte, off int) (codepageInfoHeader, error) {
	if off < 0 || off+cpihSize > len(data) {
		return codepageInfoHeader{}, &bitfont.BadStructureError{Format: formatName, Reason: "codepage info header out of range"}
	}
	b := data[off : off+cpihSize]
	return codepageInfoHeader{
		version:  int(bitio.U16(b[0:2], bitio.LittleEndian)),
		numFonts: int(bitio.U16(b[2:4], bitio.LittleEndian)),
	}, nil
}

type screenFontHeader struct {
	height, width     int
	yAspect, xAspect  int
	numChars          int
}

func readScreenFH(data []byte, off int) (screenFontHeader, error) {
	if off < 0 || off+screenFHSize > len(data) {
		return screenFontHeader{}, &bitfont.BadStructureError{Format: formatName, Reason: "screen font header out of range"}
	}
	b := data[off : off+screenFHSize]
	return screenFontHeader{
		height:   int(b[0]),
		width:    int(b[1]),
		yAspect:  int(b[2]),
		xAspect:  int(b[3]),
		numChars: int(bitio.U16(b[4:6], bitio.LittleEndian)),
	}, nil
}

// drdosExtHeader is the DR-DOS Extended Font File Header: a per-codepage
// cell size and bitmap-data offset, indexed by font-within-codepage.
type drdosExtHeader struct {
	numFontsPerCodepage int
	fontCellSize        []int
	dfdOffset           []int
}

func readDRDOSExt(data []byte, off int) (drdosExtHeader, int, error) {
	if off < 0 || off >= len(data) {
		return drdosExtHeader{}, 0, &bitfont.BadStructureError{Format: formatName, Reason: "DR-DOS extended header out of range"}
	}
	n := int(data[off])
	size := 1 + n + 4*n
	if off+size > len(data) {
		return drdosExtHeader{}, 0, &bitfont.BadStructureError{Format: formatName, Reason: "DR-DOS extended header truncated"}
	}
	h := drdosExtHeader{numFontsPerCodepage: n}
	cursor := off + 1
	for i := 0; i < n; i++ {
		h.fontCellSize = append(h.fontCellSize, int(data[cursor]))
		cursor++
	}
	for i := 0; i < n; i++ {
		h.dfdOffset = append(h.dfdOffset, int(bitio.U32(data[cursor:cursor+4], bitio.LittleEndian)))
		cursor += 4
	}
	return h, size, nil
}

func codepointBytes(i int) []byte { return []byte{byte(i)} }

// readAlignedGlyphs slices count fixed-size (width x height) cells of
// row-major, byte-aligned bitmap data starting at offset, assigning
// sequential codepoints from 0.
func readAlignedGlyphs(data []byte, width, height, count, offset int) []font.Glyph {
	rowBytes := bitio.CeilDiv(width, 8)
	cellBytes := rowBytes * height
	glyphs := make([]font.Glyph, 0, count)
	for i := 0; i < count; i++ {
		start := offset + i*cellBytes
		chunk := make([]byte, cellBytes)
		if start < len(data) {
			end := start + cellBytes
			if end > len(data) {
				end = len(data)
			}
			copy(chunk, data[start:end])
		}
		r := raster.FromBytes(chunk, width, height, raster.AlignLeft, rowBytes)
		glyphs = append(glyphs, font.New(r).WithCodepoint(codepointBytes(i)))
	}
	return glyphs
}

// readDRFontGlyphs slices count glyphs via the DRFONT indirect FontIndex
// table: each character index looks up a font-index in a 256-entry
// little-endian int16 table, which multiplied by the per-font cell size
// and added to the per-font data offset gives the glyph's absolute
// position in data.
func readDRFontGlyphs(data []byte, width, height, count, citOffset, cellSize, dataOffset int) []font.Glyph {
	glyphs := make([]font.Glyph, 0, count)
	for i := 0; i < count && i < loIndexEntries; i++ {
		idxOff := citOffset + i*2
		var fi int
		if idxOff >= 0 && idxOff+2 <= len(data) {
			fi = int(int16(bitio.U16(data[idxOff:idxOff+2], bitio.LittleEndian)))
		}
		start := fi*cellSize + dataOffset
		chunk := make([]byte, cellSize)
		if start >= 0 && start < len(data) {
			end := start + cellSize
			if end > len(data) {
				end = len(data)
			}
			copy(chunk, data[start:end])
		}
		rowBytes := bitio.CeilDiv(width, 8)
		r := raster.FromBytes(chunk, width, height, raster.AlignLeft, rowBytes)
		glyphs = append(glyphs, font.New(r).WithCodepoint(codepointBytes(i)))
	}
	return glyphs
}

// Decode walks the container: header -> FIH -> walk
// num_codepages linked codepage entries, decoding each codepage's screen
// fonts (printer codepages are acknowledged via a diagnostic but not
// decoded).
func Decode(s *container.Stream, d bitfont.Diagnostics) ([]*font.Font, error) {
	d = diagOrDefault(d)
	data, err := readAll(s)
	if err != nil {
		return nil, err
	}
	h, err := readCPIHeader(data)
	if err != nil {
		return nil, err
	}

	var nt, dr bool
	switch {
	case h.id0 == 0xff && h.id == "FONT   ":
	case h.id0 == 0xff && h.id == "FONT.NT":
		nt = true
	case h.id0 == 0x7f && h.id == "DRFONT ":
		dr = true
	default:
		return nil, &bitfont.UnknownFormatError{Name: s.Name()}
	}

	var drExt *drdosExtHeader
	if dr {
		ext, _, err := readDRDOSExt(data, cpiHeaderSize)
		if err != nil {
			return nil, err
		}
		drExt = &ext
	}

	if h.fihOffset+fihSize > len(data) {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "font info header out of range"}
	}
	numCodepages := int(bitio.U16(data[h.fihOffset:h.fihOffset+2], bitio.LittleEndian))

	var fonts []*font.Font
	cpehOffset := h.fihOffset + fihSize
	for cp := 0; cp < numCodepages; cp++ {
		f, next, err := parseCodepage(data, cpehOffset, nt, dr, drExt, d)
		if err != nil {
			return nil, err
		}
		if f != nil {
			fonts = append(fonts, f)
		}
		cpehOffset = next
	}
	if len(fonts) == 0 {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "no screen fonts present"}
	}
	return fonts, nil
}

func fmtID(nt, dr bool) string {
	switch {
	case nt:
		return "Windows NT"
	case dr:
		return "DR-DOS"
	default:
		return "MS-DOS"
	}
}

func parseCodepage(data []byte, cpehOffset int, nt, dr bool, drExt *drdosExtHeader, d bitfont.Diagnostics) (*font.Font, int, error) {
	cpeh, err := readCPEH(data, cpehOffset)
	if err != nil {
		return nil, 0, err
	}
	if nt {
		cpeh.cpihOffset += cpehOffset
		cpeh.nextCPEHOffset += cpehOffset
	}

	cpih, err := readCPIH(data, cpeh.cpihOffset)
	if err != nil {
		return nil, 0, err
	}
	if cpih.version == 0 {
		cpih.version = cpFont
	}
	fhOffset := cpeh.cpihOffset + cpihSize

	if cpeh.deviceType == devicePrinter {
		d.Warnf("cpi: codepage %d is a printer font; printer devices are acknowledged but not decoded", cpeh.codepage)
		return nil, cpeh.nextCPEHOffset, nil
	}

	canonical, synthetic := charmap.FromCPICodepage(cpeh.codepage)
	encoding := synthetic
	if canonical != "" {
		encoding = canonical
	}

	var glyphs []font.Glyph
	var cellW, cellH int
	citOffset := fhOffset + cpih.numFonts*screenFHSize
	for i := 0; i < cpih.numFonts; i++ {
		fh, err := readScreenFH(data, fhOffset)
		if err != nil {
			return nil, 0, err
		}
		cellW, cellH = fh.width, fh.height
		if cpih.version == cpDRFont {
			if drExt == nil || i >= len(drExt.fontCellSize) {
				return nil, 0, &bitfont.BadStructureError{Format: formatName, Reason: "DRFONT entry without extended header"}
			}
			glyphs = readDRFontGlyphs(data, fh.width, fh.height, fh.numChars, citOffset, drExt.fontCellSize[i], drExt.dfdOffset[i])
			fhOffset += screenFHSize
		} else {
			bmOffset := fhOffset + screenFHSize
			glyphs = readAlignedGlyphs(data, fh.width, fh.height, fh.numChars, bmOffset)
			fhOffset = bmOffset + fh.numChars*fh.height*bitio.CeilDiv(fh.width, 8)
		}
		// Only the first font per codepage is exposed as a Font value;
		// DOS CPI codepages carry a single screen font in practice
		// (multiple resolutions are rare and share the same glyph set).
		if i == 0 {
			break
		}
	}
	if cellW == 0 || cellH == 0 || len(glyphs) == 0 {
		return nil, cpeh.nextCPEHOffset, nil
	}

	props := font.NewProperties().
		Set(font.PropEncoding, encoding).
		Set(font.PropDevice, string(trimNulPad([]byte(cpeh.deviceName)))).
		Set(font.PropSourceFormat, "CPI ("+fmtID(nt, dr)+")").
		Set(font.PropSpacing, string(font.SpacingCharacterCell)).
		Set("cpi.codepage", strconv.Itoa(cpeh.codepage))
	return font.Build(glyphs, props), cpeh.nextCPEHOffset, nil
}

func trimNulPad(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	out := b[:i]
	j := len(out)
	for j > 0 && out[j-1] == ' ' {
		j--
	}
	return out[:j]
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
