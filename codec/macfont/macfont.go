// Package macfont implements the classic Mac OS NFNT/FONT resource
// codec and the Apple IIgs variant: a FontRec header, a strike bitmap, a
// location table and a width/offset table, with an optional
// inverse-bit-RLE compressed strike. The FontRec field layout follows
// Apple's published QuickDraw and IIgs toolbox references.
package macfont

import (
	"strconv"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
	"bitfont.dev/go/bitfont/raster"
)

const formatName = "mac-nfnt"

func init() {
	bitfont.RegisterLoader(&bitfont.Loader{
		Name:     formatName,
		Suffixes: []string{".nfnt", ".dfont", ".suit"},
		Decode: func(s *container.Stream, c container.Container, d bitfont.Diagnostics) ([]*font.Font, error) {
			data, err := readAll(s)
			if err != nil {
				return nil, err
			}
			f, err := Decode(data, d)
			if err != nil {
				return nil, err
			}
			return []*font.Font{f}, nil
		},
	})
	bitfont.RegisterSaver(&bitfont.Saver{
		Name: formatName,
		Encode: func(w *container.Stream, fonts []*font.Font, d bitfont.Diagnostics) error {
			if len(fonts) == 0 {
				return nil
			}
			data, err := Encode(fonts[0])
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		},
	})
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

// fontType bit-flags.
const (
	ftPropWidths  = 1 << 1 // has width table
	ftHasHeight   = 1 << 2 // has height table
	ftWidthIsFract = 1 << 1
	ftColorTable  = 1 << 7
	ftSyntheticEx = 1 << 13
	ftFixedWidth  = 1 << 13
	ftCompressed  = 1<<15 | 1<<7
)

// fontRec is the big-endian Mac QuickDraw FontRec header.
type fontRec struct {
	fontType     uint16
	firstChar    uint16
	lastChar     uint16
	widMax       uint16
	kernMax      int16
	nDescent     int16
	fRectWidth   uint16
	fRectHeight  uint16
	owTLoc       uint16
	ascent       uint16
	descent      uint16
	leading      uint16
	rowWords     uint16
}

// fontRecSize is the fixed byte length of the FontRec header.
const fontRecSize = 26

// owTLocFieldOffset is the byte position of the owTLoc field within the
// FontRec; owTLoc's value is a word offset measured from this field.
const owTLocFieldOffset = 16

func readFontRec(b []byte, order bitio.Order) (fontRec, error) {
	if len(b) < fontRecSize {
		return fontRec{}, &bitfont.BadStructureError{Format: formatName, Reason: "FontRec header truncated"}
	}
	return fontRec{
		fontType:    bitio.U16(b[0:], order),
		firstChar:   bitio.U16(b[2:], order),
		lastChar:    bitio.U16(b[4:], order),
		widMax:      bitio.U16(b[6:], order),
		kernMax:     int16(bitio.U16(b[8:], order)),
		nDescent:    int16(bitio.U16(b[10:], order)),
		fRectWidth:  bitio.U16(b[12:], order),
		fRectHeight: bitio.U16(b[14:], order),
		owTLoc:      bitio.U16(b[16:], order),
		ascent:      bitio.U16(b[18:], order),
		descent:     bitio.U16(b[20:], order),
		leading:     bitio.U16(b[22:], order),
		rowWords:    bitio.U16(b[24:], order),
	}, nil
}

// Decode parses a bare NFNT/FONT resource. Compressed
// strikes (fontType bits 15+7) are inflated before glyph extraction.
func Decode(data []byte, d bitfont.Diagnostics) (*font.Font, error) {
	d = diagOrDefault(d)
	rec, err := readFontRec(data, bitio.BigEndian)
	if err != nil {
		return nil, err
	}
	if rec.fontType&ftColorTable != 0 {
		return nil, &bitfont.UnsupportedFeatureError{Format: formatName, Feature: "colour/depth!=0 NFNT"}
	}

	body := data[26:]
	stride := int(rec.rowWords) * 2
	strikeBytes := stride * int(rec.fRectHeight)
	compressed := rec.fontType&ftCompressed == ftCompressed

	var strike, locTable []byte
	if compressed {
		hdr, payload, err := readCompressedHeader(body)
		if err != nil {
			return nil, err
		}
		if len(payload) < int(hdr.compressedLength) {
			return nil, &bitfont.BadStructureError{Format: formatName, Reason: "compressed strike truncated"}
		}
		strike, err = inflateCompressedStrike(payload[:hdr.compressedLength], stride, int(rec.fRectHeight))
		if err != nil {
			return nil, err
		}
		locTable = payload[hdr.compressedLength:]
	} else {
		if len(body) < strikeBytes {
			return nil, &bitfont.BadStructureError{Format: formatName, Reason: "strike truncated"}
		}
		strike = body[:strikeBytes]
		locTable = body[strikeBytes:]
	}

	// nChars counts the coded [firstChar..lastChar] range plus one trailing
	// "missing" glyph slot; the location table needs one more entry than
	// that to bound the last glyph's width.
	nChars := int(rec.lastChar) - int(rec.firstChar) + 2
	locCount := nChars + 1

	if len(locTable) < locCount*2 {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "location table truncated"}
	}
	locs := make([]int, locCount)
	for i := 0; i < locCount; i++ {
		locs[i] = int(bitio.U16(locTable[i*2:], bitio.BigEndian))
	}
	owTable := locTable[locCount*2:]
	if len(owTable) < locCount*2 {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "width/offset table truncated"}
	}

	glyphs, err := strikeGlyphs(rec, strike, stride, locs, owTable)
	if err != nil {
		return nil, err
	}

	props := font.NewProperties().
		Set(font.PropAscent, strconv.Itoa(int(rec.ascent))).
		Set(font.PropDescent, strconv.Itoa(int(rec.descent)))
	f := font.Build(glyphs, props)
	if _, ok := f.GlyphByTag("missing"); ok {
		f = f.SetProperty(font.PropDefaultChar, "missing")
	}
	return f, nil
}

// strikeGlyphs walks the location and width/offset tables in lockstep,
// cropping one glyph per coded slot plus the trailing "missing" slot.
// locs must hold one more entry than owTable has records; a sentinel
// (0xFF, 0xFF) width/offset pair marks an absent glyph.
func strikeGlyphs(rec fontRec, strike []byte, stride int, locs []int, owTable []byte) ([]font.Glyph, error) {
	nSlots := len(locs) - 1
	if len(owTable) < nSlots*2 {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "width/offset table truncated"}
	}
	var glyphs []font.Glyph
	missing := nSlots - 1 // the trailing slot past lastChar
	for i := 0; i < nSlots; i++ {
		offsetByte := owTable[i*2]
		widthByte := owTable[i*2+1]
		if offsetByte == 0xFF && widthByte == 0xFF {
			continue
		}
		left := locs[i]
		right := locs[i+1]
		if right < left || right > stride*8 {
			return nil, &bitfont.BadStructureError{Format: formatName, Reason: "location table offsets inconsistent"}
		}
		w := right - left
		r := cropStrike(strike, stride, int(rec.fRectHeight), left, w)

		woWidth := int(widthByte)
		leftBearing := int(int8(offsetByte)) + int(rec.kernMax)
		rightBearing := woWidth - w - leftBearing

		g := font.New(r).WithBearings(leftBearing, rightBearing)
		if i == missing {
			g = g.WithTag("missing")
		} else {
			g = g.WithCodepoint([]byte{byte(int(rec.firstChar) + i)})
		}
		glyphs = append(glyphs, g)
	}
	return glyphs, nil
}

func cropStrike(strike []byte, stride, height, left, width int) raster.Raster {
	r := raster.New(width, height)
	for y := 0; y < height; y++ {
		row := strike[y*stride : (y+1)*stride]
		for x := 0; x < width; x++ {
			if bitio.GetBit(row, left+x, bitio.MSBFirst) {
				r = r.Set(x, y, true)
			}
		}
	}
	return r
}

func diagOrDefault(d bitfont.Diagnostics) bitfont.Diagnostics {
	if d == nil {
		return bitfont.DiscardDiagnostics{}
	}
	return d
}
