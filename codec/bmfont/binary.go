package bmfont

import (
	"strconv"

	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
)

const binaryFormat = "bmfont"

// parseBinary parses a BMF binary descriptor: header "BMF"+version byte,
// then a sequence of (typeId:u8, blkSize:u32, payload) blocks with
// typeIds 1..5 = info, common, pages, chars, kernings.
func parseBinary(data []byte) (descriptor, error) {
	var d descriptor
	if len(data) < 4 || data[0] != 'B' || data[1] != 'M' || data[2] != 'F' {
		return d, &bitfont.BadStructureError{Format: binaryFormat, Reason: "missing BMF magic"}
	}
	p := 4
	for p+5 <= len(data) {
		blockType := data[p]
		blkSize := int(bitio.U32(data[p+1:], bitio.LittleEndian))
		p += 5
		if p+blkSize > len(data) {
			return d, &bitfont.BadStructureError{Format: binaryFormat, Reason: "block payload truncated"}
		}
		payload := data[p : p+blkSize]
		p += blkSize
		switch blockType {
		case 1:
			d.info = parseBinaryInfo(payload)
		case 2:
			d.common = parseBinaryCommon(payload)
		case 3:
			d.pages = parseBinaryPages(payload)
		case 4:
			d.chars = parseBinaryChars(payload)
		case 5:
			d.kernings = parseBinaryKernings(payload)
		default:
			return d, &bitfont.UnsupportedVersionError{Format: binaryFormat, Version: "block id " + strconv.Itoa(int(blockType))}
		}
	}
	return d, nil
}

func parseBinaryInfo(b []byte) info {
	if len(b) < 14 {
		return info{}
	}
	bitField := b[2]
	name := cStringAt(b, 14)
	return info{
		size:     int(int16(bitio.U16(b[0:], bitio.LittleEndian))),
		bold:     bitField&0x01 != 0,
		italic:   bitField&0x02 != 0,
		unicode:  bitField&0x04 != 0,
		smooth:   bitField&0x08 != 0,
		charSet:  int(b[3]),
		stretchH: int(bitio.U16(b[4:], bitio.LittleEndian)),
		aa:       int(b[6]),
		padding:  [4]int{int(b[7]), int(b[8]), int(b[9]), int(b[10])},
		spacing:  [2]int{int(b[11]), int(b[12])},
		outline:  int(b[13]),
		face:     name,
	}
}

func cStringAt(b []byte, offset int) string {
	if offset >= len(b) {
		return ""
	}
	end := offset
	for end < len(b) && b[end] != 0 {
		end++
	}
	return string(b[offset:end])
}

func parseBinaryCommon(b []byte) common {
	if len(b) < 15 {
		return common{}
	}
	return common{
		lineHeight: int(bitio.U16(b[0:], bitio.LittleEndian)),
		base:       int(bitio.U16(b[2:], bitio.LittleEndian)),
		scaleW:     int(bitio.U16(b[4:], bitio.LittleEndian)),
		scaleH:     int(bitio.U16(b[6:], bitio.LittleEndian)),
		pages:      int(bitio.U16(b[8:], bitio.LittleEndian)),
		packed:     b[10]&0x01 != 0,
		alphaChnl:  int(b[11]),
		redChnl:    int(b[12]),
		greenChnl:  int(b[13]),
		blueChnl:   int(b[14]),
	}
}

func parseBinaryPages(b []byte) []string {
	var pages []string
	start := 0
	for i, c := range b {
		if c == 0 {
			pages = append(pages, string(b[start:i]))
			start = i + 1
		}
	}
	return pages
}

func parseBinaryChars(b []byte) []charRec {
	const recSize = 20
	n := len(b) / recSize
	out := make([]charRec, 0, n)
	for i := 0; i < n; i++ {
		p := i * recSize
		out = append(out, charRec{
			id:       int(bitio.U32(b[p:], bitio.LittleEndian)),
			x:        int(bitio.U16(b[p+4:], bitio.LittleEndian)),
			y:        int(bitio.U16(b[p+6:], bitio.LittleEndian)),
			w:        int(bitio.U16(b[p+8:], bitio.LittleEndian)),
			h:        int(bitio.U16(b[p+10:], bitio.LittleEndian)),
			xoffset:  int(int16(bitio.U16(b[p+12:], bitio.LittleEndian))),
			yoffset:  int(int16(bitio.U16(b[p+14:], bitio.LittleEndian))),
			xadvance: int(int16(bitio.U16(b[p+16:], bitio.LittleEndian))),
			page:     int(b[p+18]),
			chnl:     int(b[p+19]),
		})
	}
	return out
}

func parseBinaryKernings(b []byte) []kerningRec {
	const recSize = 10
	n := len(b) / recSize
	out := make([]kerningRec, 0, n)
	for i := 0; i < n; i++ {
		p := i * recSize
		out = append(out, kerningRec{
			first:  int(bitio.U32(b[p:], bitio.LittleEndian)),
			second: int(bitio.U32(b[p+4:], bitio.LittleEndian)),
			amount: int(int16(bitio.U16(b[p+8:], bitio.LittleEndian))),
		})
	}
	return out
}

// writeBinary serializes d as a BMF binary descriptor (version 3).
func writeBinary(d descriptor) []byte {
	var out []byte
	out = append(out, 'B', 'M', 'F', 3)

	infoPayload := make([]byte, 14+len(d.info.face)+1)
	bitio.PutU16(infoPayload[0:], uint16(int16(d.info.size)), bitio.LittleEndian)
	var bitField byte
	if d.info.bold {
		bitField |= 0x01
	}
	if d.info.italic {
		bitField |= 0x02
	}
	if d.info.unicode {
		bitField |= 0x04
	}
	if d.info.smooth {
		bitField |= 0x08
	}
	infoPayload[2] = bitField
	infoPayload[3] = byte(d.info.charSet)
	bitio.PutU16(infoPayload[4:], uint16(d.info.stretchH), bitio.LittleEndian)
	infoPayload[6] = byte(d.info.aa)
	for i := 0; i < 4; i++ {
		infoPayload[7+i] = byte(d.info.padding[i])
	}
	infoPayload[11] = byte(d.info.spacing[0])
	infoPayload[12] = byte(d.info.spacing[1])
	infoPayload[13] = byte(d.info.outline)
	copy(infoPayload[14:], d.info.face)
	out = appendBlock(out, 1, infoPayload)

	commonPayload := make([]byte, 15)
	bitio.PutU16(commonPayload[0:], uint16(d.common.lineHeight), bitio.LittleEndian)
	bitio.PutU16(commonPayload[2:], uint16(d.common.base), bitio.LittleEndian)
	bitio.PutU16(commonPayload[4:], uint16(d.common.scaleW), bitio.LittleEndian)
	bitio.PutU16(commonPayload[6:], uint16(d.common.scaleH), bitio.LittleEndian)
	bitio.PutU16(commonPayload[8:], uint16(d.common.pages), bitio.LittleEndian)
	if d.common.packed {
		commonPayload[10] = 1
	}
	commonPayload[11] = byte(d.common.alphaChnl)
	commonPayload[12] = byte(d.common.redChnl)
	commonPayload[13] = byte(d.common.greenChnl)
	commonPayload[14] = byte(d.common.blueChnl)
	out = appendBlock(out, 2, commonPayload)

	var pagesPayload []byte
	for _, p := range d.pages {
		pagesPayload = append(pagesPayload, []byte(p)...)
		pagesPayload = append(pagesPayload, 0)
	}
	out = appendBlock(out, 3, pagesPayload)

	charsPayload := make([]byte, len(d.chars)*20)
	for i, c := range d.chars {
		p := i * 20
		bitio.PutU32(charsPayload[p:], uint32(c.id), bitio.LittleEndian)
		bitio.PutU16(charsPayload[p+4:], uint16(c.x), bitio.LittleEndian)
		bitio.PutU16(charsPayload[p+6:], uint16(c.y), bitio.LittleEndian)
		bitio.PutU16(charsPayload[p+8:], uint16(c.w), bitio.LittleEndian)
		bitio.PutU16(charsPayload[p+10:], uint16(c.h), bitio.LittleEndian)
		bitio.PutU16(charsPayload[p+12:], uint16(int16(c.xoffset)), bitio.LittleEndian)
		bitio.PutU16(charsPayload[p+14:], uint16(int16(c.yoffset)), bitio.LittleEndian)
		bitio.PutU16(charsPayload[p+16:], uint16(int16(c.xadvance)), bitio.LittleEndian)
		charsPayload[p+18] = byte(c.page)
		charsPayload[p+19] = byte(c.chnl)
	}
	out = appendBlock(out, 4, charsPayload)

	if len(d.kernings) > 0 {
		kerningsPayload := make([]byte, len(d.kernings)*10)
		for i, k := range d.kernings {
			p := i * 10
			bitio.PutU32(kerningsPayload[p:], uint32(k.first), bitio.LittleEndian)
			bitio.PutU32(kerningsPayload[p+4:], uint32(k.second), bitio.LittleEndian)
			bitio.PutU16(kerningsPayload[p+8:], uint16(int16(k.amount)), bitio.LittleEndian)
		}
		out = appendBlock(out, 5, kerningsPayload)
	}

	return out
}

func appendBlock(out []byte, blockType byte, payload []byte) []byte {
	out = append(out, blockType)
	sizeBuf := make([]byte, 4)
	bitio.PutU32(sizeBuf, uint32(len(payload)), bitio.LittleEndian)
	out = append(out, sizeBuf...)
	return append(out, payload...)
}
