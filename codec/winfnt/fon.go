package winfnt

import (
	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
	"bitfont.dev/go/bitfont/container"
	"bitfont.dev/go/bitfont/font"
)

const fonFormat = "windows-fon"

// DecodeFON extracts every FNT resource from an MZ/NE/PE/LX executable
// container.
func DecodeFON(s *container.Stream, d bitfont.Diagnostics) ([]*font.Font, error) {
	d = diagOrDefault(d)
	data, err := readAll(s)
	if err != nil {
		return nil, err
	}
	if len(data) < 0x40 || data[0] != 'M' || data[1] != 'Z' {
		return nil, &bitfont.BadStructureError{Format: fonFormat, Reason: "missing MZ stub"}
	}
	innerOff := int(bitio.U32(data[0x3c:], bitio.LittleEndian))
	if innerOff+2 > len(data) {
		return nil, &bitfont.BadStructureError{Format: fonFormat, Reason: "e_lfanew out of range"}
	}

	var payloads [][]byte
	switch {
	case data[innerOff] == 'N' && data[innerOff+1] == 'E':
		payloads, err = extractNE(data, innerOff, d)
	case innerOff+3 < len(data) && data[innerOff] == 'P' && data[innerOff+1] == 'E' && data[innerOff+2] == 0 && data[innerOff+3] == 0:
		payloads, err = extractPE(data, innerOff, d)
	case data[innerOff] == 'L' && data[innerOff+1] == 'X':
		payloads, err = extractLX(data, innerOff, d)
	default:
		return nil, &bitfont.UnsupportedFeatureError{Format: fonFormat, Feature: "unrecognized inner executable magic"}
	}
	if err != nil {
		return nil, err
	}

	var fonts []*font.Font
	for _, p := range payloads {
		fn, err := decodeBytes(p, d)
		if err != nil {
			d.Warnf("%s: skipping one FNT resource: %v", fonFormat, err)
			continue
		}
		fonts = append(fonts, fn)
	}
	if len(fonts) == 0 {
		return nil, &bitfont.BadStructureError{Format: fonFormat, Reason: "no FNT resources found"}
	}
	return fonts, nil
}

// extractNE walks the NE Resource Table at ne_offset+0x24.
func extractNE(data []byte, neOff int, d bitfont.Diagnostics) ([][]byte, error) {
	const format = fonFormat
	rtOff := neOff + 0x24
	if rtOff+2 > len(data) {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "NE resource table offset out of range"}
	}
	rsrcTableOffset := int(bitio.U16(data[rtOff:], bitio.LittleEndian))
	base := neOff + rsrcTableOffset
	if base+2 > len(data) {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "NE resource table out of range"}
	}
	shift := int(bitio.U16(data[base:], bitio.LittleEndian))
	p := base + 2

	osType := byte(0)
	if neOff+0x36 < len(data) {
		osType = data[neOff+0x36]
	}
	fontTypeID := uint16(0x8008)
	if osType == 1 {
		fontTypeID = 7
	}

	var payloads [][]byte
	for p+2 <= len(data) {
		typeID := bitio.U16(data[p:], bitio.LittleEndian)
		if typeID == 0 {
			break
		}
		p += 2
		if p+2 > len(data) {
			break
		}
		count := int(bitio.U16(data[p:], bitio.LittleEndian))
		p += 2 + 4 // count field, then reserved(4)
		for i := 0; i < count; i++ {
			if p+12 > len(data) {
				return payloads, &bitfont.BadStructureError{Format: format, Reason: "NE resource entry truncated"}
			}
			start := int(bitio.U16(data[p:], bitio.LittleEndian)) << shift
			size := int(bitio.U16(data[p+2:], bitio.LittleEndian)) << shift
			p += 12
			if typeID&0x7fff == fontTypeID&0x7fff {
				if start >= 0 && start+size <= len(data) && size > 0 {
					payloads = append(payloads, data[start:start+size])
				}
			}
		}
	}
	return payloads, nil
}

// extractPE walks the .rsrc section's Resource Directory,
// accepting only type 0x08 (RT_FONT) at the top level and every entry at
// deeper levels.
func extractPE(data []byte, peOff int, d bitfont.Diagnostics) ([][]byte, error) {
	const format = fonFormat
	optHeaderSize := int(bitio.U16(data[peOff+0x14:], bitio.LittleEndian))
	numSections := int(bitio.U16(data[peOff+0x06:], bitio.LittleEndian))
	sectionTableOff := peOff + 0x18 + optHeaderSize

	var rsrcVA, rsrcRaw, rsrcSize int
	for i := 0; i < numSections; i++ {
		p := sectionTableOff + i*40
		if p+40 > len(data) {
			break
		}
		name := string(trimNull(data[p : p+8]))
		if name != ".rsrc" {
			continue
		}
		rsrcSize = int(bitio.U32(data[p+8:], bitio.LittleEndian))
		rsrcVA = int(bitio.U32(data[p+12:], bitio.LittleEndian))
		rsrcRaw = int(bitio.U32(data[p+20:], bitio.LittleEndian))
	}
	if rsrcSize == 0 {
		return nil, &bitfont.BadStructureError{Format: format, Reason: ".rsrc section not found"}
	}

	var payloads [][]byte
	walkPEDir(data, rsrcRaw, rsrcRaw, rsrcVA, 0, &payloads)
	return payloads, nil
}

func walkPEDir(data []byte, dirOff, rsrcRaw, rsrcVA, depth int, out *[][]byte) {
	if dirOff+16 > len(data) {
		return
	}
	numNamed := int(bitio.U16(data[dirOff+12:], bitio.LittleEndian))
	numID := int(bitio.U16(data[dirOff+14:], bitio.LittleEndian))
	total := numNamed + numID
	for i := 0; i < total; i++ {
		p := dirOff + 16 + i*8
		if p+8 > len(data) {
			return
		}
		id := bitio.U32(data[p:], bitio.LittleEndian)
		offsetField := bitio.U32(data[p+4:], bitio.LittleEndian)
		if depth == 0 && id != 0x08 {
			continue
		}
		isDir := offsetField&0x80000000 != 0
		child := rsrcRaw + int(offsetField&0x7fffffff)
		if isDir {
			walkPEDir(data, child, rsrcRaw, rsrcVA, depth+1, out)
			continue
		}
		if child+16 > len(data) {
			continue
		}
		dataRVA := int(bitio.U32(data[child:], bitio.LittleEndian))
		size := int(bitio.U32(data[child+4:], bitio.LittleEndian))
		payloadOff := rsrcRaw + (dataRVA - rsrcVA)
		if payloadOff >= 0 && payloadOff+size <= len(data) && size > 0 {
			*out = append(*out, data[payloadOff:payloadOff+size])
		}
	}
}

func trimNull(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
