package winfnt

import (
	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
)

// LX (32-bit OS/2) resource and EXEPACK constants, per altsan.org's
// gpifont.c / os2res.h.
const (
	os2ResFontDir  = 6
	os2ResFontFace = 7

	op32Valid     = 0x0000
	op32IterData  = 0x0001
	op32IterData2 = 0x0005
)

type lxHeader struct {
	pageshift uint32
	ldrsize   uint32
	ldrsum    uint32
	objTbl    uint32
	objMap    uint32
	resTbl    uint32
	cres      uint32
	rnamTbl   uint32
	datapage  uint32
}

func readLXHeader(data []byte, base int) (lxHeader, error) {
	var h lxHeader
	if base+132 > len(data) {
		return h, &bitfont.BadStructureError{Format: fonFormat, Reason: "LX header truncated"}
	}
	h.pageshift = bitio.U32(data[base+44:], bitio.LittleEndian)
	h.ldrsize = bitio.U32(data[base+56:], bitio.LittleEndian)
	h.ldrsum = bitio.U32(data[base+60:], bitio.LittleEndian)
	h.objTbl = bitio.U32(data[base+64:], bitio.LittleEndian)
	h.objMap = bitio.U32(data[base+72:], bitio.LittleEndian)
	h.resTbl = bitio.U32(data[base+80:], bitio.LittleEndian)
	h.cres = bitio.U32(data[base+84:], bitio.LittleEndian)
	h.rnamTbl = bitio.U32(data[base+88:], bitio.LittleEndian)
	h.datapage = bitio.U32(data[base+128:], bitio.LittleEndian)
	return h, nil
}

type lxResourceEntry struct {
	typ    uint16
	name   uint16
	cb     uint32
	obj    uint16
	offset uint32
}

const lxRTEntrySize = 14

func readLXResourceEntry(data []byte, off int) (lxResourceEntry, bool) {
	if off+lxRTEntrySize > len(data) {
		return lxResourceEntry{}, false
	}
	return lxResourceEntry{
		typ:    bitio.U16(data[off:], bitio.LittleEndian),
		name:   bitio.U16(data[off+2:], bitio.LittleEndian),
		cb:     bitio.U32(data[off+4:], bitio.LittleEndian),
		obj:    bitio.U16(data[off+8:], bitio.LittleEndian),
		offset: bitio.U32(data[off+10:], bitio.LittleEndian),
	}, true
}

type lxObjectEntry struct {
	pagemap uint32
	mapsize uint32
}

const lxOTEntrySize = 24

func readLXObjectEntry(data []byte, off int) (lxObjectEntry, bool) {
	if off+lxOTEntrySize > len(data) {
		return lxObjectEntry{}, false
	}
	return lxObjectEntry{
		pagemap: bitio.U32(data[off+12:], bitio.LittleEndian),
		mapsize: bitio.U32(data[off+16:], bitio.LittleEndian),
	}, true
}

type lxPageMapEntry struct {
	dataOffset uint32
	size       uint16
	flags      uint16
}

const lxOPMEntrySize = 8

func readLXPageMapEntry(data []byte, off int) (lxPageMapEntry, bool) {
	if off+lxOPMEntrySize > len(data) {
		return lxPageMapEntry{}, false
	}
	return lxPageMapEntry{
		dataOffset: bitio.U32(data[off:], bitio.LittleEndian),
		size:       bitio.U16(data[off+4:], bitio.LittleEndian),
		flags:      bitio.U16(data[off+6:], bitio.LittleEndian),
	}, true
}

// extractLX walks the LX container: resource table ->
// owning object -> page map -> decompressed page concatenation -> slice
// at rte.offset.
func extractLX(data []byte, base int, d bitfont.Diagnostics) ([][]byte, error) {
	const format = fonFormat
	h, err := readLXHeader(data, base)
	if err != nil {
		return nil, err
	}
	if h.cres == 0 {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "no resources in LX file"}
	}

	var payloads [][]byte
	for i := uint32(0); i < h.cres; i++ {
		off := base + int(h.resTbl) + int(i)*lxRTEntrySize
		rte, ok := readLXResourceEntry(data, off)
		if !ok {
			break
		}
		if rte.typ != os2ResFontFace {
			if rte.typ == os2ResFontDir {
				d.Warnf("%s: skipping OS/2 font-directory resource %d (indirect font IDs unsupported)", format, rte.name)
			}
			continue
		}
		buf, err := lxExtractResource(data, h, rte, base, d)
		if err != nil {
			d.Warnf("%s: resource %d: %v", format, rte.name, err)
			continue
		}
		start := int(rte.offset)
		end := start + int(rte.cb)
		if start < 0 || start > len(buf) {
			continue
		}
		if end > len(buf) || end <= start {
			end = len(buf)
		}
		payloads = append(payloads, buf[start:end])
	}
	return payloads, nil
}

func lxExtractResource(data []byte, h lxHeader, rte lxResourceEntry, base int, d bitfont.Diagnostics) ([]byte, error) {
	const format = fonFormat
	if rte.obj == 0 {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "resource has no owning object"}
	}
	objOff := base + int(h.objTbl) + int(rte.obj-1)*lxOTEntrySize
	obj, ok := readLXObjectEntry(data, objOff)
	if !ok {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "object table entry out of range"}
	}

	pages := make([]lxPageMapEntry, 0, obj.mapsize)
	cbData := uint32(0)
	for p := uint32(0); p < obj.mapsize; p++ {
		pmOff := base + int(h.objMap) + int(obj.pagemap-1+p)*lxOPMEntrySize
		pme, ok := readLXPageMapEntry(data, pmOff)
		if !ok {
			break
		}
		if pme.flags == op32IterData || pme.flags == op32IterData2 {
			cbData += 4096
		} else {
			cbData += uint32(pme.size)
		}
		pages = append(pages, pme)
	}
	if cbData < rte.offset+rte.cb {
		return nil, &bitfont.BadStructureError{Format: format, Reason: "object too small for resource"}
	}

	var buf []byte
	for _, pme := range pages {
		pageAddr := int(h.datapage) + int(pme.dataOffset<<h.pageshift)
		if pageAddr < 0 || pageAddr+int(pme.size) > len(data) {
			continue
		}
		pageData := data[pageAddr : pageAddr+int(pme.size)]
		switch pme.flags {
		case op32IterData:
			buf = append(buf, lxUnpack1(pageData)...)
		case op32IterData2:
			buf = append(buf, lxUnpack2(pageData)...)
		case op32Valid:
			buf = append(buf, pageData...)
		}
	}
	return buf, nil
}

// lxUnpack1 decodes an EXEPACK1 page: a run of (reps:u16, len:u16,
// bytes[len]) groups, each group repeated reps times.
func lxUnpack1(page []byte) []byte {
	if len(page) > 4096 {
		return page
	}
	var out []byte
	in := 0
	for in+4 <= len(page) {
		reps := int(bitio.U16(page[in:], bitio.LittleEndian))
		if reps == 0 {
			break
		}
		in += 2
		length := int(bitio.U16(page[in:], bitio.LittleEndian))
		in += 2
		if in+length > len(page) {
			break
		}
		if len(out)+reps*length > 4096 {
			break
		}
		chunk := page[in : in+length]
		for r := 0; r < reps; r++ {
			out = append(out, chunk...)
		}
		in += length
		if in > len(page) {
			break
		}
	}
	return out
}

// lxUnpack2 decodes an EXEPACK2 page, a modified LZ variant: the case
// flag in bits 1:0 of each control word selects a run-fill, a literal
// block copy, or one of three back-reference shapes: a 9-bit offset in
// case 1, 12-bit offsets in cases 2 and 3.
func lxUnpack2(page []byte) []byte {
	if len(page) > 4096 {
		return page
	}
	var out []byte
	in := 0
	for in < len(page) {
		if in+2 > len(page) {
			break
		}
		control := uint32(bitio.U16(page[in:], bitio.LittleEndian))
		caseFlag := control & 0x3
		switch caseFlag {
		case 0:
			if control&0xff == 0 {
				length := control >> 8
				if length == 0 {
					return out
				}
				if in+2 >= len(page) {
					return out
				}
				fillByte := page[in+2]
				for k := uint32(0); k < length; k++ {
					out = append(out, fillByte)
				}
				in += 3
			} else {
				length := int((control & 0xff) >> 2)
				if in+1+length > len(page) {
					length = len(page) - in - 1
				}
				out = append(out, page[in+1:in+1+length]...)
				in += length + 1
			}
		case 1:
			length1 := int((control >> 2) & 0x3)
			if in+2+length1 > len(page) {
				length1 = max(0, len(page)-in-2)
			}
			out = append(out, page[in+2:in+2+length1]...)
			in += length1 + 2
			length2 := int((control>>4)&0x7) + 3
			backref(&out, -int((control>>7)&0x1ff), length2)
		case 2:
			length := int((control>>2)&0x3) + 3
			backref(&out, -int((control>>4)&0xfff), length)
			in += 2
		case 3:
			if in+4 > len(page) {
				return out
			}
			control32 := bitio.U32(page[in:], bitio.LittleEndian)
			length1 := int((control32 >> 2) & 0xf)
			if in+3+length1 > len(page) {
				length1 = max(0, len(page)-in-3)
			}
			out = append(out, page[in+3:in+3+length1]...)
			in += length1 + 3
			length2 := int((control32 >> 6) & 0x3f)
			backref(&out, -int((control32>>12)&0xfff), length2)
		}
		if in >= len(page) {
			break
		}
	}
	return out
}

// backref copies count bytes one at a time from out[len(out)+sourceOffset]
// forward, matching _copy_byte_seq's overlap-tolerant semantics (a
// negative offset can point into bytes this same call just appended).
func backref(out *[]byte, sourceOffset int, count int) {
	for i := 0; i < count; i++ {
		idx := len(*out) + sourceOffset
		if idx < 0 || idx >= len(*out) {
			return
		}
		*out = append(*out, (*out)[idx])
	}
}
