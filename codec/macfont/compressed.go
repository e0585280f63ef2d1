package macfont

import (
	"bitfont.dev/go/bitfont"
	"bitfont.dev/go/bitfont/bitio"
)

// compressedHeader precedes a compressed NFNT's RLE payload:
// type, compressedLength and decompressedLength, all big-endian.
type compressedHeader struct {
	typ                uint16
	compressedLength    uint32
	decompressedLength  uint32
}

const compressedHeaderSize = 2 + 4 + 4

func readCompressedHeader(data []byte) (compressedHeader, []byte, error) {
	if len(data) < compressedHeaderSize {
		return compressedHeader{}, nil, &bitfont.BadStructureError{Format: formatName, Reason: "compressed NFNT header truncated"}
	}
	h := compressedHeader{
		typ:                bitio.U16(data[0:], bitio.BigEndian),
		compressedLength:   bitio.U32(data[2:], bitio.BigEndian),
		decompressedLength: bitio.U32(data[6:], bitio.BigEndian),
	}
	return h, data[compressedHeaderSize:], nil
}

// inflateCompressedStrike reverses the NFNT's inverse-bit RLE: reading the
// compressed payload from its last byte backwards, each bit of a control
// byte (taken LSB-first) selects either a literal zero byte or the next
// byte pulled from the same backward stream. The fully-decoded byte
// stream, read forwards, is then XOR-chained row by row (each row XORed
// against the previous one) to recover the actual strike bitmap, per the
// format's documented encoding.
func inflateCompressedStrike(payload []byte, stride, height int) ([]byte, error) {
	i := len(payload) - 1
	next := func() (byte, bool) {
		if i < 0 {
			return 0, false
		}
		b := payload[i]
		i--
		return b, true
	}

	raw := make([]byte, 0, stride*height)
	for {
		ctrl, ok := next()
		if !ok {
			break
		}
		for bit := 0; bit < 8; bit++ {
			if (ctrl>>uint(bit))&1 != 0 {
				raw = append(raw, 0)
				continue
			}
			b, ok := next()
			if !ok {
				break
			}
			raw = append(raw, b)
		}
	}
	for l, r := 0, len(raw)-1; l < r; l, r = l+1, r-1 {
		raw[l], raw[r] = raw[r], raw[l]
	}

	need := stride * height
	if len(raw) < need {
		return nil, &bitfont.BadStructureError{Format: formatName, Reason: "decompressed NFNT strike shorter than fRectHeight*rowWords"}
	}
	raw = raw[:need]

	out := make([]byte, need)
	copy(out[:stride], raw[:stride])
	for y := 1; y < height; y++ {
		cur := raw[y*stride : (y+1)*stride]
		prev := out[(y-1)*stride : y*stride]
		row := out[y*stride : (y+1)*stride]
		for x := range row {
			row[x] = cur[x] ^ prev[x]
		}
	}
	return out, nil
}
