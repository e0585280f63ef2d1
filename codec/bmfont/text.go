package bmfont

import (
	"strconv"
	"strings"
)

// tokenizeLine splits a BMFont text-descriptor line into the tag and its
// key=value pairs, honoring double-quoted values that may contain spaces
//.
func tokenizeLine(line string) (tag string, kv map[string]string) {
	kv = map[string]string{}
	fields := splitRespectingQuotes(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "", kv
	}
	tag = fields[0]
	for _, f := range fields[1:] {
		eq := strings.IndexByte(f, '=')
		if eq < 0 {
			continue
		}
		key := f[:eq]
		val := f[eq+1:]
		val = strings.Trim(val, `"`)
		kv[key] = val
	}
	return tag, kv
}

func splitRespectingQuotes(s string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			cur.WriteByte(c)
		case c == ' ' && !inQuotes:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func kvInt(kv map[string]string, key string) int {
	n, _ := strconv.Atoi(kv[key])
	return n
}

func kvInts(kv map[string]string, key string, n int) []int {
	out := make([]int, n)
	parts := strings.Split(kv[key], ",")
	for i := 0; i < n && i < len(parts); i++ {
		out[i], _ = strconv.Atoi(strings.TrimSpace(parts[i]))
	}
	return out
}

func kvBool(kv map[string]string, key string) bool {
	return kvInt(kv, key) != 0
}

// parseText parses a BMFont plain-text descriptor.
func parseText(data []byte) descriptor {
	var d descriptor
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		tag, kv := tokenizeLine(line)
		switch tag {
		case "info":
			p := kvInts(kv, "padding", 4)
			sp := kvInts(kv, "spacing", 2)
			d.info = info{
				face:     kv["face"],
				size:     kvInt(kv, "size"),
				bold:     kvBool(kv, "bold"),
				italic:   kvBool(kv, "italic"),
				unicode:  kvBool(kv, "unicode"),
				smooth:   kvBool(kv, "smooth"),
				charSet:  kvInt(kv, "charset"),
				stretchH: kvInt(kv, "stretchH"),
				aa:       kvInt(kv, "aa"),
				padding:  [4]int{p[0], p[1], p[2], p[3]},
				spacing:  [2]int{sp[0], sp[1]},
				outline:  kvInt(kv, "outline"),
			}
		case "common":
			d.common = common{
				lineHeight: kvInt(kv, "lineHeight"),
				base:       kvInt(kv, "base"),
				scaleW:     kvInt(kv, "scaleW"),
				scaleH:     kvInt(kv, "scaleH"),
				pages:      kvInt(kv, "pages"),
				packed:     kvBool(kv, "packed"),
				alphaChnl:  kvInt(kv, "alphaChnl"),
				redChnl:    kvInt(kv, "redChnl"),
				greenChnl:  kvInt(kv, "greenChnl"),
				blueChnl:   kvInt(kv, "blueChnl"),
			}
		case "page":
			for len(d.pages) <= kvInt(kv, "id") {
				d.pages = append(d.pages, "")
			}
			d.pages[kvInt(kv, "id")] = kv["file"]
		case "char":
			d.chars = append(d.chars, charRec{
				id:       kvInt(kv, "id"),
				x:        kvInt(kv, "x"),
				y:        kvInt(kv, "y"),
				w:        kvInt(kv, "width"),
				h:        kvInt(kv, "height"),
				xoffset:  kvInt(kv, "xoffset"),
				yoffset:  kvInt(kv, "yoffset"),
				xadvance: kvInt(kv, "xadvance"),
				page:     kvInt(kv, "page"),
				chnl:     kvInt(kv, "chnl"),
			})
		case "kerning":
			d.kernings = append(d.kernings, kerningRec{
				first:  kvInt(kv, "first"),
				second: kvInt(kv, "second"),
				amount: kvInt(kv, "amount"),
			})
		}
	}
	return d
}

func quote(s string) string { return `"` + s + `"` }

func joinInts(vs ...int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// writeText serializes d as a BMFont plain-text descriptor.
func writeText(d descriptor) []byte {
	var b strings.Builder
	b.WriteString("info face=" + quote(d.info.face) +
		" size=" + strconv.Itoa(d.info.size) +
		" bold=" + strconv.Itoa(boolInt(d.info.bold)) +
		" italic=" + strconv.Itoa(boolInt(d.info.italic)) +
		" charset=" + quote("") +
		" unicode=" + strconv.Itoa(boolInt(d.info.unicode)) +
		" stretchH=" + strconv.Itoa(d.info.stretchH) +
		" smooth=" + strconv.Itoa(boolInt(d.info.smooth)) +
		" aa=" + strconv.Itoa(d.info.aa) +
		" padding=" + joinInts(d.info.padding[:]...) +
		" spacing=" + joinInts(d.info.spacing[:]...) +
		" outline=" + strconv.Itoa(d.info.outline) + "\n")
	b.WriteString("common lineHeight=" + strconv.Itoa(d.common.lineHeight) +
		" base=" + strconv.Itoa(d.common.base) +
		" scaleW=" + strconv.Itoa(d.common.scaleW) +
		" scaleH=" + strconv.Itoa(d.common.scaleH) +
		" pages=" + strconv.Itoa(d.common.pages) +
		" packed=" + strconv.Itoa(boolInt(d.common.packed)) +
		" alphaChnl=" + strconv.Itoa(d.common.alphaChnl) +
		" redChnl=" + strconv.Itoa(d.common.redChnl) +
		" greenChnl=" + strconv.Itoa(d.common.greenChnl) +
		" blueChnl=" + strconv.Itoa(d.common.blueChnl) + "\n")
	for i, p := range d.pages {
		b.WriteString("page id=" + strconv.Itoa(i) + " file=" + quote(p) + "\n")
	}
	b.WriteString("chars count=" + strconv.Itoa(len(d.chars)) + "\n")
	for _, c := range d.chars {
		b.WriteString("char id=" + strconv.Itoa(c.id) +
			" x=" + strconv.Itoa(c.x) + " y=" + strconv.Itoa(c.y) +
			" width=" + strconv.Itoa(c.w) + " height=" + strconv.Itoa(c.h) +
			" xoffset=" + strconv.Itoa(c.xoffset) + " yoffset=" + strconv.Itoa(c.yoffset) +
			" xadvance=" + strconv.Itoa(c.xadvance) +
			" page=" + strconv.Itoa(c.page) + " chnl=" + strconv.Itoa(c.chnl) + "\n")
	}
	if len(d.kernings) > 0 {
		b.WriteString("kernings count=" + strconv.Itoa(len(d.kernings)) + "\n")
		for _, k := range d.kernings {
			b.WriteString("kerning first=" + strconv.Itoa(k.first) +
				" second=" + strconv.Itoa(k.second) +
				" amount=" + strconv.Itoa(k.amount) + "\n")
		}
	}
	return []byte(b.String())
}
