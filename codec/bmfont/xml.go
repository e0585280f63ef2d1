package bmfont

import (
	"encoding/xml"
	"strconv"
	"strings"

	"bitfont.dev/go/bitfont"
)

// xmlFont mirrors the AngelCode BMFont XML descriptor schema, decoded
// with the standard library's encoding/xml the same way parseText walks
// the text descriptor's key=value pairs.
type xmlFont struct {
	XMLName  xml.Name    `xml:"font"`
	Info     xmlInfo     `xml:"info"`
	Common   xmlCommon   `xml:"common"`
	Pages    xmlPages    `xml:"pages"`
	Chars    xmlChars    `xml:"chars"`
	Kernings xmlKernings `xml:"kernings"`
}

type xmlInfo struct {
	Face     string `xml:"face,attr"`
	Size     int    `xml:"size,attr"`
	Bold     int    `xml:"bold,attr"`
	Italic   int    `xml:"italic,attr"`
	Charset  string `xml:"charset,attr"`
	Unicode  int    `xml:"unicode,attr"`
	StretchH int    `xml:"stretchH,attr"`
	Smooth   int    `xml:"smooth,attr"`
	AA       int    `xml:"aa,attr"`
	Padding  string `xml:"padding,attr"`
	Spacing  string `xml:"spacing,attr"`
	Outline  int    `xml:"outline,attr"`
}

type xmlCommon struct {
	LineHeight int `xml:"lineHeight,attr"`
	Base       int `xml:"base,attr"`
	ScaleW     int `xml:"scaleW,attr"`
	ScaleH     int `xml:"scaleH,attr"`
	Pages      int `xml:"pages,attr"`
	Packed     int `xml:"packed,attr"`
	AlphaChnl  int `xml:"alphaChnl,attr"`
	RedChnl    int `xml:"redChnl,attr"`
	GreenChnl  int `xml:"greenChnl,attr"`
	BlueChnl   int `xml:"blueChnl,attr"`
}

type xmlPages struct {
	Page []xmlPage `xml:"page"`
}

type xmlPage struct {
	ID   int    `xml:"id,attr"`
	File string `xml:"file,attr"`
}

type xmlChars struct {
	Count int       `xml:"count,attr"`
	Char  []xmlChar `xml:"char"`
}

type xmlChar struct {
	ID       int `xml:"id,attr"`
	X        int `xml:"x,attr"`
	Y        int `xml:"y,attr"`
	Width    int `xml:"width,attr"`
	Height   int `xml:"height,attr"`
	XOffset  int `xml:"xoffset,attr"`
	YOffset  int `xml:"yoffset,attr"`
	XAdvance int `xml:"xadvance,attr"`
	Page     int `xml:"page,attr"`
	Chnl     int `xml:"chnl,attr"`
}

type xmlKernings struct {
	Count   int          `xml:"count,attr"`
	Kerning []xmlKerning `xml:"kerning"`
}

type xmlKerning struct {
	First  int `xml:"first,attr"`
	Second int `xml:"second,attr"`
	Amount int `xml:"amount,attr"`
}

// parseXML parses a BMFont XML descriptor.
func parseXML(data []byte) (descriptor, error) {
	var x xmlFont
	if err := xml.Unmarshal(data, &x); err != nil {
		return descriptor{}, &bitfont.BadStructureError{Format: binaryFormat, Reason: "malformed XML descriptor: " + err.Error()}
	}

	pad := parseIntCSV(x.Info.Padding, 4)
	sp := parseIntCSV(x.Info.Spacing, 2)

	var d descriptor
	d.info = info{
		face:     x.Info.Face,
		size:     x.Info.Size,
		bold:     x.Info.Bold != 0,
		italic:   x.Info.Italic != 0,
		unicode:  x.Info.Unicode != 0,
		smooth:   x.Info.Smooth != 0,
		stretchH: x.Info.StretchH,
		aa:       x.Info.AA,
		padding:  [4]int{pad[0], pad[1], pad[2], pad[3]},
		spacing:  [2]int{sp[0], sp[1]},
		outline:  x.Info.Outline,
	}
	d.common = common{
		lineHeight: x.Common.LineHeight,
		base:       x.Common.Base,
		scaleW:     x.Common.ScaleW,
		scaleH:     x.Common.ScaleH,
		pages:      x.Common.Pages,
		packed:     x.Common.Packed != 0,
		alphaChnl:  x.Common.AlphaChnl,
		redChnl:    x.Common.RedChnl,
		greenChnl:  x.Common.GreenChnl,
		blueChnl:   x.Common.BlueChnl,
	}
	for _, p := range x.Pages.Page {
		for len(d.pages) <= p.ID {
			d.pages = append(d.pages, "")
		}
		d.pages[p.ID] = p.File
	}
	for _, c := range x.Chars.Char {
		d.chars = append(d.chars, charRec{
			id: c.ID, x: c.X, y: c.Y, w: c.Width, h: c.Height,
			xoffset: c.XOffset, yoffset: c.YOffset, xadvance: c.XAdvance,
			page: c.Page, chnl: c.Chnl,
		})
	}
	for _, k := range x.Kernings.Kerning {
		d.kernings = append(d.kernings, kerningRec{first: k.First, second: k.Second, amount: k.Amount})
	}
	return d, nil
}

// parseIntCSV parses a comma-separated attribute value (e.g. padding
// "0,0,0,0") into exactly n ints, zero-filling any entries that are
// missing or malformed.
func parseIntCSV(s string, n int) []int {
	out := make([]int, n)
	if s == "" {
		return out
	}
	parts := strings.Split(s, ",")
	for i := 0; i < n && i < len(parts); i++ {
		v, _ := strconv.Atoi(strings.TrimSpace(parts[i]))
		out[i] = v
	}
	return out
}
