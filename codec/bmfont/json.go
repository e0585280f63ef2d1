package bmfont

import (
	"encoding/json"

	"bitfont.dev/go/bitfont"
)

// jsonFont mirrors the AngelCode BMFont JSON descriptor schema,
// decoded with the standard library's encoding/json: the same field set
// as xmlFont, under the same standard tag names, with arrays instead of
// child elements.
type jsonFont struct {
	Pages    []string      `json:"pages"`
	Chars    []jsonChar    `json:"chars"`
	Info     jsonInfo      `json:"info"`
	Common   jsonCommon    `json:"common"`
	Kernings []jsonKerning `json:"kernings"`
}

type jsonInfo struct {
	Face     string `json:"face"`
	Size     int    `json:"size"`
	Bold     int    `json:"bold"`
	Italic   int    `json:"italic"`
	Charset  string `json:"charset"`
	Unicode  int    `json:"unicode"`
	StretchH int    `json:"stretchH"`
	Smooth   int    `json:"smooth"`
	AA       int    `json:"aa"`
	Padding  [4]int `json:"padding"`
	Spacing  [2]int `json:"spacing"`
	Outline  int    `json:"outline"`
}

type jsonCommon struct {
	LineHeight int `json:"lineHeight"`
	Base       int `json:"base"`
	ScaleW     int `json:"scaleW"`
	ScaleH     int `json:"scaleH"`
	Pages      int `json:"pages"`
	Packed     int `json:"packed"`
	AlphaChnl  int `json:"alphaChnl"`
	RedChnl    int `json:"redChnl"`
	GreenChnl  int `json:"greenChnl"`
	BlueChnl   int `json:"blueChnl"`
}

type jsonChar struct {
	ID       int `json:"id"`
	X        int `json:"x"`
	Y        int `json:"y"`
	Width    int `json:"width"`
	Height   int `json:"height"`
	XOffset  int `json:"xoffset"`
	YOffset  int `json:"yoffset"`
	XAdvance int `json:"xadvance"`
	Page     int `json:"page"`
	Chnl     int `json:"chnl"`
}

type jsonKerning struct {
	First  int `json:"first"`
	Second int `json:"second"`
	Amount int `json:"amount"`
}

// parseJSON parses a BMFont JSON descriptor.
func parseJSON(data []byte) (descriptor, error) {
	var j jsonFont
	if err := json.Unmarshal(data, &j); err != nil {
		return descriptor{}, &bitfont.BadStructureError{Format: binaryFormat, Reason: "malformed JSON descriptor: " + err.Error()}
	}

	var d descriptor
	d.info = info{
		face:     j.Info.Face,
		size:     j.Info.Size,
		bold:     j.Info.Bold != 0,
		italic:   j.Info.Italic != 0,
		unicode:  j.Info.Unicode != 0,
		smooth:   j.Info.Smooth != 0,
		stretchH: j.Info.StretchH,
		aa:       j.Info.AA,
		padding:  j.Info.Padding,
		spacing:  j.Info.Spacing,
		outline:  j.Info.Outline,
	}
	d.common = common{
		lineHeight: j.Common.LineHeight,
		base:       j.Common.Base,
		scaleW:     j.Common.ScaleW,
		scaleH:     j.Common.ScaleH,
		pages:      j.Common.Pages,
		packed:     j.Common.Packed != 0,
		alphaChnl:  j.Common.AlphaChnl,
		redChnl:    j.Common.RedChnl,
		greenChnl:  j.Common.GreenChnl,
		blueChnl:   j.Common.BlueChnl,
	}
	d.pages = append([]string(nil), j.Pages...)
	for _, c := range j.Chars {
		d.chars = append(d.chars, charRec{
			id: c.ID, x: c.X, y: c.Y, w: c.Width, h: c.Height,
			xoffset: c.XOffset, yoffset: c.YOffset, xadvance: c.XAdvance,
			page: c.Page, chnl: c.Chnl,
		})
	}
	for _, k := range j.Kernings {
		d.kernings = append(d.kernings, kerningRec{first: k.First, second: k.Second, amount: k.Amount})
	}
	return d, nil
}
