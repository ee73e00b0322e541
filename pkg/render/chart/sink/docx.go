package sink

import (
	"bytes"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fumiama/go-docx"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/render/chart"
	"github.com/matzehuels/wbsgen/pkg/style"
)

const (
	emuPerCm   = 360000
	twipsPerCm = 1440 / 2.54
)

// RenderDOCX writes c as a Word document: one page the size of the canvas
// with every box as a page-anchored rectangle holding its label.
func RenderDOCX(c chart.Chart) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	pageW, err := safecast.Round[int](c.Width * twipsPerCm)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "page width")
	}
	pageH, err := safecast.Round[int](c.Height * twipsPerCm)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "page height")
	}

	anchor := doc.AddParagraph()
	for _, b := range c.Boxes {
		if err := addShape(anchor, b); err != nil {
			return nil, err
		}
	}
	doc.Document.Body.Items = append(doc.Document.Body.Items, &docx.SectPr{
		PgSz:  &docx.PgSz{W: pageW, H: pageH},
		PgMar: &docx.PgMar{},
	})

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write docx")
	}
	return buf.Bytes(), nil
}

func addShape(p *docx.Paragraph, b chart.Box) error {
	x, errX := emu(b.X)
	y, errY := emu(b.Y)
	w, errW := emu(b.W)
	h, errH := emu(b.H)
	for _, err := range []error{errX, errY, errW, errH} {
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "box %s out of range", b.Code)
		}
	}

	s := b.Style
	var line *docx.ALine
	if _, _, _, err := style.ParseHex(s.Stroke); err == nil {
		line = &docx.ALine{W: 9525, SolidFill: solidFill(s.Stroke)}
	} else {
		line = &docx.ALine{NoFill: &struct{}{}}
	}

	run := p.AddAnchorShape(w, h, "WBS "+b.Code, "auto", "rect", line)
	drawing := run.Children[0].(*docx.Drawing)
	drawing.Anchor.PositionH = &docx.WPPositionH{RelativeFrom: "page", PosOffset: x}
	drawing.Anchor.PositionV = &docx.WPPositionV{RelativeFrom: "page", PosOffset: y}

	shape := drawing.Anchor.Graphic.GraphicData.Shape
	if _, _, _, err := style.ParseHex(s.Fill); err == nil {
		shape.SpPr.NoFill = nil
		shape.SpPr.SolidFill = solidFill(s.Fill)
	}

	inset, _ := emu(labelPadding)
	shape.BodyPr = &docx.WPSBodyPr{
		Wrap:      "square",
		LIns:      inset,
		RIns:      inset,
		Anchor:    "ctr",
		NoAutofit: &struct{}{},
	}

	var text docx.Paragraph
	text.Justification(docxAlign(s.Align))
	r := text.AddText(b.Label()).Size(strconv.Itoa(halfPoints(s.FontSize)))
	if s.FontColor != "" {
		r.Color(hexVal(s.FontColor))
	}
	if s.Bold {
		r.Bold()
	}
	shape.TextBox = &docx.WPSTextBox{Content: &docx.WTextBoxContent{Paragraphs: []docx.Paragraph{text}}}
	return nil
}

func emu(cm float64) (int64, error) {
	return safecast.Round[int64](cm * emuPerCm)
}

func halfPoints(pt float64) int {
	hp, err := safecast.Round[int](pt * 2)
	if err != nil || hp < 2 {
		return 2
	}
	return hp
}

func solidFill(hex string) *docx.ASolidFill {
	return &docx.ASolidFill{SrgbClr: &docx.ASrgbClr{Val: hexVal(hex)}}
}

func hexVal(hex string) string {
	return strings.ToUpper(strings.TrimPrefix(hex, "#"))
}

func docxAlign(align string) string {
	switch align {
	case style.AlignCenter:
		return "center"
	case style.AlignRight:
		return "end"
	}
	return "start"
}
