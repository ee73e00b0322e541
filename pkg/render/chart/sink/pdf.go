package sink

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/render/chart"
	"github.com/matzehuels/wbsgen/pkg/style"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	fontFile  string
	fontBytes []byte
	created   time.Time
}

// WithFontFile embeds a UTF-8 TrueType font. Without one the PDF uses
// Helvetica, which cannot show Hangul or CJK text.
func WithFontFile(path string) PDFOption { return func(r *pdfRenderer) { r.fontFile = path } }

// WithFontBytes embeds a UTF-8 TrueType font from memory.
func WithFontBytes(ttf []byte) PDFOption { return func(r *pdfRenderer) { r.fontBytes = ttf } }

// WithCreationDate pins the document date, making output reproducible.
func WithCreationDate(t time.Time) PDFOption { return func(r *pdfRenderer) { r.created = t } }

const pdfFontFamily = "chart"

// RenderPDF draws c on a single page the size of the canvas.
func RenderPDF(c chart.Chart, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "cm",
		Size:           fpdf.SizeType{Wd: c.Width, Ht: c.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(labelPadding)
	if c.Title != "" {
		pdf.SetTitle(c.Title, true)
	}
	pdf.SetCreator("wbsgen", false)
	if !r.created.IsZero() {
		pdf.SetCreationDate(r.created)
	}

	family, translate := "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	switch {
	case len(r.fontBytes) > 0:
		pdf.AddUTF8FontFromBytes(pdfFontFamily, "", r.fontBytes)
		pdf.AddUTF8FontFromBytes(pdfFontFamily, "B", r.fontBytes)
		family, translate = pdfFontFamily, nil
	case r.fontFile != "":
		pdf.AddUTF8Font(pdfFontFamily, "", r.fontFile)
		pdf.AddUTF8Font(pdfFontFamily, "B", r.fontFile)
		family, translate = pdfFontFamily, nil
	}

	pdf.AddPage()
	pdf.SetLineWidth(0.03)
	for _, b := range c.Boxes {
		drawPDFBox(pdf, b, family, translate)
	}

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render pdf")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write pdf")
	}
	return buf.Bytes(), nil
}

func drawPDFBox(pdf *fpdf.Fpdf, b chart.Box, family string, translate func(string) string) {
	s := b.Style
	mode := ""
	if fr, fg, fb, err := style.ParseHex(s.Fill); err == nil {
		pdf.SetFillColor(fr, fg, fb)
		mode += "F"
	}
	if sr, sg, sb, err := style.ParseHex(s.Stroke); err == nil {
		pdf.SetDrawColor(sr, sg, sb)
		mode += "D"
	}
	if mode != "" {
		pdf.Rect(b.X, b.Y, b.W, b.H, mode)
	}

	label := style.TruncateLabel(b.Label(), b.W, s.FontSize)
	if label == "" {
		return
	}
	if translate != nil {
		label = translate(label)
	}
	fontStyle := ""
	if s.Bold {
		fontStyle = "B"
	}
	pdf.SetFont(family, fontStyle, s.FontSize)
	tr, tg, tb, err := style.ParseHex(s.FontColor)
	if err != nil {
		tr, tg, tb = 0, 0, 0
	}
	pdf.SetTextColor(tr, tg, tb)
	pdf.SetXY(b.X, b.Y)
	pdf.CellFormat(b.W, b.H, label, "", 0, pdfAlign(s.Align), false, 0, "")
}

func pdfAlign(align string) string {
	switch align {
	case style.AlignCenter:
		return "CM"
	case style.AlignRight:
		return "RM"
	}
	return "LM"
}
