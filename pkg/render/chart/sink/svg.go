package sink

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/wbsgen/pkg/render/chart"
	"github.com/matzehuels/wbsgen/pkg/style"
)

// DefaultScale is the SVG pixel size of one centimetre.
const DefaultScale = 40.0

// labelPadding is the horizontal inset of labels, in centimetres.
const labelPadding = 0.15

const boxInteractionCSS = `
    .box { transition: stroke-width 0.2s ease; }
    .box.highlight { stroke-width: 0.08; }
    .box-text { pointer-events: none; }`

const boxInteractionJS = `
    function highlight(code) {
      document.querySelectorAll('.box').forEach(b => {
        const c = b.dataset.code;
        b.classList.toggle('highlight', code !== null && (c === code || c.startsWith(code + '.')));
      });
    }
    document.querySelectorAll('.box').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.code));
      el.addEventListener('mouseleave', () => highlight(null));
    });`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale       float64
	guide       bool
	interactive bool
	background  string
}

// WithScale sets the pixel size of one centimetre.
func WithScale(pxPerCm float64) SVGOption { return func(r *svgRenderer) { r.scale = pxPerCm } }

// WithGuide outlines the WBS block with a dashed rectangle.
func WithGuide() SVGOption { return func(r *svgRenderer) { r.guide = true } }

// WithInteraction highlights a box and its subtree on hover.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithBackground fills the canvas with an RRGGBB colour. Empty means
// transparent.
func WithBackground(hex string) SVGOption { return func(r *svgRenderer) { r.background = hex } }

// RenderSVG draws c as SVG. The view box is in centimetres; width and
// height attributes are in pixels at the configured scale.
func RenderSVG(c chart.Chart, opts ...SVGOption) []byte {
	r := svgRenderer{scale: DefaultScale, background: "FFFFFF"}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = DefaultScale
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f">`+"\n",
		num(c.Width), num(c.Height), c.Width*r.scale, c.Height*r.scale)
	if c.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", style.EscapeXML(c.Title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
			num(c.Width), num(c.Height), style.CSS(r.background, "none"))
	}
	if r.guide {
		fmt.Fprintf(&buf, `  <rect class="guide" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#999999" stroke-width="0.02" stroke-dasharray="0.2 0.1"/>`+"\n",
			num(c.Block.X), num(c.Block.Y), num(c.Block.Width), num(c.Block.Height))
	}

	for _, b := range c.Boxes {
		renderBox(&buf, b)
	}
	for _, b := range c.Boxes {
		renderLabel(&buf, b)
	}

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", boxInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", boxInteractionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderBox(buf *bytes.Buffer, b chart.Box) {
	s := b.Style
	fmt.Fprintf(buf, `  <rect id="box-%s" class="box level-%d" data-code="%s" x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="0.03">`,
		style.EscapeXML(b.Code), b.Level, style.EscapeXML(b.Code),
		num(b.X), num(b.Y), num(b.W), num(b.H),
		style.CSS(s.Fill, "none"), style.CSS(s.Stroke, "none"))
	fmt.Fprintf(buf, "<title>%s</title></rect>\n", style.EscapeXML(b.Label()))
}

func renderLabel(buf *bytes.Buffer, b chart.Box) {
	s := b.Style
	label := style.TruncateLabel(b.Label(), b.W, s.FontSize)
	if label == "" {
		return
	}
	x, anchor := b.X+labelPadding, "start"
	switch s.Align {
	case style.AlignCenter:
		x, anchor = b.CX(), "middle"
	case style.AlignRight:
		x, anchor = b.Right()-labelPadding, "end"
	}
	weight := "normal"
	if s.Bold {
		weight = "bold"
	}
	fmt.Fprintf(buf, `  <text class="box-text" x="%s" y="%s" text-anchor="%s" dominant-baseline="central" font-family="sans-serif" font-size="%s" font-weight="%s" fill="%s">%s</text>`+"\n",
		num(x), num(b.CY()), anchor, num(s.FontSize/style.PointsPerCentimetre), weight,
		style.CSS(s.FontColor, "#000000"), style.EscapeXML(label))
}

// num formats a centimetre value to at most three decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
