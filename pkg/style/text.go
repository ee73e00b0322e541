package style

import (
	"bytes"
	"encoding/xml"

	"github.com/mattn/go-runewidth"
)

// PointsPerCentimetre converts centimetre geometry to typographic points.
const PointsPerCentimetre = 72 / 2.54

const (
	// cellWidthRatio approximates the advance of one terminal cell as a
	// fraction of the font size. Wide runes occupy two cells.
	cellWidthRatio = 0.5
	labelPadding   = 0.15 // cm on each side
	ellipsis       = ".."
)

// LabelCells returns how many display cells fit across a box of width
// (in centimetres) at fontSize points.
func LabelCells(width, fontSize float64) int {
	if fontSize <= 0 {
		return 0
	}
	avail := (width - 2*labelPadding) * PointsPerCentimetre
	return max(0, int(avail/(fontSize*cellWidthRatio)))
}

// TruncateLabel shortens label to fit a box of width centimetres at
// fontSize points. Display width is measured with East Asian widths, so
// Hangul and CJK count double.
func TruncateLabel(label string, width, fontSize float64) string {
	cells := LabelCells(width, fontSize)
	if runewidth.StringWidth(label) <= cells {
		return label
	}
	if cells <= len(ellipsis) {
		return runewidth.Truncate(label, cells, "")
	}
	return runewidth.Truncate(label, cells, ellipsis)
}

// EscapeXML escapes text for use in SVG and XML documents.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
