package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/wbsgen/pkg/errors"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Visualization types.
const (
	VizWBS  = "wbs"
	VizTree = "tree"
)

// ChartFormats are the formats of the WBS chart.
var ChartFormats = []string{FormatSVG, FormatPDF, FormatDOCX, FormatPNG, FormatJSON}

// TreeFormats are the formats of the tree diagram.
var TreeFormats = []string{FormatSVG, FormatPDF, FormatPNG, FormatDOT}

// VizTypes lists the supported visualization types.
var VizTypes = []string{VizWBS, VizTree}

// ValidateVizType checks that viz names a supported visualization.
func ValidateVizType(viz string) error {
	if !slices.Contains(VizTypes, viz) {
		return errors.New(errors.ErrCodeInvalidVizType, "invalid viz type: %q (want %s)", viz, strings.Join(VizTypes, ", "))
	}
	return nil
}

// ParseFormats splits a comma-separated list, lowercases and deduplicates
// it, and checks every entry against the formats of viz.
func ParseFormats(list string, viz string) ([]string, error) {
	if err := ValidateVizType(viz); err != nil {
		return nil, err
	}
	allowed := ChartFormats
	if viz == VizTree {
		allowed = TreeFormats
	}

	var out []string
	for _, f := range strings.Split(list, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if !slices.Contains(allowed, f) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format for %s: %q (want %s)", viz, f, strings.Join(allowed, ", "))
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}
	return out, nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}
