package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/render"
	"github.com/matzehuels/wbsgen/pkg/style"
)

// Options configures tree diagram generation.
type Options struct {
	// Styles colours nodes by level. The zero Table draws plain white boxes.
	Styles style.Table
	// Horizontal lays the tree out left to right instead of top to bottom.
	Horizontal bool
	// MaxLabel wraps node text after this many runes per line; 0 means 24.
	MaxLabel int
}

// ToDOT converts a forest to Graphviz DOT format. Nodes are emitted in
// pre-order and keyed by code, so the output is deterministic. Duplicate
// codes are disambiguated with a "#n" suffix on the node ID.
func ToDOT(forest outline.Forest, opts Options) string {
	if opts.MaxLabel <= 0 {
		opts.MaxLabel = 24
	}
	rankdir := "TB"
	if opts.Horizontal {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph WBS {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"sans-serif\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.6, color=\"#7f7f7f\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ids := make(map[*outline.Node]string)
	seen := make(map[string]int)
	var edges []string
	var parents []*outline.Node

	forest.Walk(func(n *outline.Node, depth int) bool {
		id := n.Code
		if k := seen[n.Code]; k > 0 {
			id = n.Code + "#" + strconv.Itoa(k+1)
		}
		seen[n.Code]++
		ids[n] = id

		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, opts), ", "))

		parents = parents[:depth]
		if depth > 0 {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", ids[parents[depth-1]], id))
		}
		parents = append(parents, n)
		return true
	})

	if len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *outline.Node, width int) string {
	if n.Text == "" {
		return n.Code
	}
	return n.Code + "\n" + wrap(n.Text, width)
}

func fmtAttrs(n *outline.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.MaxLabel))}
	s := opts.Styles.For(n.Level)
	if s.Fill != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", style.CSS(s.Fill, "white")))
	}
	if s.Stroke != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", style.CSS(s.Stroke, "black")))
	}
	if s.FontColor != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", style.CSS(s.FontColor, "black")))
	}
	if s.Bold {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// wrap breaks s into lines of at most width runes at word boundaries.
func wrap(s string, width int) string {
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(w) > width {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return strings.Join(lines, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the diagram scales like the chart SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
