// Package render turns laid-out outlines into documents and images.
//
// # Overview
//
// Layout produces geometry in centimetres; this package and its
// subpackages are the consumers of that geometry:
//
//   - [chart]: the styled WBS chart model built from geometry
//   - [chart/sink]: chart output formats (SVG, PDF, DOCX, PNG, JSON)
//   - [tree]: a node-link diagram of the outline rendered with Graphviz
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert tool
// (from librsvg). The PNG sink and the tree diagram use them; the PDF and DOCX
// chart sinks are native and need no external tools.
//
//	svg := sink.RenderSVG(c)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [chart]: github.com/matzehuels/wbsgen/pkg/render/chart
// [chart/sink]: github.com/matzehuels/wbsgen/pkg/render/chart/sink
// [tree]: github.com/matzehuels/wbsgen/pkg/render/tree
package render
