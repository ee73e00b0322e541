// Package tree renders an outline as a node-link diagram.
//
// # Overview
//
// The WBS chart packs deep levels into a right-hand rail. The tree diagram
// shows the same hierarchy the classic way, with every node as a box and an
// arrow from each parent to its children, laid out by Graphviz.
//
// # Usage
//
// Convert a forest to DOT format, then render to SVG:
//
//	dot := tree.ToDOT(forest, tree.Options{Styles: style.DefaultTable()})
//	svg, err := tree.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := tree.RenderPDF(ctx, dot)
//	png, err := tree.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package tree
