// Package sink renders WBS charts to output formats.
//
// # Formats
//
//   - SVG: interactive preview, see [RenderSVG]
//   - PDF: print-ready document drawn natively with fpdf, see [RenderPDF]
//   - DOCX: editable Word document of anchored shapes, see [RenderDOCX]
//   - PNG: raster image (requires rsvg-convert), see [RenderPNG]
//   - JSON: the chart model with canvas metadata, see [RenderJSON]
//
// All sinks take a [chart.Chart] and only read it, so one chart can be
// rendered to several formats concurrently.
//
// # Options
//
// Sinks are configured with functional options:
//
//	svg := sink.RenderSVG(c, sink.WithScale(60), sink.WithGuide())
//	pdf, err := sink.RenderPDF(c, sink.WithFontFile("NanumGothic.ttf"))
//
// # Fonts
//
// SVG, DOCX and PNG leave font selection to the viewer. PDF embeds fonts;
// the built-in Helvetica covers Latin-1 only, so outlines with Hangul or CJK
// text need [WithFontFile] or [WithFontBytes].
//
// [chart.Chart]: github.com/matzehuels/wbsgen/pkg/render/chart.Chart
package sink
