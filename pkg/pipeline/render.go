package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/render"
	"github.com/matzehuels/wbsgen/pkg/render/chart"
	"github.com/matzehuels/wbsgen/pkg/render/chart/sink"
	"github.com/matzehuels/wbsgen/pkg/render/tree"
)

// RenderFormats renders lay in each of formats. Formats are independent and
// read-only over the layout, so they run concurrently; the first failure
// cancels the rest.
func RenderFormats(ctx context.Context, lay *Layout, formats []string, opts Options) (map[string][]byte, error) {
	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(formats))
	)

	var c chart.Chart
	var dot string
	if opts.IsTree() {
		dot = tree.ToDOT(lay.Forest, tree.Options{Styles: opts.Styles, Horizontal: opts.Horizontal})
	} else {
		c = chart.Build(opts.Name, opts.Config, lay.Geometry, opts.Styles)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		g.Go(func() error {
			var data []byte
			var err error
			if opts.IsTree() {
				data, err = renderTree(ctx, dot, format, opts)
			} else {
				data, err = renderChart(ctx, c, lay, format, opts)
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderChart(ctx context.Context, c chart.Chart, lay *Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case render.FormatSVG:
		return sink.RenderSVG(c, svgOptions(opts)...), nil
	case render.FormatPNG:
		return sink.RenderPNG(ctx, c,
			sink.WithPNGSVGOptions(svgOptions(opts)...),
			sink.WithPNGScale(opts.PNGScale))
	case render.FormatPDF:
		var pdfOpts []sink.PDFOption
		if opts.FontFile != "" {
			pdfOpts = append(pdfOpts, sink.WithFontFile(opts.FontFile))
		}
		return sink.RenderPDF(c, pdfOpts...)
	case render.FormatDOCX:
		return sink.RenderDOCX(c)
	case render.FormatJSON:
		return sink.RenderJSON(c,
			sink.WithJSONOverflow(lay.Overflow),
			sink.WithJSONConfig(opts.Config),
			sink.WithJSONIndent())
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported chart format: %s", format)
	}
}

func renderTree(ctx context.Context, dot, format string, opts Options) ([]byte, error) {
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return tree.RenderSVG(ctx, dot)
	case render.FormatPDF:
		return tree.RenderPDF(ctx, dot)
	case render.FormatPNG:
		return tree.RenderPNG(ctx, dot, opts.PNGScale)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format: %s", format)
	}
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Scale > 0 {
		out = append(out, sink.WithScale(opts.Scale))
	}
	if opts.Guide {
		out = append(out, sink.WithGuide())
	}
	if opts.Interactive {
		out = append(out, sink.WithInteraction())
	}
	return out
}

// Warnings describes the input problems the layout tolerated: orphans that
// were dropped or adopted, duplicate codes, and content spilling past the
// WBS block.
func Warnings(lay *Layout) []string {
	var out []string
	for _, o := range lay.Report.Orphans {
		what := describe(o.Item.Code, o.Item.Line)
		parent := outline.ParentCode(o.Item.Code)
		switch {
		case o.Dropped:
			out = append(out, fmt.Sprintf("dropped %s: parent %s not found", what, parent))
		case o.AttachedTo != "":
			out = append(out, fmt.Sprintf("attached %s to %s: parent %s not found", what, o.AttachedTo, parent))
		default:
			out = append(out, fmt.Sprintf("promoted %s to a root: parent %s not found", what, parent))
		}
	}
	for _, d := range lay.Report.Duplicates {
		out = append(out, fmt.Sprintf("duplicate code %s", describe(d.Code, d.Line)))
	}
	if w := overflowWarning(lay.Overflow); w != "" {
		out = append(out, w)
	}
	return out
}

func describe(code string, line int) string {
	if line > 0 {
		return fmt.Sprintf("%s (line %d)", code, line)
	}
	return code
}

func overflowWarning(o layout.Overflow) string {
	if !o.Any() {
		return ""
	}
	return fmt.Sprintf("content overflows the WBS block (bottom %.2f cm, right %.2f cm, left %.2f cm)",
		o.Bottom, o.Right, o.Left)
}
