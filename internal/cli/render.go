package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wbsgen/pkg/config"
	"github.com/matzehuels/wbsgen/pkg/pipeline"
	"github.com/matzehuels/wbsgen/pkg/render"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	layoutFlags

	output      string
	formats     string
	vizType     string
	scale       float64
	pngScale    float64
	guide       bool
	interactive bool
	horizontal  bool
	fontFile    string
	refresh     bool
}

// renderCommand creates the render command for generating charts.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render an outline or layout file as a WBS chart",
		Long: `Render an outline or layout file as a WBS chart.

The input is either a source document (see 'layout') or a .layout.json file
written by 'layout'. The WBS chart (-t wbs) renders to svg, pdf, docx, png and
json; the tree diagram (-t tree) renders to svg, pdf, png and dot.

PNG output and tree PDFs need rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", pipeline.DefaultFormat, "output format(s), comma-separated")
	cmd.Flags().StringVarP(&flags.vizType, "type", "t", pipeline.DefaultVizType, "visualization type: wbs, tree")
	cmd.Flags().Float64Var(&flags.scale, "scale", 0, "SVG pixels per centimetre (default: 40)")
	cmd.Flags().Float64Var(&flags.pngScale, "png-scale", pipeline.DefaultPNGScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&flags.guide, "guide", false, "outline the canvas and the WBS block")
	cmd.Flags().BoolVar(&flags.interactive, "interactive", false, "add hover highlighting to SVG output")
	cmd.Flags().BoolVar(&flags.horizontal, "horizontal", false, "lay the tree diagram out left to right")
	cmd.Flags().StringVar(&flags.fontFile, "font", "", "TrueType font for PDF output (needed for non-Latin text)")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached artifacts")
	flags.register(cmd)

	return cmd
}

func (f renderFlags) options(name string, s config.Settings) (pipeline.Options, error) {
	formats, err := render.ParseFormats(f.formats, f.vizType)
	if err != nil {
		return pipeline.Options{}, err
	}
	if f.name != "" {
		name = f.name
	}
	return pipeline.Options{
		Name:        name,
		Config:      s.Layout,
		Styles:      s.Styles,
		Orphans:     s.Orphans,
		VizType:     f.vizType,
		Formats:     formats,
		Scale:       f.scale,
		PNGScale:    f.pngScale,
		Guide:       f.guide,
		Interactive: f.interactive,
		Horizontal:  f.horizontal,
		FontFile:    f.fontFile,
		Refresh:     f.refresh,
	}, nil
}

// runRender renders a source document end to end, or re-renders a layout
// file without laying it out again.
func (c *CLI) runRender(ctx context.Context, input string, flags renderFlags) error {
	if err := render.ValidateVizType(flags.vizType); err != nil {
		return err
	}

	runner, err := c.newRunner()
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		artifacts map[string][]byte
		opts      pipeline.Options
		lay       *pipeline.Layout
		info      layoutInfo
		renderHit bool
	)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", flags.vizType))
	spinner.Start()

	if isLayoutFile(input) {
		opts, lay, err = c.loadLayoutFile(input, flags)
		if err == nil {
			info.cached = true
			artifacts, renderHit, err = runner.RenderWithCacheInfo(ctx, lay, opts)
		}
	} else {
		var settings config.Settings
		if settings, err = c.settings(); err == nil {
			if err = flags.apply(&settings); err == nil {
				opts, err = flags.options(pipeline.NameFromFile(input), settings)
			}
		}
		if err == nil {
			opts.Logger = c.Logger
			lay, info, err = c.layoutSource(ctx, runner, input, opts)
		}
		if err == nil {
			artifacts, renderHit, err = runner.RenderWithCacheInfo(ctx, lay, opts)
		}
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	say(markOK, "Rendered %s", opts.Name)
	if err := writeArtifacts(artifacts, opts.Formats, flags.output, input); err != nil {
		return err
	}
	reportChart(lay, info.skipped, info.cached && renderHit)
	return nil
}

// loadLayoutFile rebuilds a pipeline layout from a layout file. Layout
// settings come from the file; only render flags apply.
func (c *CLI) loadLayoutFile(path string, flags renderFlags) (pipeline.Options, *pipeline.Layout, error) {
	doc, err := readLayoutFile(path)
	if err != nil {
		return pipeline.Options{}, nil, err
	}
	forest, geoms, err := doc.Forest()
	if err != nil {
		return pipeline.Options{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	s := config.Settings{Layout: doc.Config, Styles: doc.Styles, Orphans: doc.Orphans}
	opts, err := flags.options(doc.Name, s)
	if err != nil {
		return pipeline.Options{}, nil, err
	}
	opts.Logger = c.Logger
	lay := &pipeline.Layout{
		Items:    doc.Items,
		Forest:   forest,
		Geometry: geoms,
		Overflow: doc.Overflow,
	}
	return opts, lay, nil
}
