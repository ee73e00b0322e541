package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wbsgen/pkg/config"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/pipeline"
	"github.com/matzehuels/wbsgen/pkg/store"
)

// layoutFlags are the flags shared by commands that lay out a source file.
type layoutFlags struct {
	name    string
	orphans string
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "chart title (default: input file name)")
	cmd.Flags().StringVar(&f.orphans, "orphans", "", "orphan policy: drop, adopt, strict (default: from config)")
}

// apply resolves the flags against the loaded settings.
func (f *layoutFlags) apply(s *config.Settings) error {
	if f.orphans == "" {
		return nil
	}
	p, err := outline.ParseOrphanPolicy(f.orphans)
	if err != nil {
		return err
	}
	s.Orphans = p
	return nil
}

// layoutCommand creates the layout command for computing WBS geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute the WBS layout of an outline",
		Long: `Compute the WBS layout of an outline.

The layout command reads outline-coded lines from a text, Markdown, CSV, Excel,
Word, PDF, PowerPoint or HTML file ("-" reads text from stdin) and writes the
computed boxes to a .layout.json file that 'render' accepts in place of the
source.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// layoutSource runs the ingest and layout stages for a source file.
func (c *CLI) layoutSource(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (*pipeline.Layout, layoutInfo, error) {
	var info layoutInfo

	src, name, err := openInput(input)
	if err != nil {
		return nil, info, err
	}
	defer src.Close()

	lines, linesHit, err := runner.LinesWithCacheInfo(ctx, name, src, opts)
	if err != nil {
		return nil, info, err
	}
	items, skipped, err := pipeline.Items(lines)
	if err != nil {
		return nil, info, fmt.Errorf("%s: %w", input, err)
	}
	lay, layoutHit, err := runner.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		return nil, info, err
	}

	info = layoutInfo{skipped: skipped, cached: linesHit && layoutHit}
	return lay, info, nil
}

type layoutInfo struct {
	skipped int
	cached  bool
}

// runLayout lays out the input and writes the layout file.
func (c *CLI) runLayout(ctx context.Context, input, output string, flags layoutFlags) error {
	settings, err := c.settings()
	if err != nil {
		return err
	}
	if err := flags.apply(&settings); err != nil {
		return err
	}

	runner, err := c.newRunner()
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	name := flags.name
	if name == "" {
		name = pipeline.NameFromFile(input)
	}
	opts := pipeline.Options{
		Name:    name,
		Config:  settings.Layout,
		Styles:  settings.Styles,
		Orphans: settings.Orphans,
		Logger:  c.Logger,
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	lay, info, err := c.layoutSource(ctx, runner, input, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Laid out %d items", len(lay.Items)))

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + layoutFileSuffix
	}

	doc := &store.Document{
		Name:      name,
		Source:    input,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Config:    settings.Layout,
		Styles:    settings.Styles,
		Orphans:   settings.Orphans,
		Items:     lay.Items,
		Geometry:  lay.Geometry,
		Overflow:  lay.Overflow,
	}
	if err := writeLayoutFile(outputPath, doc); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	say(markOK, "Layout of %s ready", name)
	wrote(outputPath)
	reportChart(lay, info.skipped, info.cached)
	fmt.Println()
	fmt.Println(StyleDim.Render("draw it with ") + styleCommand.Render(appName+" render "+outputPath))

	return nil
}
