// Package pipeline runs the outline-to-chart pipeline for wbsgen.
//
// The CLI, the preview TUI and the HTTP API all go through this package so
// they share defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Ingest: extract text lines from a source document
//  2. Layout: parse codes, sort numerically, build the forest and compute
//     geometry
//  3. Render: generate output in the requested formats
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Name: "plan", Formats: []string{"svg", "pdf"}}
//	result, err := runner.Execute(ctx, "plan.xlsx", file, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	lines, err := runner.Lines(ctx, "plan.txt", r)
//	items, err := pipeline.Items(lines)
//	lay, err := runner.Layout(ctx, items, opts)
//	artifacts, err := runner.Render(ctx, lay, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wbsgen/pkg/cache"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/render"
	"github.com/matzehuels/wbsgen/pkg/style"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI and API
// =============================================================================

const (
	// DefaultVizType is the default visualization type.
	DefaultVizType = render.VizWBS

	// DefaultFormat is rendered when no format is requested.
	DefaultFormat = render.FormatSVG

	// DefaultName titles outputs whose source has no usable name.
	DefaultName = "wbs"

	// DefaultPNGScale is the PNG resolution multiplier.
	DefaultPNGScale = 2.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Name titles the chart and names stored documents.
	Name string `json:"name,omitempty"`

	// Layout options
	Config  layout.Config        `json:"config"`
	Orphans outline.OrphanPolicy `json:"orphans,omitempty"`

	// Render options
	VizType     string      `json:"viz_type,omitempty"`
	Formats     []string    `json:"formats,omitempty"`
	Styles      style.Table `json:"styles"`
	Scale       float64     `json:"scale,omitempty"` // SVG pixels per centimetre
	PNGScale    float64     `json:"png_scale,omitempty"`
	Guide       bool        `json:"guide,omitempty"`       // outline the WBS block
	Interactive bool        `json:"interactive,omitempty"` // SVG hover highlighting
	Horizontal  bool        `json:"horizontal,omitempty"`  // tree diagram left to right

	// Runtime options (not serialized)
	FontFile string      `json:"-"` // UTF-8 TTF for PDF output
	Refresh  bool        `json:"-"` // bypass cache reads
	Logger   *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has succeeded.
	validated bool
}

// Layout is the output of the layout stage.
type Layout struct {
	Items    []outline.Item
	Forest   outline.Forest
	Report   outline.BuildReport
	Geometry []layout.Geometry
	Overflow layout.Overflow
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Lines are the extracted, normalised source lines.
	Lines []string

	// Layout holds the sorted items, forest and geometry.
	Layout *Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings are user-facing notes on tolerated input problems.
	Warnings []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LineCount  int
	ItemCount  int
	Skipped    int // lines without a leading code
	BoxCount   int
	IngestTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LinesHit  bool // Whether extracted lines came from cache
	LayoutHit bool // Whether geometry came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero-valued fields. A zero Config becomes
// [layout.DefaultConfig] and an empty style table [style.DefaultTable].
func (o *Options) SetDefaults() {
	if strings.TrimSpace(o.Name) == "" {
		o.Name = DefaultName
	}
	if isZeroConfig(o.Config) {
		o.Config = layout.DefaultConfig()
	}
	if o.Orphans == "" {
		o.Orphans = outline.OrphanDrop
	}
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if len(o.Styles.Levels) == 0 && o.Styles.Default == (style.Style{}) {
		o.Styles = style.DefaultTable()
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks every option. Formats are normalised in place.
func (o *Options) Validate() error {
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if err := o.Styles.Validate(); err != nil {
		return err
	}
	if _, err := outline.ParseOrphanPolicy(string(o.Orphans)); err != nil {
		return err
	}
	formats, err := render.ParseFormats(strings.Join(o.Formats, ","), o.VizType)
	if err != nil {
		return err
	}
	o.Formats = formats
	return nil
}

// ValidateAndSetDefaults applies defaults, then validates.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// IsTree reports whether the node-link tree diagram is requested.
func (o *Options) IsTree() bool {
	return o.VizType == render.VizTree
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	h, _ := cache.HashJSON(o.Config)
	return cache.LayoutKeyOpts{ConfigHash: h, Orphans: string(o.Orphans)}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. The
// config is part of the key because sinks draw the canvas and block from it
// even when the geometry is unchanged.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	h, _ := cache.HashJSON(struct {
		Name        string
		Config      layout.Config
		Orphans     outline.OrphanPolicy
		Styles      style.Table
		Scale       float64
		Guide       bool
		Interactive bool
		Horizontal  bool
		FontFile    string
	}{o.Name, o.Config, o.Orphans, o.Styles, o.Scale, o.Guide, o.Interactive, o.Horizontal, o.FontFile})
	scale := 0.0
	if format == render.FormatPNG {
		scale = o.PNGScale
	}
	return cache.ArtifactKeyOpts{
		Format:    format,
		VizType:   o.VizType,
		StyleHash: h,
		Scale:     scale,
	}
}

// isZeroConfig reports a config with no geometry at all, which callers
// produce by leaving Options.Config unset. The gap table holds a map, so
// Config is not comparable with ==.
func isZeroConfig(c layout.Config) bool {
	return c.CanvasWidth == 0 && c.CanvasHeight == 0 && c.WBSWidth == 0 && c.WBSHeight == 0
}
