package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wbsgen/pkg/cache"
	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/ingest"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/observability"
	"github.com/matzehuels/wbsgen/pkg/outline"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete ingest → layout → render pipeline with caching.
// name is the source file name; its extension selects the extractor.
func (r *Runner) Execute(ctx context.Context, name string, src io.Reader, opts Options) (*Result, error) {
	if opts.Name == "" {
		opts.Name = NameFromFile(name)
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Ingest
	start := time.Now()
	lines, linesHit, err := r.LinesWithCacheInfo(ctx, name, src, opts)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	result.Lines = lines
	result.Stats.LineCount = nonBlank(lines)
	result.Stats.IngestTime = time.Since(start)
	result.CacheInfo.LinesHit = linesHit

	items, skipped, err := Items(lines)
	if err != nil {
		return nil, err
	}
	result.Stats.ItemCount = len(items)
	result.Stats.Skipped = skipped

	opts.Logger.Info("read outline",
		"lines", result.Stats.LineCount,
		"items", len(items),
		"duration", result.Stats.IngestTime)
	if skipped > 0 {
		opts.Logger.Debug("skipped lines without a code", "count", skipped)
	}

	// Stage 2: Layout
	start = time.Now()
	lay, layoutHit, err := r.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = lay
	result.Stats.BoxCount = len(lay.Geometry)
	result.Stats.LayoutTime = time.Since(start)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"boxes", len(lay.Geometry),
		"depth", lay.Forest.Depth(),
		"duration", result.Stats.LayoutTime)

	result.Warnings = Warnings(lay)
	for _, w := range result.Warnings {
		opts.Logger.Warn(w)
	}

	// Stage 3: Render
	start = time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, lay, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LinesWithCacheInfo extracts the lines of src with caching and returns
// cache hit info. Lines are keyed by the content hash of src.
func (r *Runner) LinesWithCacheInfo(ctx context.Context, name string, src io.Reader, opts Options) ([]string, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if !ingest.IsSupported(name) {
		return nil, false, errors.New(errors.ErrCodeUnsupportedFormat, "unsupported file type: %q", name)
	}

	data, err := io.ReadAll(io.LimitReader(src, ingest.MaxBytes+1))
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", name)
	}
	if len(data) > ingest.MaxBytes {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "%s exceeds %d MiB", name, ingest.MaxBytes>>20)
	}

	cacheKey := r.Keyer.LinesKey(cache.Hash(data), ext)
	if !opts.Refresh {
		if lines, hit, err := cache.GetValue[[]string](ctx, r.Cache, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "lines")
			return lines, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "lines")
	}

	hooks := observability.Pipeline()
	hooks.OnIngestStart(ctx, ext, name)
	start := time.Now()
	lines, err := ingest.Lines(bytes.NewReader(data), name)
	hooks.OnIngestComplete(ctx, ext, name, len(lines), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.store(ctx, "lines", cacheKey, lines, cache.TTLLines)
	return lines, false, nil
}

// Lines is a convenience wrapper that calls LinesWithCacheInfo and discards the cache hit info.
func (r *Runner) Lines(ctx context.Context, name string, src io.Reader) ([]string, error) {
	lines, _, err := r.LinesWithCacheInfo(ctx, name, src, Options{})
	return lines, err
}

// Items parses and numerically sorts lines. Lines without a leading code
// are skipped and counted; blank lines only hold source positions and are
// not counted. An empty result is an INVALID_INPUT error, since
// there is nothing to lay out.
func Items(lines []string) ([]outline.Item, int, error) {
	parsed := outline.ParseLines(lines)
	skipped := nonBlank(lines) - len(parsed)
	if len(parsed) == 0 {
		return nil, skipped, errors.New(errors.ErrCodeInvalidInput,
			"no outline items found (lines must start with a code such as 1.2.3)")
	}
	items, err := outline.Sort(parsed)
	if err != nil {
		return nil, skipped, err
	}
	return items, skipped, nil
}

func nonBlank(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

// layoutRecord is the cached form of a layout. The forest is rebuilt from
// the items on a hit, which is cheap next to ingestion.
type layoutRecord struct {
	Geometry []layout.Geometry `msgpack:"geometry"`
	Overflow layout.Overflow   `msgpack:"overflow"`
}

// LayoutWithCacheInfo builds the forest from sorted items and computes its
// geometry, with caching, and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, items []outline.Item, opts Options) (*Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	forest, report, err := outline.Build(items, outline.WithOrphanPolicy(opts.Orphans))
	if err != nil {
		return nil, false, err
	}
	lay := &Layout{Items: items, Forest: forest, Report: report}

	itemsHash, err := cache.HashJSON(items)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash items")
	}
	cacheKey := r.Keyer.LayoutKey(itemsHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		rec, hit, err := cache.GetValue[layoutRecord](ctx, r.Cache, cacheKey)
		if err == nil && hit {
			if geoms, err := layout.Relink(forest, rec.Geometry); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				lay.Geometry = geoms
				lay.Overflow = rec.Overflow
				return lay, true, nil
			}
			// A stale record for a different outline falls through to recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.VizType, len(items))
	start := time.Now()
	lay.Geometry = layout.Layout(forest, opts.Config)
	lay.Overflow = layout.CheckOverflow(opts.Config, lay.Geometry)
	hooks.OnLayoutComplete(ctx, opts.VizType, len(lay.Geometry), time.Since(start), nil)

	r.store(ctx, "layout", cacheKey, layoutRecord{
		Geometry: lay.Geometry,
		Overflow: lay.Overflow,
	}, cache.TTLLayout)
	return lay, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, items []outline.Item, opts Options) (*Layout, error) {
	lay, _, err := r.LayoutWithCacheInfo(ctx, items, opts)
	return lay, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Formats missing from the cache are rendered concurrently.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, lay *Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	layoutHash, err := cache.HashJSON(lay.Geometry)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	if opts.IsTree() {
		// Tree diagrams depend on the forest, not the geometry. The orphan
		// policy decides its shape, so hash the built forest.
		layoutHash = cache.Hash([]byte(lay.Forest.String()))
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil // All artifacts from cache
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := RenderFormats(ctx, lay, missing, opts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, lay *Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, lay, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes a value to the cache. Failures only cost a recomputation
// next time, so they are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := cache.Marshal(v)
	if err == nil {
		err = r.Cache.Set(ctx, key, data, ttl)
	}
	if err != nil {
		r.Logger.Debug("cache write failed", "stage", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// NameFromFile derives a chart name from a file path: the base name without
// extension, or [DefaultName].
func NameFromFile(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == "-" {
		return DefaultName
	}
	return name
}
