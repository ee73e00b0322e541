// Package pkg provides the core libraries for wbsgen work breakdown charts.
//
// # Overview
//
// wbsgen turns outline-coded lines ("1", "1.2", "1.2.3 Interviews") into a
// nested box chart sized to a slide. The pkg directory is organized into
// three areas:
//
//  1. Domain logic: [outline] parses and orders codes and builds the tree,
//     [layout] computes box geometry, [style] maps levels to colors
//  2. Infrastructure: [config], [cache], [store], [observability]
//  3. Orchestration: [ingest] reads source documents, [render] draws charts
//     and tree diagrams, [pipeline] runs ingest → layout → render
//
// # Architecture
//
// The typical data flow:
//
//	Source document (txt, md, csv, xlsx, docx, pdf, pptx, html)
//	         ↓
//	    [ingest] package (extract lines)
//	         ↓
//	    [outline] package (parse, sort, build forest)
//	         ↓
//	    [layout] package (geometry + overflow)
//	         ↓
//	    [render] package (SVG/PDF/PNG/DOCX/JSON, or a DOT tree)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/wbsgen/pkg/layout"
//	    "github.com/matzehuels/wbsgen/pkg/outline"
//	)
//
//	items := outline.ParseLines([]string{"1 Project", "1.1 Scope", "1.2 Build"})
//	forest, report, err := outline.Build(items)
//	if err != nil {
//	    return err
//	}
//	geoms := layout.Layout(forest, layout.DefaultConfig())
//
// For files, [pipeline.Runner] adds caching on top:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(256), nil, logger)
//	result, err := runner.Execute(ctx, "plan.xlsx", f, pipeline.Options{Formats: []string{"svg"}})
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
//
// [outline]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/outline
// [layout]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/layout
// [style]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/style
// [config]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/observability
// [ingest]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/ingest
// [render]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/wbsgen/pkg/pipeline#Runner
package pkg
