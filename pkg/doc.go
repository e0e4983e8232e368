// Package pkg provides the core libraries for squaremap treemap rendering.
//
// # Overview
//
// Squaremap lays out a list of named, weighted holdings as a squarified
// treemap: every holding becomes a rectangle whose area is proportional to
// its value, and the rectangles tile the canvas with aspect ratios kept as
// close to square as the row algorithm allows. The pkg directory is
// organized into these areas:
//
//  1. [core] - Domain logic (normalization, layout, colors, cell content, hover)
//  2. [pipeline] - Orchestration (load → layout → decorate → render)
//  3. [cache], [storage] - Infrastructure for repeated renders and the server
//  4. [server] - HTTP API over stored layouts
//  5. [document] - Serialization of computed layouts
//
// # Architecture
//
// The typical data flow through squaremap:
//
//	Holdings file (TOML/JSON)
//	         ↓
//	    [holdings] package (parse and validate)
//	         ↓
//	    [core/treemap] package (normalize + squarify + integer rounding)
//	         ↓
//	    [core/render] package (palette + content plan = Scene)
//	         ↓
//	    SVG/PDF/PNG/JSON/terminal output
//
// # Quick Start
//
// Load a holdings file and render it as SVG:
//
//	import (
//	    "github.com/matzehuels/squaremap/pkg/pipeline"
//	    "github.com/matzehuels/squaremap/pkg/core/render/sink"
//	)
//
//	opts := pipeline.Options{Input: "portfolio.toml"}
//	opts.SetLayoutDefaults()
//
//	f, err := pipeline.Load(opts)
//	if err != nil {
//	    return err
//	}
//	scene, err := pipeline.Compute(f, opts)
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(scene, sink.WithTooltips())
//
// # Core Packages
//
// [core/treemap] - The layout engine. Normalize drops items whose value is
// not a positive finite number and orders the rest largest first. Build
// partitions an integer canvas into rows, apportions pixels so that cells
// tile the canvas exactly, and returns nodes in input order.
//
// [core/palette] - Deterministic fill and text colors by position.
//
// [core/content] - Decides what fits in each cell: name, value text and an
// optional icon, degrading gracefully as cells shrink.
//
// [core/interact] - Hit-testing and tooltip placement for hover, with a
// Layer that owns the current layout and a pooled overlay.
//
// [core/render] - Scene assembly plus the SVG, terminal and legend sinks.
//
// # Infrastructure
//
// [cache] - File, Redis and null caches keyed by content hashes.
//
// [storage] - Memory, file and MongoDB stores for layouts served over HTTP.
//
// [httputil] - Cached, retrying icon downloads for inlined icons.
//
// [config] - The TOML configuration file and its defaults.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/core
// [core/treemap]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/core/treemap
// [core/palette]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/core/palette
// [core/content]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/core/content
// [core/interact]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/core/interact
// [core/render]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/core/render
// [holdings]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/holdings
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/pipeline
// [document]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/document
// [cache]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/storage
// [server]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/server
// [httputil]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/squaremap/pkg/config
package pkg
