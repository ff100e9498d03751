// Package pkg provides the core libraries for Kintree family charts.
//
// # Overview
//
// Kintree turns a family snapshot (people with a generation, parents and an
// optional spouse) into a generation-layered chart: one row per generation,
// couples placed side by side and children grouped under their parents. The
// pkg directory is organized into four areas:
//
//  1. [family] - The data model, snapshot decoding, relation lookup and the
//     background snapshot loader.
//  2. [layout] - The deterministic layout algorithm.
//  3. [render] - Output formats for a computed layout (SVG, DOT/PNG, JSON).
//  4. [pipeline] - Orchestration (load → layout → render) with caching, used
//     by the CLI and the HTTP server.
//
// # Architecture
//
// The typical data flow through Kintree:
//
//	family-data.json / URL / chart store
//	         ↓
//	    [family] package (decode + validate)
//	         ↓
//	    [layout] package (positions + connectors)
//	         ↓
//	    [render] packages
//	         ↓
//	    SVG/PNG/DOT/JSON output
//
// # Quick Start
//
// Load a snapshot and lay it out:
//
//	data, err := family.Load(ctx, family.FileSource{Path: "family-data.json"})
//	if err != nil {
//	    return err
//	}
//	res := layout.Layout(data.People)
//	out := svg.Render(res, svg.WithFamily(data.People), svg.WithTitle("The Kings"))
//
// Or let the pipeline cache layouts and artifacts:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "family-data.json",
//	    Formats: []string{"svg", "json"},
//	})
//
// # Main Packages
//
// [family] - Person and FamilyData, lookups, forward and symmetric relation
// resolution, and a Loader with pending/ready/failed states.
//
// [layout] - Generation buckets, couple placement, parent-group spacing and
// parent→child connectors. [layout.Compute] takes a [layout.Config]; the
// zero-config [layout.Layout] uses the default spacing.
//
// [render/svg] - Self-contained SVG cards and connectors.
//
// [render/nodelink] - Graphviz DOT output and PNG rasterization.
//
// [render/jsonout] - The layout result as JSON.
//
// [pipeline] - Input classification, option validation and the cached runner.
//
// [cache] - File, Redis and null caches for fetched snapshots, layouts and
// rendered artifacts.
//
// [store] - Persistent chart storage with SQLite and MongoDB backends.
//
// [server] - The HTTP API over one snapshot.
//
// [observability] - Hook interfaces with logging and Prometheus
// implementations.
//
// [errors] - Coded errors shared by every package.
//
// [family]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/family
// [layout]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render/svg
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render/nodelink
// [render/jsonout]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render/jsonout
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/errors
package pkg
