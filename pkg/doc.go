// Package pkg holds the libraries behind kintree, an interactive family tree
// chart.
//
// # Overview
//
// A chart is a set of people linked by parent, spouse and child references.
// People arrive from a remote family-tree backend one network at a time,
// are merged into a local graph, ranked into generations, laid out as cards
// and rendered for a browser or to files.
//
// The typical data flow:
//
//	Backend (network / search / add / update)
//	         ↓
//	    [api] client (rate limit, retries, cache)
//	         ↓
//	    [chart] coordinator (serialized mutations, pending ids, notices)
//	         ↓
//	    [graph] → [generation] → [layout]
//	         ↓
//	    [render/sink] SVG, JSON, PNG, PDF   [render/nodelink] DOT
//
// # Packages
//
// Domain:
//
//   - [person]: Person records, wire payloads and validation.
//   - [graph]: The person graph, temporary id reconciliation and
//     relationship repair.
//   - [generation]: Generation ranks, hidden branches and components.
//   - [layout]: Card positions, family edges, pins and orientation.
//   - [chart]: Chart state and the [chart.Coordinator] that serializes every
//     operation, talks to the backend and notifies listeners.
//
// Rendering:
//
//   - [render]: The pointer handler contract and raster conversion.
//   - [render/sink]: Card chart output (SVG, JSON, PNG, PDF).
//   - [render/nodelink]: Graphviz node-link diagrams.
//
// Infrastructure:
//
//   - [api]: HTTP client for the family-tree backend.
//   - [cache]: Response caching (file, memory, Redis).
//   - [store]: Saved charts (files, SQLite, MongoDB).
//   - [server]: Browser UI over HTTP and websockets.
//   - [notify]: Expiring user notices.
//   - [config]: TOML configuration.
//   - [errors]: Coded errors and input validation.
//   - [observability]: Hooks for fetch, layout, render, cache and HTTP events.
//   - [httputil]: Retry and status helpers.
//   - [io]: JSON import and export of people.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/kintree/pkg/chart"
//	    "github.com/matzehuels/kintree/pkg/layout"
//	    "github.com/matzehuels/kintree/pkg/render/sink"
//	)
//
//	ch := chart.New(layout.Options{}, nil)
//	if err := ch.Merge(people); err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(ch.Layout(ctx))
//
// The kintree command in cmd/kintree wires these packages together.
//
// [person]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/person
// [graph]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/graph
// [generation]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/generation
// [layout]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/layout
// [chart]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/chart
// [chart.Coordinator]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/chart#Coordinator
// [render]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render/nodelink
// [api]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/api
// [cache]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/server
// [notify]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/notify
// [config]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/httputil
// [io]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/io
package pkg
