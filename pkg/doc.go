// Package pkg provides the libraries behind depviz, a dependency analyzer for
// Alpine-style package repositories.
//
// # Overview
//
// depviz reads a package index, builds the dependency graph of one package up
// to a depth limit, computes an installation order and writes the graph as
// Graphviz DOT. The pkg directory is organized into three areas:
//
//  1. Core: [index], [graph], [loadorder], [render/nodelink] and [io]
//  2. Infrastructure: [source], [cache], [httputil] and [observability]
//  3. Orchestration: [pipeline] and [server]
//
// # Architecture
//
//	APKINDEX.tar.gz or test file
//	         ↓
//	    [source] (download, cache, extract)
//	         ↓
//	    [index] (parse into a name → dependencies mapping)
//	         ↓
//	    [graph] (bounded breadth-first traversal)
//	         ↓
//	    [loadorder] (dependencies before dependents, cycle detection)
//	         ↓
//	    [render/nodelink] (DOT, PNG, SVG; [io] for JSON)
//
// # Quick Start
//
//	res, _ := index.Parse(text, index.FormatSimple)
//	g, _ := graph.Build("A", res.Mapping, 3)
//	order, _ := loadorder.Resolve(g, "A")
//	fmt.Println(order.Order, order.CyclesDetected)
//	fmt.Print(nodelink.ToDOT(g, nodelink.Options{}))
//
// Or run every stage at once with [pipeline.Runner].
//
// # Error Handling
//
// Functions return coded errors from [errors]. Use errors.Is(err, code) or
// errors.UserMessage(err) to inspect them.
//
// [index]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/index
// [graph]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/graph
// [loadorder]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/loadorder
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/render/nodelink
// [io]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/io
// [source]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/pipeline#Runner
// [server]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/depviz/pkg/errors
package pkg
