package graph_test

import (
	"fmt"

	"github.com/matzehuels/depviz/pkg/graph"
	"github.com/matzehuels/depviz/pkg/index"
)

func ExampleBuild() {
	res, _ := index.Parse("app: lib log\nlib: core\ncore: libc\n", index.FormatSimple)

	// Expand two levels: core is reached but not expanded.
	g, _ := graph.Build("app", res.Mapping, 2)
	for _, e := range g.Edges() {
		fmt.Printf("%s -> %s\n", e.From, e.To)
	}
	// Output:
	// app -> lib
	// app -> log
	// lib -> core
}
