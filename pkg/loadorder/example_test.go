package loadorder_test

import (
	"fmt"

	"github.com/matzehuels/depviz/pkg/graph"
	"github.com/matzehuels/depviz/pkg/loadorder"
)

func ExampleResolve() {
	g, _ := graph.FromMap(map[string][]string{
		"app":  {"http", "json"},
		"http": {"net"},
		"json": {},
	})

	res, _ := loadorder.Resolve(g, "app")
	fmt.Println(res.Order)
	fmt.Println("cycles:", res.CyclesDetected)
	// Output:
	// [json net http app]
	// cycles: false
}

func ExampleResolve_cycle() {
	g, _ := graph.FromMap(map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})

	res, _ := loadorder.Resolve(g, "a")
	fmt.Println("order:", res.Order)
	fmt.Println("unresolved:", res.Unresolved)
	// Output:
	// order: []
	// unresolved: [a b]
}
