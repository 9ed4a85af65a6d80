package index_test

import (
	"fmt"

	"github.com/matzehuels/depviz/pkg/index"
)

func ExampleParse_structured() {
	text := `P:curl
V:8.9.1-r1
D:ca-certificates-bundle so:libc.musl-x86_64.so.1 so:libcurl.so.4 libcurl

P:libcurl
D:so:libz.so.1 zlib
`
	res, _ := index.Parse(text, index.FormatStructured)
	for _, name := range res.Mapping.Names() {
		deps, _ := res.Mapping.Deps(name)
		fmt.Println(name, deps)
	}
	// Output:
	// curl [ca-certificates-bundle libcurl]
	// libcurl [zlib]
}

func ExampleParse_simple() {
	text := `A: B C
B: D
garbage
`
	res, _ := index.Parse(text, index.FormatSimple)
	deps, _ := res.Mapping.Deps("A")
	fmt.Println("A", deps)
	fmt.Println("skipped:", res.Skipped[0])
	// Output:
	// A [B C]
	// skipped: line 3: missing ':' separator
}
