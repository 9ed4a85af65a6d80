package graph

import (
	"errors"
	"reflect"
	"testing"
)

func TestGraph_AddEdge(t *testing.T) {
	g := New()
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("AddEdge() error: %v", err)
	}
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("AddEdge() parallel error: %v", err)
	}
	if err := g.AddEdge("b", "c"); err != nil {
		t.Fatalf("AddEdge() error: %v", err)
	}

	if got := g.Nodes(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Nodes() = %v", got)
	}
	if got := g.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v", got)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if got := g.Children("a"); !reflect.DeepEqual(got, []string{"b", "b"}) {
		t.Errorf("Children(a) = %v", got)
	}
	if got := g.Parents("b"); !reflect.DeepEqual(got, []string{"a", "a"}) {
		t.Errorf("Parents(b) = %v", got)
	}
	if g.HasEntry("c") || !g.Has("c") {
		t.Error("c should be a node without an adjacency entry")
	}
	if g.Root() != "a" {
		t.Errorf("Root() = %q, want a", g.Root())
	}
}

func TestGraph_InvalidNodeID(t *testing.T) {
	g := New()
	if err := g.AddNode(""); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(\"\") = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddEdge("a", ""); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddEdge(a, \"\") = %v, want ErrInvalidNodeID", err)
	}
	if g.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d after failed adds, want 0", g.NodeCount())
	}
}

func TestGraph_EmptyEntry(t *testing.T) {
	g := New()
	_ = g.AddNode("leaf")

	deps, ok := g.Deps("leaf")
	if !ok || len(deps) != 0 {
		t.Errorf("Deps(leaf) = %v, %v; want empty, true", deps, ok)
	}
	if _, ok := g.Deps("missing"); ok {
		t.Error("Deps(missing) should report absence")
	}
	if m := g.ToMap(); len(m) != 1 || m["leaf"] == nil {
		t.Errorf("ToMap() = %v", m)
	}
}

func TestFromMap(t *testing.T) {
	g, err := FromMap(map[string][]string{"B": {"A"}, "A": {"B"}})
	if err != nil {
		t.Fatalf("FromMap() error: %v", err)
	}
	if got := g.Edges(); !reflect.DeepEqual(got, []Edge{{"A", "B"}, {"B", "A"}}) {
		t.Errorf("Edges() = %v", got)
	}

	if _, err := FromMap(map[string][]string{"A": {""}}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("FromMap() with empty dep = %v, want ErrInvalidNodeID", err)
	}
}

func TestGraph_Depth(t *testing.T) {
	g := New()
	g.SetDepth("root", 0)
	g.SetDepth("x", 2)

	if d, ok := g.Depth("x"); !ok || d != 2 {
		t.Errorf("Depth(x) = %d, %v", d, ok)
	}
	if _, ok := g.Depth("y"); ok {
		t.Error("Depth(y) should be unknown")
	}
	if g.MaxDepth() != 2 {
		t.Errorf("MaxDepth() = %d, want 2", g.MaxDepth())
	}
}
