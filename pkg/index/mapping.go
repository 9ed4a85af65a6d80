package index

import (
	"maps"
	"slices"
)

// Mapping maps package names to their ordered direct dependencies.
//
// Package order is the order in which names were first declared and each
// dependency list keeps the order (and duplicates) of the input. A Mapping is
// built once by [Parse] and must be treated as read-only afterwards.
type Mapping struct {
	names []string
	deps  map[string][]string
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{deps: make(map[string][]string)}
}

// FromMap builds a mapping from a plain map. Package names are ordered
// lexically because Go maps carry no insertion order; dependency lists are
// copied as given.
func FromMap(m map[string][]string) *Mapping {
	out := NewMapping()
	for _, name := range slices.Sorted(maps.Keys(m)) {
		out.replace(name, m[name])
	}
	return out
}

// Deps returns the dependencies of name and whether name is declared.
// The returned slice is a read-only view.
func (m *Mapping) Deps(name string) ([]string, bool) {
	d, ok := m.deps[name]
	return d, ok
}

// Has reports whether name is declared in the mapping.
func (m *Mapping) Has(name string) bool {
	_, ok := m.deps[name]
	return ok
}

// Names returns all declared package names in declaration order.
func (m *Mapping) Names() []string { return slices.Clone(m.names) }

// Len returns the number of declared packages.
func (m *Mapping) Len() int { return len(m.names) }

// EdgeCount returns the total number of dependency entries, duplicates included.
func (m *Mapping) EdgeCount() int {
	n := 0
	for _, d := range m.deps {
		n += len(d)
	}
	return n
}

// ToMap returns a deep copy as a plain map.
func (m *Mapping) ToMap() map[string][]string {
	out := make(map[string][]string, len(m.deps))
	for k, v := range m.deps {
		out[k] = slices.Clone(v)
	}
	return out
}

func (m *Mapping) clone() *Mapping {
	out := &Mapping{
		names: slices.Clone(m.names),
		deps:  make(map[string][]string, len(m.deps)),
	}
	for k, v := range m.deps {
		out.deps[k] = slices.Clone(v)
	}
	return out
}

func (m *Mapping) declare(name string) {
	if _, ok := m.deps[name]; ok {
		return
	}
	m.names = append(m.names, name)
	m.deps[name] = []string{}
}

func (m *Mapping) append(name string, deps []string) {
	m.declare(name)
	m.deps[name] = append(m.deps[name], deps...)
}

// replace keeps the original declaration position of name.
func (m *Mapping) replace(name string, deps []string) {
	m.declare(name)
	m.deps[name] = slices.Clone(deps)
	if m.deps[name] == nil {
		m.deps[name] = []string{}
	}
}
