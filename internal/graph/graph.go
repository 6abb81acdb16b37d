// Package graph provides the import graph of a set of ASN.1 modules.
package graph

import "slices"

// Graph is a directed graph of module names. An edge from A to B records
// that module A imports from module B.
type Graph struct {
	nodes map[string]struct{}
	edges map[string][]string
}

// New returns a graph with no nodes or edges.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[string][]string),
	}
}

// AddNode registers a module. Duplicate calls are no-ops.
func (g *Graph) AddNode(module string) {
	g.nodes[module] = struct{}{}
}

// AddEdge records that "from" imports from "to", meaning "to" must be
// processed before "from". Missing nodes are created implicitly.
// Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.nodes[from] = struct{}{}
	g.nodes[to] = struct{}{}

	if slices.Contains(g.edges[from], to) {
		return
	}
	g.edges[from] = append(g.edges[from], to)
}

// Dependencies returns the modules that module imports from, in the order
// the edges were added.
func (g *Graph) Dependencies(module string) []string {
	return g.edges[module]
}

// HasNode reports whether the module exists in the graph.
func (g *Graph) HasNode(module string) bool {
	_, ok := g.nodes[module]
	return ok
}

// Nodes returns every module in the graph, sorted.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for m := range g.nodes {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}
