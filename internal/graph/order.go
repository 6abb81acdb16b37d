package graph

import "slices"

// Order returns modules ordered so that imported modules come before the
// modules importing them, using Tarjan's algorithm. Strongly connected
// components with more than one node (or a single node importing itself)
// are reported as cycles and left out of the order. A module that imports
// from a cycle still appears in the order. Output is deterministic: roots
// are visited in sorted order and edges in insertion order.
func (g *Graph) Order() (order []string, cycles [][]string) {
	var (
		index    int
		stack    []string
		onStack  = make(map[string]bool)
		indices  = make(map[string]int)
		lowlinks = make(map[string]int)
	)

	var strongConnect func(m string)
	strongConnect = func(m string) {
		indices[m] = index
		lowlinks[m] = index
		index++
		stack = append(stack, m)
		onStack[m] = true

		for _, dep := range g.edges[m] {
			if _, visited := indices[dep]; !visited {
				strongConnect(dep)
				lowlinks[m] = min(lowlinks[m], lowlinks[dep])
			} else if onStack[dep] {
				lowlinks[m] = min(lowlinks[m], indices[dep])
			}
		}

		if lowlinks[m] != indices[m] {
			return
		}
		var scc []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == m {
				break
			}
		}
		if len(scc) > 1 || slices.Contains(g.edges[m], m) {
			slices.Sort(scc)
			cycles = append(cycles, scc)
			return
		}
		order = append(order, m)
	}

	for _, m := range g.Nodes() {
		if _, visited := indices[m]; !visited {
			strongConnect(m)
		}
	}

	return order, cycles
}

// HasCycles reports whether any modules import each other circularly.
func (g *Graph) HasCycles() bool {
	_, cycles := g.Order()
	return len(cycles) > 0
}
