package asn1cst

import (
	"slices"

	"github.com/golangsnmp/asn1cst/internal/graph"
)

// Modules returns the module definitions of tree in source order. The
// root is the first module; further modules in the same file are its
// children of kind "module-definition".
func Modules(tree *Tree) []*Node {
	root := tree.RootNode()
	out := []*Node{root}
	for _, n := range root.NamedChildren() {
		if n.Kind() == root.Kind() {
			out = append(out, n)
		}
	}
	return out
}

// Imports returns the module name from the header of the first module in
// tree and the modules its IMPORTS clause names, in source order without
// duplicates. The name is empty when the file has no module header.
func Imports(tree *Tree) (module string, imports []string) {
	return ModuleImports(tree.RootNode())
}

// ModuleImports is Imports for one module definition node, as returned by
// Modules.
func ModuleImports(def *Node) (module string, imports []string) {
	if id := def.ChildByFieldName("name"); id != nil {
		if name := id.ChildByFieldName("name"); name != nil {
			module = name.Text()
		}
	}
	body := def.ChildByFieldName("body")
	if body == nil {
		return module, nil
	}
	for _, clause := range body.NamedChildren() {
		if clause.Kind() != "imports" {
			continue
		}
		for n := range clause.Descendants() {
			if n.Kind() != "symbols-from-module" {
				continue
			}
			ref := n.ChildByFieldName("module")
			if ref == nil || ref.IsMissing() {
				continue
			}
			if name := ref.Text(); !slices.Contains(imports, name) {
				imports = append(imports, name)
			}
		}
	}
	return module, imports
}

// ImportGraph is the import structure of a set of parsed modules.
type ImportGraph struct {
	// Order lists the modules with every module after the modules it
	// imports from. Modules in Cycles are left out.
	Order []string
	// Cycles holds each group of modules that import from one another
	// circularly, sorted by name.
	Cycles [][]string
	// Missing lists, sorted, the imported modules that are not among the
	// parsed files.
	Missing []string
	// Imports maps each parsed module to the modules it imports from.
	Imports map[string][]string
}

// BuildImportGraph collects the IMPORTS clauses of every module in
// results. Files that could not be read and modules without a header are
// skipped.
func BuildImportGraph(results []FileResult) ImportGraph {
	g := graph.New()
	ig := ImportGraph{Imports: make(map[string][]string)}
	for _, r := range results {
		if r.Tree == nil {
			continue
		}
		for _, def := range Modules(r.Tree) {
			module, imports := ModuleImports(def)
			if module == "" {
				continue
			}
			g.AddNode(module)
			for _, imp := range imports {
				g.AddEdge(module, imp)
			}
			ig.Imports[module] = imports
		}
	}
	for _, m := range g.Nodes() {
		if _, parsed := ig.Imports[m]; !parsed {
			ig.Missing = append(ig.Missing, m)
		}
	}
	ig.Order, ig.Cycles = g.Order()
	return ig
}
