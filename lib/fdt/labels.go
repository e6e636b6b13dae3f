package fdt

import "golang.org/x/exp/slices"

// Labels returns every label bound in the tree, sorted, for use in
// diagnostics (duplicate-label errors, inspect dumps).
func (t *Tree) Labels() []string {
	var out []string
	var walk func(NodeHandle)
	walk = func(n NodeHandle) {
		if n.Label() != "" {
			out = append(out, n.Label())
		}
		for _, child := range n.Children() {
			walk(child)
		}
	}
	walk(t.Root())
	slices.Sort(out)
	return out
}
