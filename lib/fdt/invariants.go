package fdt

import (
	"fmt"

	"github.com/dtng/devicetree/lib/containers"
)

// CheckInvariants walks the tree verifying the two uniqueness
// invariants the write paths are meant to maintain: every property
// name is unique within its node, and every label is bound to at most
// one node in the whole tree. AddProperty's overwrite-in-place and the
// DTS parser's duplicate-label rejection are supposed to make this
// hold by construction; this is the explicit check both codecs run
// once parsing finishes, rather than trusting that implicitly.
func (t *Tree) CheckInvariants() error {
	labels := containers.NewSet[string]()
	var walk func(NodeHandle) error
	walk = func(n NodeHandle) error {
		names := containers.NewSet[string]()
		for _, p := range n.Properties() {
			if names.Has(p.Name()) {
				return &FormatError{Stage: "invariant", Offset: -1, Err: fmt.Errorf("duplicate property %q on node %q", p.Name(), n.Name())}
			}
			names.Insert(p.Name())
		}
		if label := n.Label(); label != "" {
			if labels.Has(label) {
				return &FormatError{Stage: "invariant", Offset: -1, Err: fmt.Errorf("duplicate label %q", label)}
			}
			labels.Insert(label)
		}
		for _, child := range n.Children() {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t.Root())
}
