package fdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckInvariantsAcceptsCleanTree(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	root.AddProperty(NewPropertyU32("#address-cells", 2))
	child := root.AddChild("soc", "soc_label")
	child.AddProperty(NewPropertyEmpty("interrupt-controller"))

	require.NoError(t, tree.CheckInvariants())
}

func TestCheckInvariantsRejectsDuplicateLabel(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	root.AddChild("a", "shared")
	root.AddChild("b", "shared")

	err := tree.CheckInvariants()
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate label")
}
