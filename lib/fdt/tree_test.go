package fdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeAddChildAndFind(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	require.Equal(t, "/", root.Name())

	soc := root.AddChild("soc", "")
	soc.SetLabel("soc_label")
	uart := soc.AddChild("uart@1000", "uart0")

	found := root.FindDescendantByLabel("uart0")
	require.True(t, found.OK)
	require.Equal(t, uart.ID(), found.Val.ID())

	byPath := root.FindDescendantByPath([]string{"", "soc", "uart@1000"})
	require.True(t, byPath.OK)
	require.Equal(t, uart.ID(), byPath.Val.ID())
}

func TestNodeAddAndDeleteProperty(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	root.AddProperty(NewPropertyU32("#address-cells", 2))
	root.AddProperty(NewPropertyEmpty("interrupt-controller"))

	found := root.FindProperty("#address-cells")
	require.True(t, found.OK)
	require.Len(t, found.Val.Value(), 4)

	require.True(t, root.DeleteProperty("interrupt-controller"))
	require.False(t, root.FindProperty("interrupt-controller").OK)
	require.False(t, root.DeleteProperty("interrupt-controller"))
}

func TestAddPropertyOverwritesSameName(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	root.AddProperty(NewPropertyU32("status", 0))
	root.AddProperty(NewPropertyU32("other", 1))
	root.AddProperty(NewPropertyU32("status", 2))

	require.Len(t, root.Properties(), 2, "same-named property must overwrite, not accumulate")
	found := root.FindProperty("status")
	require.True(t, found.OK)
	require.Equal(t, NewPropertyU32("status", 2).Value, found.Val.Value())
}

func TestNodeDeleteChild(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	root.AddChild("a", "")
	root.AddChild("b", "")

	require.True(t, root.DeleteChild("a"))
	require.False(t, root.FindChild("a").OK)
	require.True(t, root.FindChild("b").OK)
}
