package fdtdts

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dtng/devicetree/lib/fdt"
)

func TestEmptyRootRoundTrip(t *testing.T) {
	src := "/dts-v1/;\n\n/ {\n};\n"
	tree, reservations, bootCPUID, err := Parse([]byte(src), Options{})
	require.NoError(t, err)
	require.Equal(t, uint32(0), bootCPUID)
	require.Empty(t, reservations)

	out := Generate(tree, reservations)
	require.Equal(t, src, out)
}

func TestPropertyAndChildGeneration(t *testing.T) {
	src := "/dts-v1/;\n\n/ {\n\tprop = <0x2a>;\n\tsub { };\n};\n"
	tree, reservations, _, err := Parse([]byte(src), Options{})
	require.NoError(t, err)

	root := tree.Root()
	prop := root.FindProperty("prop")
	require.True(t, prop.OK)
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x2a}, prop.Val.Value())

	sub := root.FindChild("sub")
	require.True(t, sub.OK)
	require.Empty(t, sub.Val.Properties())

	out := Generate(tree, reservations)
	require.Equal(t, "/dts-v1/;\n\n/ {\n\tprop = <0x0 0x0 0x0 0x2a>;\n\n\tsub {\n\t};\n};\n", out)
}

func TestMemreserve(t *testing.T) {
	src := "/dts-v1/;\n\n/memreserve/ 0x0 0x100000;\n\n/ {\n};\n"
	_, reservations, _, err := Parse([]byte(src), Options{})
	require.NoError(t, err)
	require.Equal(t, []fdt.Reservation{{Address: 0, Length: 0x100000}}, reservations)
}

func TestPhandleReferenceBothOrders(t *testing.T) {
	for _, src := range []string{
		"/dts-v1/;\n\n/ {\n\tlabel: node {};\n\tother {\n\t\tref = <&label>;\n\t};\n};\n",
		"/dts-v1/;\n\n/ {\n\tother {\n\t\tref = <&label>;\n\t};\n\tlabel: node {};\n};\n",
	} {
		tree, _, _, err := Parse([]byte(src), Options{})
		require.NoError(t, err)

		node := tree.Root().FindDescendantByLabel("label")
		require.True(t, node.OK)
		ph := node.Val.FindProperty("phandle")
		require.True(t, ph.OK)

		other := tree.Root().FindChild("other")
		require.True(t, other.OK)
		ref := other.Val.FindProperty("ref")
		require.True(t, ref.OK)
		require.Equal(t, ph.Val.Value(), ref.Val.Value())
	}
}

func TestDeleteNode(t *testing.T) {
	src := "/dts-v1/;\n\n/ {\n\tfoo {};\n\t/delete-node/ foo;\n};\n"
	tree, _, _, err := Parse([]byte(src), Options{})
	require.NoError(t, err)
	require.False(t, tree.Root().FindChild("foo").OK)
}

func TestDeleteProperty(t *testing.T) {
	src := "/dts-v1/;\n\n/ {\n\tfoo;\n\t/delete-property/ foo;\n};\n"
	tree, _, _, err := Parse([]byte(src), Options{})
	require.NoError(t, err)
	require.False(t, tree.Root().FindProperty("foo").OK)
}

func TestUnterminatedCommentIsFatal(t *testing.T) {
	src := "/dts-v1/;\n/* unterminated\n/ {\n};\n"
	_, _, _, err := Parse([]byte(src), Options{})
	require.Error(t, err)
}
