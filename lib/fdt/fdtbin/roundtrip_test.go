package fdtbin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dtng/devicetree/lib/fdt"
)

func buildSampleTree() (*fdt.Tree, []fdt.Reservation) {
	tree := fdt.NewTree()
	root := tree.Root()
	root.AddProperty(fdt.NewPropertyU32("#address-cells", 2))
	root.AddProperty(fdt.NewPropertyU32("#size-cells", 1))

	soc := root.AddChild("soc", "soc_label")
	soc.AddProperty(fdt.NewPropertyStr("compatible", "acme,soc"))

	uart := soc.AddChild("uart@1000", "")
	uart.AddProperty(fdt.NewPropertyU32s("reg", []uint32{0x1000, 0x100}))
	uart.AddProperty(fdt.NewPropertyEmpty("interrupt-controller"))

	reservations := []fdt.Reservation{{Address: 0x1000, Length: 0x200}}
	return tree, reservations
}

func TestGenerateParseRoundTrip(t *testing.T) {
	tree, reservations := buildSampleTree()

	data, err := Generate(tree, reservations, 0)
	require.NoError(t, err)

	gotTree, gotReservations, bootCPUID, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, uint32(0), bootCPUID)
	require.Equal(t, reservations, gotReservations)

	root := gotTree.Root()
	require.Len(t, root.Properties(), 2)
	require.Len(t, root.Children(), 1)

	soc := root.Children()[0]
	require.Equal(t, "soc", soc.Name())
	require.Len(t, soc.Children(), 1)

	uart := soc.Children()[0]
	require.Equal(t, "uart@1000", uart.Name())
	regProp := uart.FindProperty("reg")
	require.True(t, regProp.OK)
	require.Equal(t, []byte{0, 0, 0x10, 0, 0, 0, 0x1, 0}, regProp.Val.Value())
}

func TestGenerateEmptyRootExactBytes(t *testing.T) {
	tree := fdt.NewTree()
	data, err := Generate(tree, nil, 0)
	require.NoError(t, err)

	require.Equal(t, headerSize, 40)
	structOff := int(data[8])<<24 | int(data[9])<<16 | int(data[10])<<8 | int(data[11])
	rsvOff := int(data[16])<<24 | int(data[17])<<16 | int(data[18])<<8 | int(data[19])

	require.Equal(t, headerSize, rsvOff)
	require.Equal(t, make([]byte, 16), data[rsvOff:rsvOff+16], "empty reservation block is the (0,0) sentinel only")

	wantStruct := []byte{
		0, 0, 0, 1, // FDT_BEGIN_NODE
		0, 0, 0, 0, // empty root name, NUL-padded to 4 bytes
		0, 0, 0, 2, // FDT_END_NODE
		0, 0, 0, 9, // FDT_END
	}
	require.Equal(t, wantStruct, data[structOff:structOff+len(wantStruct)])
}

func TestParseRejectsBadMagic(t *testing.T) {
	data := make([]byte, headerSize)
	_, _, _, err := Parse(data)
	require.Error(t, err)
}

func TestParseRejectsTruncatedHeader(t *testing.T) {
	_, _, _, err := Parse([]byte{0, 1, 2})
	require.Error(t, err)
}

func FuzzGenerateParseRoundTrip(f *testing.F) {
	f.Add(uint32(2), uint32(1), "soc", "acme,soc", "uart@1000")
	f.Fuzz(func(t *testing.T, addrCells, sizeCells uint32, socName, compat, uartName string) {
		if socName == "" || uartName == "" {
			t.Skip()
		}
		for _, s := range []string{socName, compat, uartName} {
			for _, c := range s {
				if c == 0 {
					t.Skip()
				}
			}
		}
		tree := fdt.NewTree()
		root := tree.Root()
		root.AddProperty(fdt.NewPropertyU32("#address-cells", addrCells))
		root.AddProperty(fdt.NewPropertyU32("#size-cells", sizeCells))
		soc := root.AddChild(socName, "")
		soc.AddProperty(fdt.NewPropertyStr("compatible", compat))
		soc.AddChild(uartName, "")

		data, err := Generate(tree, nil, 0)
		require.NoError(t, err)

		gotTree, _, _, err := Parse(data)
		require.NoError(t, err)
		require.Equal(t, socName, gotTree.Root().Children()[0].Name())
	})
}
