package fdtjson

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dtng/devicetree/lib/fdt"
)

func TestDumpEmptyRoot(t *testing.T) {
	tree := fdt.NewTree()
	out, err := Dump(tree, nil, 0)
	require.NoError(t, err)
	require.Contains(t, out, `"bootCpuidPhys":0`)
	require.Contains(t, out, `"name":"2f"`)
}

func TestDumpIncludesPropertiesAndLabels(t *testing.T) {
	tree := fdt.NewTree()
	root := tree.Root()
	root.AddProperty(fdt.NewPropertyU32("#address-cells", 2))
	root.AddChild("soc", "soc_label")

	out, err := Dump(tree, []fdt.Reservation{{Address: 1, Length: 2}}, 0)
	require.NoError(t, err)
	require.Contains(t, out, `"name":"23616464726573732d63656c6c73"`)
	require.Contains(t, out, `"value":"00000002"`)
	require.Contains(t, out, `"labels":["736f635f6c6162656c"]`)
	require.Contains(t, out, `"address":1,"length":2`)
}
