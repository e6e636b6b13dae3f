package fdtdts

import (
	"fmt"
	"strings"

	"github.com/dtng/devicetree/lib/fdt"
)

func indent(level int) string {
	return strings.Repeat("\t", level)
}

func generateProperty(p fdt.PropHandle, level int) string {
	var b strings.Builder
	b.WriteString(indent(level))
	b.WriteString(p.Name())
	val := p.Value()
	if len(val) == 0 {
		b.WriteString(";")
		return b.String()
	}
	b.WriteString(" = <")
	for i, d := range val {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "0x%x", d)
	}
	b.WriteString(">;")
	return b.String()
}

func generateNode(node fdt.NodeHandle, level int) string {
	var b strings.Builder
	b.WriteString(indent(level))
	if label := node.Label(); label != "" {
		b.WriteString(label)
		b.WriteString(": ")
	}
	name := node.Name()
	if name == "/" {
		b.WriteString("/ ")
	} else {
		b.WriteString(name)
		b.WriteString(" ")
	}
	b.WriteString("{\n")

	props := node.Properties()
	for _, p := range props {
		b.WriteString(generateProperty(p, level+1))
		b.WriteString("\n")
	}

	for _, child := range node.Children() {
		b.WriteString("\n")
		b.WriteString(generateNode(child, level+1))
		b.WriteString("\n")
	}

	b.WriteString(indent(level))
	b.WriteString("};")
	return b.String()
}

func generateReservation(r fdt.Reservation) string {
	return fmt.Sprintf("/memreserve/ 0x%016x 0x%016x;", r.Address, r.Length)
}

// Generate pretty-prints tree and reservations as DTS text, matching
// the canonical header, reservation, and indentation conventions.
func Generate(tree *fdt.Tree, reservations []fdt.Reservation) string {
	var b strings.Builder
	b.WriteString("/dts-v1/;\n\n")
	if len(reservations) > 0 {
		for _, r := range reservations {
			b.WriteString(generateReservation(r))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(generateNode(tree.Root(), 0))
	b.WriteString("\n")
	return b.String()
}
