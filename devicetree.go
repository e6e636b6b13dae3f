// Package devicetree converts between Flattened Device Tree source
// (DTS), its compiled binary form (DTB), and an in-memory tree model,
// in either direction.
package devicetree

import (
	"strings"

	"github.com/dtng/devicetree/lib/fdt"
	"github.com/dtng/devicetree/lib/fdt/fdtbin"
	"github.com/dtng/devicetree/lib/fdt/fdtdts"
)

// DeviceTree is the top-level container: a reservation list and
// exactly one root node.
type DeviceTree struct {
	Tree         *fdt.Tree
	Reservations []fdt.Reservation
	// BootCPUID is the DTB header's boot_cpuid_phys field. DTS has no
	// syntax for it, so a tree parsed from DTS always carries 0.
	BootCPUID uint32
}

// ParseOptions configures DTS parsing. A zero value is usable and
// resolves /include/ directives relative to the current directory.
type ParseOptions = fdtdts.Options

// FromDTS parses DTS source text into a DeviceTree.
func FromDTS(src []byte, opts ParseOptions) (*DeviceTree, error) {
	tree, reservations, bootCPUID, err := fdtdts.Parse(src, opts)
	if err != nil {
		return nil, err
	}
	return &DeviceTree{Tree: tree, Reservations: reservations, BootCPUID: bootCPUID}, nil
}

// FromDTB decodes a DTBv17 binary image into a DeviceTree.
func FromDTB(data []byte) (*DeviceTree, error) {
	tree, reservations, bootCPUID, err := fdtbin.Parse(data)
	if err != nil {
		return nil, err
	}
	return &DeviceTree{Tree: tree, Reservations: reservations, BootCPUID: bootCPUID}, nil
}

// ToDTS pretty-prints the tree as DTS source.
func (d *DeviceTree) ToDTS() string {
	return fdtdts.Generate(d.Tree, d.Reservations)
}

// ToDTB serializes the tree as a byte-exact DTBv17 image.
func (d *DeviceTree) ToDTB() ([]byte, error) {
	return fdtbin.Generate(d.Tree, d.Reservations, d.BootCPUID)
}

// Display concatenates the header, reservations, and root node in DTS
// syntax. It is equivalent to ToDTS but named to match the reference
// entry point.
func (d *DeviceTree) Display() string {
	return d.ToDTS()
}

// FindByLabel returns the node bound to label, if any.
func (d *DeviceTree) FindByLabel(label string) (fdt.NodeHandle, bool) {
	found := d.Tree.Root().FindDescendantByLabel(label)
	return found.Val, found.OK
}

// FindByPath resolves a slash-separated absolute path such as
// "/soc/uart@1000" against the root node.
func (d *DeviceTree) FindByPath(path string) (fdt.NodeHandle, bool) {
	parts := strings.Split(path, "/")
	found := d.Tree.Root().FindDescendantByPath(parts)
	return found.Val, found.OK
}
