package fdtbin

import (
	"encoding/binary"
	"fmt"

	"github.com/dtng/devicetree/lib/binstruct"
	"github.com/dtng/devicetree/lib/fdt"
)

func formatErr(offset int, err error) error {
	return &fdt.FormatError{Stage: "dtb", Offset: offset, Err: err}
}

// Parse decodes a DTBv17 image into a tree, its reservation list, and
// the boot_cpuid_phys header field.
func Parse(data []byte) (*fdt.Tree, []fdt.Reservation, uint32, error) {
	if len(data) < headerSize {
		return nil, nil, 0, formatErr(0, fmt.Errorf("truncated header: need %d bytes, have %d", headerSize, len(data)))
	}

	var hdr header
	if _, err := binstruct.Unmarshal(data[:headerSize], &hdr); err != nil {
		return nil, nil, 0, formatErr(0, err)
	}
	if uint32(hdr.Magic) != magic {
		return nil, nil, 0, formatErr(0, fmt.Errorf("bad magic: got %#08x, want %#08x", uint32(hdr.Magic), uint32(magic)))
	}
	// hdr.Version is informational only, per the format: a reader built
	// against v17 still accepts a blob that claims a different version.

	reservations, err := parseReservations(data, int(hdr.OffMemRsvmap))
	if err != nil {
		return nil, nil, 0, err
	}

	tree, err := parseStructure(data, int(hdr.OffDtStruct), int(hdr.OffDtStrings))
	if err != nil {
		return nil, nil, 0, err
	}
	if err := tree.CheckInvariants(); err != nil {
		return nil, nil, 0, err
	}

	return tree, reservations, uint32(hdr.BootCpuidPhys), nil
}

func parseReservations(data []byte, off int) ([]fdt.Reservation, error) {
	var out []fdt.Reservation
	for {
		if off+16 > len(data) {
			return nil, formatErr(off, fmt.Errorf("truncated reservation entry"))
		}
		addr := binary.BigEndian.Uint64(data[off:])
		length := binary.BigEndian.Uint64(data[off+8:])
		off += 16
		if addr == 0 && length == 0 {
			return out, nil
		}
		out = append(out, fdt.Reservation{Address: addr, Length: length})
	}
}

func parseStructure(data []byte, structOff, stringsOff int) (*fdt.Tree, error) {
	off := structOff
	readU32 := func() (uint32, error) {
		if off+4 > len(data) {
			return 0, fmt.Errorf("truncated token at offset %d", off)
		}
		v := binary.BigEndian.Uint32(data[off:])
		off += 4
		return v, nil
	}
	readName := func() (string, error) {
		start := off
		for off < len(data) && data[off] != 0 {
			off++
		}
		if off >= len(data) {
			return "", fmt.Errorf("unterminated name starting at offset %d", start)
		}
		name := string(data[start:off])
		off++ // skip NUL
		off = structOff + align4(off-structOff)
		return name, nil
	}
	resolveName := func(nameoff uint32) (string, error) {
		start := stringsOff + int(nameoff)
		if start < 0 || start >= len(data) {
			return "", fmt.Errorf("nameoff %d out of range", nameoff)
		}
		end := start
		for end < len(data) && data[end] != 0 {
			end++
		}
		if end >= len(data) {
			return "", fmt.Errorf("unterminated string at offset %d", start)
		}
		return string(data[start:end]), nil
	}

	tok, err := readU32()
	if err != nil {
		return nil, formatErr(off, err)
	}
	if tok != tokenBeginNode {
		return nil, formatErr(off-4, fmt.Errorf("structure block does not start with FDT_BEGIN_NODE"))
	}

	tree := fdt.NewTree()

	var walk func(node fdt.NodeHandle) error
	walk = func(node fdt.NodeHandle) error {
		for {
			tok, err := readU32()
			if err != nil {
				return formatErr(off, err)
			}
			switch tok {
			case tokenNop:
				continue
			case tokenProp:
				length, err := readU32()
				if err != nil {
					return formatErr(off, err)
				}
				nameoff, err := readU32()
				if err != nil {
					return formatErr(off, err)
				}
				if off+int(length) > len(data) {
					return formatErr(off, fmt.Errorf("truncated property value"))
				}
				value := make([]byte, length)
				copy(value, data[off:off+int(length)])
				off += int(length)
				off = structOff + align4(off-structOff)
				name, err := resolveName(nameoff)
				if err != nil {
					return formatErr(off, err)
				}
				node.AddProperty(fdt.Property{Name: name, Value: value})
			case tokenBeginNode:
				name, err := readName()
				if err != nil {
					return formatErr(off, err)
				}
				if name == "" {
					name = "/"
				}
				child := node.AddChild(name, "")
				if err := walk(child); err != nil {
					return err
				}
			case tokenEndNode:
				return nil
			default:
				return formatErr(off-4, fmt.Errorf("unexpected structure token %d", tok))
			}
		}
	}

	rootName, err := readName()
	if err != nil {
		return nil, formatErr(off, err)
	}
	_ = rootName // root's own name is fixed to "/" in the model

	if err := walk(tree.Root()); err != nil {
		return nil, err
	}

	tok, err = readU32()
	if err != nil {
		return nil, formatErr(off, err)
	}
	if tok != tokenEnd {
		return nil, formatErr(off-4, fmt.Errorf("structure block did not end with FDT_END"))
	}

	return tree, nil
}
