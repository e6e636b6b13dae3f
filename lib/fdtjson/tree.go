package fdtjson

import (
	"bytes"
	"fmt"
	"io"

	"git.lukeshu.com/go/lowmemjson"

	"github.com/dtng/devicetree/lib/fdt"
)

// Node wraps a node handle so it can be streamed through lowmemjson
// without building an intermediate tree of map[string]any.
type Node struct {
	Handle fdt.NodeHandle
}

// Tree wraps a whole device tree for JSON dumping.
type Tree struct {
	Tree         *fdt.Tree
	Reservations []fdt.Reservation
	BootCPUID    uint32
}

var (
	_ lowmemjson.Encodable = Node{}
	_ lowmemjson.Encodable = Tree{}
)

func (n Node) EncodeJSON(w io.Writer) error {
	if _, err := fmt.Fprintf(w, `{"name":`); err != nil {
		return err
	}
	if err := EncodeHexString(w, n.Handle.Name()); err != nil {
		return err
	}
	if label := n.Handle.Label(); label != "" {
		if _, err := fmt.Fprintf(w, `,"label":`); err != nil {
			return err
		}
		if err := EncodeHexString(w, label); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `,"properties":[`); err != nil {
		return err
	}
	for i, prop := range n.Handle.Properties() {
		if i > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `{"name":`); err != nil {
			return err
		}
		if err := EncodeHexString(w, prop.Name()); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `,"value":`); err != nil {
			return err
		}
		if err := EncodeHexString(w, prop.Value()); err != nil {
			return err
		}
		if _, err := w.Write([]byte("}")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `],"children":[`); err != nil {
		return err
	}
	for i, child := range n.Handle.Children() {
		if i > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		if err := (Node{Handle: child}).EncodeJSON(w); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte("]}")); err != nil {
		return err
	}
	return nil
}

func (t Tree) EncodeJSON(w io.Writer) error {
	if _, err := fmt.Fprintf(w, `{"bootCpuidPhys":%d,"reservations":[`, t.BootCPUID); err != nil {
		return err
	}
	for i, r := range t.Reservations {
		if i > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `{"address":%d,"length":%d}`, r.Address, r.Length); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `],"labels":[`); err != nil {
		return err
	}
	for i, label := range t.Tree.Labels() {
		if i > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		if err := EncodeHexString(w, label); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `],"root":`); err != nil {
		return err
	}
	if err := (Node{Handle: t.Tree.Root()}).EncodeJSON(w); err != nil {
		return err
	}
	if _, err := w.Write([]byte("}")); err != nil {
		return err
	}
	return nil
}

// Dump returns the tree's JSON encoding as a string.
func Dump(t *fdt.Tree, reservations []fdt.Reservation, bootCPUID uint32) (string, error) {
	var buf bytes.Buffer
	if err := lowmemjson.Encode(&buf, Tree{Tree: t, Reservations: reservations, BootCPUID: bootCPUID}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
