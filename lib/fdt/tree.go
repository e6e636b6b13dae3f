package fdt

import "github.com/dtng/devicetree/lib/containers"

// NodeID and PropID index into a Tree's arenas. They replace the
// source's reference-counted, interior-mutable node cells: a Tree owns
// the backing slices, and NodeHandle/PropHandle are cheap (*Tree, id)
// pairs that stay valid across later mutation of the same tree (e.g.
// attaching a phandle property to a node found in an earlier pass).
type NodeID int
type PropID int

const invalidID = -1

type nodeRec struct {
	name   string
	label  string
	parent NodeID
	props  []PropID
	kids   []NodeID
}

type propRec struct {
	owner NodeID
	prop  Property
}

// Tree is the arena backing one device tree's nodes and properties.
type Tree struct {
	nodes []nodeRec
	props []propRec
}

// NewTree returns a Tree containing a single root node named "/".
func NewTree() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, nodeRec{name: "/", parent: invalidID})
	return t
}

// Root returns a handle to the tree's root node.
func (t *Tree) Root() NodeHandle {
	return NodeHandle{tree: t, id: 0}
}

// NodeHandle is a stable reference to a node owned by a Tree.
type NodeHandle struct {
	tree *Tree
	id   NodeID
}

// PropHandle is a stable reference to a property owned by a Tree.
type PropHandle struct {
	tree *Tree
	id   PropID
}

func (h NodeHandle) rec() *nodeRec { return &h.tree.nodes[h.id] }

func (h NodeHandle) Tree() *Tree { return h.tree }
func (h NodeHandle) ID() NodeID  { return h.id }

func (h NodeHandle) Name() string  { return h.rec().name }
func (h NodeHandle) Label() string { return h.rec().label }

func (h NodeHandle) SetLabel(label string) { h.rec().label = label }

// AddProperty sets p on the node, in its ordered property list. A
// property with the same name already present is overwritten in
// place (so a later /include/d or re-declared value replaces an
// earlier one without changing its position in the list), rather than
// accumulating duplicate entries.
func (h NodeHandle) AddProperty(p Property) PropHandle {
	rec := h.rec()
	for _, id := range rec.props {
		if h.tree.props[id].prop.Name == p.Name {
			h.tree.props[id].prop = p
			return PropHandle{tree: h.tree, id: id}
		}
	}
	id := PropID(len(h.tree.props))
	h.tree.props = append(h.tree.props, propRec{owner: h.id, prop: p})
	rec.props = append(rec.props, id)
	return PropHandle{tree: h.tree, id: id}
}

// AddChild appends a new child node, returning a handle to it.
func (h NodeHandle) AddChild(name, label string) NodeHandle {
	id := NodeID(len(h.tree.nodes))
	h.tree.nodes = append(h.tree.nodes, nodeRec{name: name, label: label, parent: h.id})
	rec := h.rec()
	rec.kids = append(rec.kids, id)
	return NodeHandle{tree: h.tree, id: id}
}

// Properties returns handles to this node's properties, in insertion
// order.
func (h NodeHandle) Properties() []PropHandle {
	rec := h.rec()
	out := make([]PropHandle, len(rec.props))
	for i, id := range rec.props {
		out[i] = PropHandle{tree: h.tree, id: id}
	}
	return out
}

// Children returns handles to this node's children, in insertion
// order.
func (h NodeHandle) Children() []NodeHandle {
	rec := h.rec()
	out := make([]NodeHandle, len(rec.kids))
	for i, id := range rec.kids {
		out[i] = NodeHandle{tree: h.tree, id: id}
	}
	return out
}

// FindProperty returns the first property with the given name, in
// insertion order.
func (h NodeHandle) FindProperty(name string) containers.Optional[PropHandle] {
	for _, ph := range h.Properties() {
		if ph.Name() == name {
			return containers.Optional[PropHandle]{OK: true, Val: ph}
		}
	}
	return containers.Optional[PropHandle]{}
}

// FindChild returns the first direct child with the given name.
func (h NodeHandle) FindChild(name string) containers.Optional[NodeHandle] {
	for _, ch := range h.Children() {
		if ch.Name() == name {
			return containers.Optional[NodeHandle]{OK: true, Val: ch}
		}
	}
	return containers.Optional[NodeHandle]{}
}

// FindDescendantByLabel performs a recursive pre-order search rooted
// at this node for a node bound to the given label.
func (h NodeHandle) FindDescendantByLabel(label string) containers.Optional[NodeHandle] {
	if h.Label() == label {
		return containers.Optional[NodeHandle]{OK: true, Val: h}
	}
	for _, ch := range h.Children() {
		if found := ch.FindDescendantByLabel(label); found.OK {
			return found
		}
	}
	return containers.Optional[NodeHandle]{}
}

// FindDescendantByPath descends matching children at each step of
// parts, rooted at this node.
func (h NodeHandle) FindDescendantByPath(parts []string) containers.Optional[NodeHandle] {
	cur := h
	for _, part := range parts {
		if part == "" {
			continue
		}
		found := cur.FindChild(part)
		if !found.OK {
			return containers.Optional[NodeHandle]{}
		}
		cur = found.Val
	}
	return containers.Optional[NodeHandle]{OK: true, Val: cur}
}

// DeleteChild removes the first direct child with the given name,
// reporting whether one was found.
func (h NodeHandle) DeleteChild(name string) bool {
	rec := h.rec()
	for i, id := range rec.kids {
		if h.tree.nodes[id].name == name {
			rec.kids = append(rec.kids[:i], rec.kids[i+1:]...)
			return true
		}
	}
	return false
}

// DeleteProperty removes the first property with the given name,
// reporting whether one was found.
func (h NodeHandle) DeleteProperty(name string) bool {
	rec := h.rec()
	for i, id := range rec.props {
		if h.tree.props[id].prop.Name == name {
			rec.props = append(rec.props[:i], rec.props[i+1:]...)
			return true
		}
	}
	return false
}

func (h PropHandle) Name() string     { return h.tree.props[h.id].prop.Name }
func (h PropHandle) Value() []byte    { return h.tree.props[h.id].prop.Value }
func (h PropHandle) SetValue(v []byte) {
	h.tree.props[h.id].prop = Property{Name: h.tree.props[h.id].prop.Name, Value: v}
}
