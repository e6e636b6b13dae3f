// Package fdt is the core, single-threaded model shared by the DTS and
// DTB codecs: properties, nodes, reservations, and the arena-backed
// tree that holds them.
package fdt

import "encoding/binary"

// Property is a named byte string attached to a Node. The
// interpretation of Value is recoverable only from schema knowledge
// external to this package; Property itself treats it as opaque bytes.
type Property struct {
	Name  string
	Value []byte
}

// NewPropertyEmpty returns a valueless property, used for boolean
// flags such as `interrupt-controller;`.
func NewPropertyEmpty(name string) Property {
	return Property{Name: name}
}

// NewPropertyU32 encodes v as a single big-endian 32-bit cell.
func NewPropertyU32(name string, v uint32) Property {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return Property{Name: name, Value: buf}
}

// NewPropertyU64 encodes v as a single big-endian 64-bit value (two
// cells).
func NewPropertyU64(name string, v uint64) Property {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return Property{Name: name, Value: buf}
}

// NewPropertyStr encodes a single NUL-terminated string.
func NewPropertyStr(name string, s string) Property {
	buf := make([]byte, 0, len(s)+1)
	buf = append(buf, s...)
	buf = append(buf, 0)
	return Property{Name: name, Value: buf}
}

// NewPropertyStrs encodes a concatenation of NUL-terminated strings.
func NewPropertyStrs(name string, ss []string) Property {
	var buf []byte
	for _, s := range ss {
		buf = append(buf, s...)
		buf = append(buf, 0)
	}
	return Property{Name: name, Value: buf}
}

// NewPropertyU8s encodes a verbatim byte array.
func NewPropertyU8s(name string, bs []byte) Property {
	buf := make([]byte, len(bs))
	copy(buf, bs)
	return Property{Name: name, Value: buf}
}

// NewPropertyU32s encodes a concatenation of big-endian 32-bit cells.
func NewPropertyU32s(name string, cells []uint32) Property {
	buf := make([]byte, 4*len(cells))
	for i, c := range cells {
		binary.BigEndian.PutUint32(buf[i*4:], c)
	}
	return Property{Name: name, Value: buf}
}
