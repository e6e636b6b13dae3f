package fdtbin

import (
	"encoding/binary"

	"github.com/dtng/devicetree/lib/binstruct"
	"github.com/dtng/devicetree/lib/containers"
	"github.com/dtng/devicetree/lib/fdt"
)

// valuePool recycles the scratch buffer used to NUL-pad a property
// value to a 4-byte boundary before it is copied into the structure
// block, the same get-fill-release pattern the teacher's
// btrfstree.bytePool uses around a fixed-size read buffer.
var valuePool containers.SlicePool[byte]

func align4(n int) int {
	if rem := n % 4; rem != 0 {
		return n + (4 - rem)
	}
	return n
}

func pad4(buf []byte) []byte {
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// appendPadded copies val into buf followed by enough zero bytes to
// land on a 4-byte boundary, borrowing its scratch space from
// valuePool instead of growing buf byte-by-byte.
func appendPadded(buf, val []byte) []byte {
	n := align4(len(val))
	if n == 0 {
		return buf
	}
	scratch := valuePool.Get(n)
	copy(scratch, val)
	for i := len(val); i < n; i++ {
		scratch[i] = 0
	}
	buf = append(buf, scratch...)
	valuePool.Put(scratch)
	return buf
}

func putU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// stringTable interns property names into the DTB strings block,
// appending each name the first time it is seen.
type stringTable struct {
	buf     []byte
	offsets map[string]uint32
}

func newStringTable() *stringTable {
	return &stringTable{offsets: make(map[string]uint32)}
}

func (t *stringTable) intern(name string) uint32 {
	if off, ok := t.offsets[name]; ok {
		return off
	}
	off := uint32(len(t.buf))
	t.offsets[name] = off
	t.buf = append(t.buf, name...)
	t.buf = append(t.buf, 0)
	return off
}

// Generate serialises tree, reservations, and bootCPUID into a
// byte-exact DTBv17 image.
func Generate(tree *fdt.Tree, reservations []fdt.Reservation, bootCPUID uint32) ([]byte, error) {
	strs := newStringTable()
	var structBuf []byte
	writeNode(&structBuf, strs, tree.Root())
	structBuf = putU32(structBuf, tokenEnd)

	var rsvBuf []byte
	for _, r := range reservations {
		rsvBuf = putU64(rsvBuf, r.Address)
		rsvBuf = putU64(rsvBuf, r.Length)
	}
	rsvBuf = putU64(rsvBuf, 0)
	rsvBuf = putU64(rsvBuf, 0)

	offRsv := headerSize
	offStruct := offRsv + len(rsvBuf)
	offStrings := offStruct + len(structBuf)
	total := offStrings + len(strs.buf)

	hdr := header{
		Magic:           binstruct.U32be(magic),
		TotalSize:       binstruct.U32be(total),
		OffDtStruct:     binstruct.U32be(offStruct),
		OffDtStrings:    binstruct.U32be(offStrings),
		OffMemRsvmap:    binstruct.U32be(offRsv),
		Version:         binstruct.U32be(fdtVersion),
		LastCompVersion: binstruct.U32be(fdtLastCompVersion),
		BootCpuidPhys:   binstruct.U32be(bootCPUID),
		SizeDtStrings:   binstruct.U32be(len(strs.buf)),
		SizeDtStruct:    binstruct.U32be(len(structBuf)),
	}
	hdrBytes, err := binstruct.Marshal(hdr)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, total)
	out = append(out, hdrBytes...)
	out = append(out, rsvBuf...)
	out = append(out, structBuf...)
	out = append(out, strs.buf...)
	return out, nil
}

func putU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func writeNode(buf *[]byte, strs *stringTable, node fdt.NodeHandle) {
	*buf = putU32(*buf, tokenBeginNode)
	name := node.Name()
	if name == "/" {
		name = ""
	}
	*buf = append(*buf, name...)
	*buf = append(*buf, 0)
	*buf = pad4(*buf)

	for _, p := range node.Properties() {
		*buf = putU32(*buf, tokenProp)
		val := p.Value()
		*buf = putU32(*buf, uint32(len(val)))
		*buf = putU32(*buf, strs.intern(p.Name()))
		*buf = appendPadded(*buf, val)
	}

	for _, child := range node.Children() {
		writeNode(buf, strs, child)
	}

	*buf = putU32(*buf, tokenEndNode)
}
