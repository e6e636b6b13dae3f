package fdtdts

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/dtng/devicetree/lib/fdt"
)

// parseCellInt parses a cell/byte integer token: a 0x-prefixed token is
// hex, anything else is decimal, read as a whole token each time (an
// early draft of this parser sliced the string incorrectly and failed
// on plain decimal tokens).
func parseCellInt(tok string, bitSize int) (uint64, error) {
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		return strconv.ParseUint(tok[2:], 16, bitSize)
	}
	return strconv.ParseUint(tok, 10, bitSize)
}

// resolveRef looks up the target of a &label or &{/path} token. ok is
// false when the target cannot be found; callers apply the lenient
// reference policy in that case.
func (p *parser) resolveRef(tok string) (uint32, bool) {
	var target = p.tree.Root()
	var found bool
	if strings.HasPrefix(tok[1:], "{") && strings.HasSuffix(tok, "}") {
		path := tok[2 : len(tok)-1]
		parts := strings.Split(path, "/")
		opt := p.tree.Root().FindDescendantByPath(parts)
		target, found = opt.Val, opt.OK
	} else {
		label := tok[1:]
		opt := p.tree.Root().FindDescendantByLabel(label)
		target, found = opt.Val, opt.OK
	}
	if !found {
		p.warnf("reference %q: no such label or path", tok)
		return 0, false
	}
	if ph := target.FindProperty("phandle"); ph.OK {
		v := ph.Val.Value()
		if len(v) >= 4 {
			return binary.BigEndian.Uint32(v), true
		}
	}
	id := p.nextPhandle
	p.nextPhandle++
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, id)
	target.AddProperty(fdt.Property{Name: "phandle", Value: buf})
	return id, true
}

func parseCellsPiece(p *parser, text string) []byte {
	var out []byte
	for _, tok := range strings.Fields(text) {
		if strings.HasPrefix(tok, "&") {
			v, ok := p.resolveRef(tok)
			if !ok {
				continue
			}
			buf := make([]byte, 4)
			binary.BigEndian.PutUint32(buf, v)
			out = append(out, buf...)
			continue
		}
		v, err := parseCellInt(tok, 32)
		if err != nil {
			p.warnf("malformed cell %q: %v", tok, err)
			continue
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(v))
		out = append(out, buf...)
	}
	return out
}

func parseBytesPiece(p *parser, text string) []byte {
	var out []byte
	for _, tok := range strings.Fields(text) {
		v, err := parseCellInt(tok, 8)
		if err != nil {
			p.warnf("malformed byte %q: %v", tok, err)
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

func parseStringPiece(text string) []byte {
	out := make([]byte, 0, len(text)+1)
	out = append(out, text...)
	out = append(out, 0)
	return out
}

// parsePropertyValue scans one property's right-hand-side value (the
// bytes between `=` and the terminating `;`), dispatching `<...>`,
// `[...]`, and `"..."` pieces. When nodeOnly is true, pieces are
// skipped lexically without being interpreted or resolved — Pass A
// never allocates phandles or sees reference targets.
func (p *parser) parsePropertyValue(src []byte, nodeOnly bool) (int, []byte, error) {
	var value []byte
	var text []byte
	pieceType := 0 // 0=none, 1=cell, 2=bytes, 3=string
	i := 0
	for i < len(src) {
		c := src[i]
		switch c {
		case '<':
			if pieceType != 0 {
				return 0, nil, fmt.Errorf("found cell-start while parsing another value type %d", pieceType)
			}
			pieceType = 1
			text = text[:0]
		case '>':
			if pieceType != 1 {
				return 0, nil, fmt.Errorf("found cell-end while parsing another value type %d", pieceType)
			}
			pieceType = 0
			if !nodeOnly {
				value = append(value, parseCellsPiece(p, string(text))...)
			}
			text = text[:0]
		case '[':
			if pieceType != 0 {
				return 0, nil, fmt.Errorf("found bytes-start while parsing another value type %d", pieceType)
			}
			pieceType = 2
			text = text[:0]
		case ']':
			if pieceType != 2 {
				return 0, nil, fmt.Errorf("found bytes-end while parsing another value type %d", pieceType)
			}
			pieceType = 0
			if !nodeOnly {
				value = append(value, parseBytesPiece(p, string(text))...)
			}
			text = text[:0]
		case '"':
			switch pieceType {
			case 0:
				pieceType = 3
				text = text[:0]
			case 3:
				pieceType = 0
				if !nodeOnly {
					value = append(value, parseStringPiece(string(text))...)
				}
				text = text[:0]
			default:
				return 0, nil, fmt.Errorf("found string while parsing another value type %d", pieceType)
			}
		case '\\':
			text = append(text, c)
			i++
			if i >= len(src) {
				return 0, nil, fmt.Errorf("dangling escape at end of value")
			}
			text = append(text, src[i])
		case ';':
			return i + 1, value, nil
		default:
			text = append(text, c)
		}
		i++
	}
	return 0, nil, fmt.Errorf("property value not terminated")
}
