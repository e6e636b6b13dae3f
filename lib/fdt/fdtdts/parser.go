// Package fdtdts implements the DTS (Device Tree Source) text codec:
// comment stripping, include expansion, the two-pass structure/content
// parse, and the pretty-printer that emits DTS back out.
package fdtdts

import (
	"fmt"
	"strings"

	"github.com/dtng/devicetree/lib/containers"
	"github.com/dtng/devicetree/lib/fdt"
)

// Options tunes parsing behavior that has no single correct answer.
type Options struct {
	// BaseDir resolves relative /include/ paths. Defaults to ".".
	BaseDir string
	// MaxIncludeDepth bounds recursive /include/ expansion. Zero means
	// the default of 8.
	MaxIncludeDepth int
	// Warnf receives non-fatal diagnostics (unresolved references,
	// delete-* on a missing target). Defaults to a no-op.
	Warnf func(format string, args ...any)
}

type parser struct {
	tree         *fdt.Tree
	labels       map[string]fdt.NodeID
	reservations []fdt.Reservation
	nextPhandle  uint32
	warnf        func(format string, args ...any)
}

func (p *parser) warnfSafe(format string, args ...any) {
	if p.warnf != nil {
		p.warnf(format, args...)
	}
}

func formatErr(stage string, err error) error {
	return &fdt.FormatError{Stage: stage, Offset: -1, Err: err}
}

// Parse decodes DTS source into a tree, its reservation list, and the
// boot CPU id (DTS has no syntax for it, so it is always 0).
func Parse(src []byte, opts Options) (*fdt.Tree, []fdt.Reservation, uint32, error) {
	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	depth := opts.MaxIncludeDepth
	if depth == 0 {
		depth = defaultMaxIncludeDepth
	}

	pre, err := preprocess(src, baseDir, depth, &containers.IncludeCache{})
	if err != nil {
		return nil, nil, 0, err
	}

	p := &parser{
		tree:   fdt.NewTree(),
		labels: make(map[string]fdt.NodeID),
		warnf:  opts.Warnf,
	}
	p.warnf = orNoop(p.warnf)

	if err := p.parseTree(pre, true); err != nil {
		return nil, nil, 0, err
	}
	if err := p.parseTree(pre, false); err != nil {
		return nil, nil, 0, err
	}
	if err := p.tree.CheckInvariants(); err != nil {
		return nil, nil, 0, err
	}

	return p.tree, p.reservations, 0, nil
}

func orNoop(f func(string, ...any)) func(string, ...any) {
	if f != nil {
		return f
	}
	return func(string, ...any) {}
}

// parseTree runs the top-level scan (§4.6 step 2): directives up to
// the first `{`, which must open the root node.
func (p *parser) parseTree(src []byte, nodeOnly bool) error {
	i := 0
	var text []byte
	for i < len(src) {
		c := src[i]
		switch c {
		case ';':
			statement := strings.TrimSpace(string(text))
			i++
			text = text[:0]
			if nodeOnly {
				continue
			}
			switch {
			case statement == "/dts-v1/":
				// version acknowledged, nothing else to record
			case strings.HasPrefix(statement, "/memreserve/"):
				fields := strings.Fields(statement)
				if len(fields) != 3 {
					return formatErr("top-level", fmt.Errorf("malformed /memreserve/: %q", statement))
				}
				addr, err := parseCellInt(fields[1], 64)
				if err != nil {
					return formatErr("top-level", fmt.Errorf("malformed /memreserve/ address: %w", err))
				}
				length, err := parseCellInt(fields[2], 64)
				if err != nil {
					return formatErr("top-level", fmt.Errorf("malformed /memreserve/ length: %w", err))
				}
				p.reservations = append(p.reservations, fdt.Reservation{Address: addr, Length: length})
			default:
				return formatErr("top-level", fmt.Errorf("unknown top-level statement: %q", statement))
			}
		case '{':
			nodeName := strings.TrimSpace(string(text))
			if nodeName != "/" && nodeName != "" {
				return formatErr("top-level", fmt.Errorf("node %q is not expected, only the root", nodeName))
			}
			i++
			consumed, err := p.parseNode(src[i:], p.tree.Root(), nodeOnly)
			if err != nil {
				return err
			}
			i += consumed
			text = text[:0]
		default:
			text = append(text, c)
			i++
		}
	}
	return nil
}

func splitLabel(headerText string) (label, name string) {
	if idx := strings.Index(headerText, ":"); idx >= 0 {
		return strings.TrimSpace(headerText[:idx]), strings.TrimSpace(headerText[idx+1:])
	}
	return "", headerText
}

func (p *parser) assignLabel(node fdt.NodeHandle, label string) error {
	if label == "" {
		return nil
	}
	if existing, ok := p.labels[label]; ok && existing != node.ID() {
		return formatErr("node", fmt.Errorf("duplicate label %q (known labels: %v)", label, p.tree.Labels()))
	}
	p.labels[label] = node.ID()
	node.SetLabel(label)
	return nil
}

// parseNode parses one node body (§4.6 step 3), returning the number
// of bytes consumed from src (up to and including the `;` that follows
// the closing `}`).
func (p *parser) parseNode(src []byte, node fdt.NodeHandle, nodeOnly bool) (int, error) {
	i := 0
	var text []byte
	atEnd := false
	for i < len(src) {
		c := src[i]
		switch c {
		case '{':
			header := strings.TrimSpace(string(text))
			label, name := splitLabel(header)
			found := node.FindChild(name)
			var child fdt.NodeHandle
			if found.OK {
				child = found.Val
			} else {
				child = node.AddChild(name, "")
				if err := p.assignLabel(child, label); err != nil {
					return 0, err
				}
			}
			i++
			consumed, err := p.parseNode(src[i:], child, nodeOnly)
			if err != nil {
				return 0, err
			}
			i += consumed
			text = text[:0]
		case '}':
			atEnd = true
			i++
		case '=':
			name := strings.TrimSpace(string(text))
			i++
			consumed, value, err := p.parsePropertyValue(src[i:], nodeOnly)
			if err != nil {
				return 0, formatErr("property-value", err)
			}
			i += consumed
			text = text[:0]
			if !nodeOnly {
				node.AddProperty(fdt.Property{Name: name, Value: value})
			}
		case ';':
			i++
			if atEnd {
				return i, nil
			}
			statement := strings.TrimSpace(string(text))
			text = text[:0]
			if nodeOnly {
				continue
			}
			if strings.HasPrefix(statement, "/") {
				if err := p.applyDirective(node, statement); err != nil {
					return 0, err
				}
			} else {
				node.AddProperty(fdt.Property{Name: statement})
			}
		default:
			text = append(text, c)
			i++
		}
	}
	return 0, formatErr("node", fmt.Errorf("node body not terminated"))
}

func (p *parser) applyDirective(node fdt.NodeHandle, statement string) error {
	fields := strings.Fields(statement)
	if len(fields) == 0 {
		return formatErr("node", fmt.Errorf("empty directive"))
	}
	switch fields[0] {
	case "/delete-node/":
		if len(fields) != 2 {
			return formatErr("node", fmt.Errorf("malformed /delete-node/: %q", statement))
		}
		if !node.DeleteChild(fields[1]) {
			p.warnfSafe("/delete-node/ %s: no such child", fields[1])
		}
	case "/delete-property/":
		if len(fields) != 2 {
			return formatErr("node", fmt.Errorf("malformed /delete-property/: %q", statement))
		}
		if !node.DeleteProperty(fields[1]) {
			p.warnfSafe("/delete-property/ %s: no such property", fields[1])
		}
	default:
		return formatErr("node", fmt.Errorf("unknown directive %q", fields[0]))
	}
	return nil
}
