package fdtdts

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtng/devicetree/lib/containers"
	"github.com/dtng/devicetree/lib/fdt"
)

const defaultMaxIncludeDepth = 8

func preErr(err error) error {
	return &fdt.FormatError{Stage: "preprocess", Offset: -1, Err: err}
}

func removeCStyleComments(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src))
	i := 0
	for i < len(src) {
		if i+1 < len(src) && src[i] == '/' && src[i+1] == '*' {
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return nil, fmt.Errorf("unterminated C-style comment")
			}
			i = i + 2 + end + 2
			continue
		}
		out = append(out, src[i])
		i++
	}
	return out, nil
}

func removeCppStyleComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	i := 0
	for i < len(src) {
		if i+1 < len(src) && src[i] == '/' && src[i+1] == '/' {
			j := i + 2
			for j < len(src) && src[j] != '\n' {
				j++
			}
			i = j
			continue
		}
		out = append(out, src[i])
		i++
	}
	return out
}

// preprocess strips comments and expands /include/ "path" directives,
// recursively re-applying itself to included content. depth bounds
// inclusion recursion against cycles.
func preprocess(src []byte, baseDir string, depth int, cache *containers.IncludeCache) ([]byte, error) {
	if depth <= 0 {
		return nil, preErr(fmt.Errorf("maximum inclusion depth reached"))
	}

	stripped, err := removeCStyleComments(src)
	if err != nil {
		return nil, preErr(err)
	}
	stripped = removeCppStyleComments(stripped)

	var out bytes.Buffer
	lines := bytes.Split(stripped, []byte("\n"))
	for _, line := range lines {
		idx := bytes.Index(line, []byte("/include/"))
		if idx < 0 {
			out.Write(line)
			out.WriteByte('\n')
			continue
		}
		if idx > 0 {
			out.Write(line[:idx])
		}
		rest := strings.TrimSpace(string(line[idx+len("/include/"):]))
		if len(rest) < 2 || !strings.HasPrefix(rest, `"`) || !strings.HasSuffix(rest, `"`) {
			return nil, preErr(fmt.Errorf("included file path error: %q", rest))
		}
		path := rest[1 : len(rest)-1]
		fullPath := path
		if !filepath.IsAbs(path) {
			fullPath = filepath.Join(baseDir, path)
		}
		data, ok := cache.Get(fullPath)
		if !ok {
			f, err := os.Open(fullPath)
			if err != nil {
				return nil, preErr(fmt.Errorf("include %q: %w", path, err))
			}
			data, err = io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return nil, preErr(fmt.Errorf("include %q: %w", path, err))
			}
			cache.Add(fullPath, data)
		}
		included, err := preprocess(data, filepath.Dir(fullPath), depth-1, cache)
		if err != nil {
			return nil, err
		}
		out.Write(included)
		out.WriteByte('\n')
	}
	return out.Bytes(), nil
}
