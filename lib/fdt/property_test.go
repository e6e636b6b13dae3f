package fdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPropertyU32(t *testing.T) {
	p := NewPropertyU32("reg", 0x1000)
	require.Equal(t, []byte{0x00, 0x00, 0x10, 0x00}, p.Value)
}

func TestNewPropertyStr(t *testing.T) {
	p := NewPropertyStr("compatible", "acme,widget")
	require.Equal(t, append([]byte("acme,widget"), 0), p.Value)
}

func TestNewPropertyStrs(t *testing.T) {
	p := NewPropertyStrs("compatible", []string{"a", "bc"})
	require.Equal(t, []byte{'a', 0, 'b', 'c', 0}, p.Value)
}

func TestNewPropertyEmpty(t *testing.T) {
	p := NewPropertyEmpty("interrupt-controller")
	require.Empty(t, p.Value)
}
