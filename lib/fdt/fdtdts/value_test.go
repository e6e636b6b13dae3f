package fdtdts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCellIntHexAndDecimal(t *testing.T) {
	v, err := parseCellInt("0x2a", 32)
	require.NoError(t, err)
	require.Equal(t, uint64(42), v)

	v, err = parseCellInt("42", 32)
	require.NoError(t, err)
	require.Equal(t, uint64(42), v)

	v, err = parseCellInt("0X2A", 32)
	require.NoError(t, err)
	require.Equal(t, uint64(42), v)
}

func TestParseCellIntRejectsOverflow(t *testing.T) {
	_, err := parseCellInt("0x100000000", 32)
	require.Error(t, err)
}

func TestParseStringPieceKeepsEscapeBackslash(t *testing.T) {
	// The original grammar does not strip the backslash from an escape
	// sequence inside a string literal; it is carried into the value
	// verbatim along with the escaped character.
	out := parseStringPiece(`a\nb`)
	require.Equal(t, append([]byte(`a\nb`), 0), out)
}
