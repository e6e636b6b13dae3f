package fdtdts

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dtng/devicetree/lib/containers"
)

func TestRemoveCStyleComments(t *testing.T) {
	out, err := removeCStyleComments([]byte("a/* comment */b"))
	require.NoError(t, err)
	require.Equal(t, "ab", string(out))

	_, err = removeCStyleComments([]byte("a/* unterminated"))
	require.Error(t, err)
}

func TestRemoveCppStyleComments(t *testing.T) {
	out := removeCppStyleComments([]byte("a // comment\nb"))
	require.Equal(t, "a \nb", string(out))
}

func TestIncludeOverridesEarlierProperty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/overlay.dtsi", []byte("child {\n\tstatus = <0x1>;\n\tnew-prop;\n};\n"), 0o644))

	src := "/dts-v1/;\n\n/ {\n\tchild {\n\t\tstatus = <0x0>;\n\t};\n\t/include/ \"overlay.dtsi\"\n};\n"
	tree, _, _, err := Parse([]byte(src), Options{BaseDir: dir})
	require.NoError(t, err)

	child := tree.Root().FindChild("child")
	require.True(t, child.OK)
	status := child.Val.FindProperty("status")
	require.True(t, status.OK)
	require.Equal(t, []byte{0, 0, 0, 1}, status.Val.Value())
	require.True(t, child.Val.FindProperty("new-prop").OK)
}

func TestPreprocessInlineIncludeKeepsPrefix(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/other.dtsi", []byte("prop;\n"), 0o644))

	src := "before /include/ \"other.dtsi\"\n"
	out, err := preprocess([]byte(src), dir, defaultMaxIncludeDepth, &containers.IncludeCache{})
	require.NoError(t, err)
	require.Contains(t, string(out), "before")
	require.Contains(t, string(out), "prop;")
}
