package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifact_ResolveCanonicalizes(t *testing.T) {
	root := t.TempDir()
	a := New(root, ".", false)
	child := a.Resolve("a/./b/../c")
	assert.Equal(t, "a/c", child.CanonicalName())
}

func TestArtifact_WriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	a := New(root, "out/result.txt", false)
	require.NoError(t, a.WriteAll([]byte("hello")))

	data, err := a.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.True(t, a.IsFile())
}

func TestArtifact_ReadOnlyRejectsWrite(t *testing.T) {
	root := t.TempDir()
	a := New(root, "src.cpp", true)
	err := a.WriteAll([]byte("nope"))
	assert.Error(t, err)
	assert.False(t, a.Exists())
}

func TestArtifact_HashNullForMissing(t *testing.T) {
	root := t.TempDir()
	a := New(root, "missing", false)
	h, err := a.Hash()
	require.NoError(t, err)
	assert.True(t, h.IsNull())
}

func TestArtifact_HashChangesWithContent(t *testing.T) {
	root := t.TempDir()
	a := New(root, "f", false)
	require.NoError(t, a.WriteAll([]byte("v1")))
	h1, err := a.Hash()
	require.NoError(t, err)

	require.NoError(t, a.WriteAll([]byte("v2")))
	h2, err := a.Hash()
	require.NoError(t, err)

	assert.False(t, h1.Equal(h2))
}

func TestArtifact_LinkHardLinksContent(t *testing.T) {
	root := t.TempDir()
	src := New(root, "src/tool", false)
	require.NoError(t, src.WriteAll([]byte("binary")))

	dst := New(root, "bin/tool", false)
	require.NoError(t, src.Link(dst))

	data, err := os.ReadFile(filepath.Join(root, "bin", "tool"))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))
}

func TestArtifact_ReadDirListsChildren(t *testing.T) {
	root := t.TempDir()
	dir := New(root, "d", false)
	require.NoError(t, dir.Resolve("x").WriteAll([]byte("1")))
	require.NoError(t, dir.Resolve("y").WriteAll([]byte("2")))

	entries, err := dir.ReadDir()
	require.NoError(t, err)
	names := []string{entries[0].Basename(), entries[1].Basename()}
	assert.ElementsMatch(t, []string{"x", "y"}, names)
}

func TestArtifact_ParentOfRootIsRoot(t *testing.T) {
	root := t.TempDir()
	a := New(root, ".", false)
	assert.Equal(t, ".", a.Parent().CanonicalName())
}

func TestArtifact_Tag(t *testing.T) {
	root := t.TempDir()
	a := New(root, "src/a.cpp", true)
	assert.True(t, a.Tag().Equal(a.Tag()))
}
