package provision

import (
	"testing"

	"github.com/ekam-build/ekam/internal/artifact"
	"github.com/ekam-build/ekam/internal/ids"
	"github.com/ekam-build/ekam/internal/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkProvision(root *artifact.Artifact, id ids.ProvisionID, relPath string, t tag.Tag) *Provision {
	a := root.Resolve(relPath)
	return &Provision{ID: id, Art: a, Hash: tag.HashBytes([]byte(relPath)), Tags: []tag.Tag{t}}
}

func TestTagIndex_InsertAndCandidates(t *testing.T) {
	root := artifact.New("/project", ".", false)
	idx := NewTagIndex()
	ht := tag.FromName("header:x.h")

	p := mkProvision(&root, 1, "src/lib/x.h", ht)
	idx.Insert(p)

	cands := idx.Candidates(ht)
	require.Len(t, cands, 1)
	assert.Equal(t, p.ID, cands[0].ID)
}

func TestTagIndex_Remove(t *testing.T) {
	root := artifact.New("/project", ".", false)
	idx := NewTagIndex()
	ht := tag.FromName("header:x.h")

	p := mkProvision(&root, 1, "src/lib/x.h", ht)
	idx.Insert(p)
	idx.Remove(p)

	_, ok := idx.Preferred(ht, "src/tool/use.cpp")
	assert.False(t, ok)
}

func TestTagIndex_Preferred_LongestCommonPrefixWins(t *testing.T) {
	root := artifact.New("/project", ".", false)
	idx := NewTagIndex()
	ht := tag.FromName("header:x.h")

	lib := mkProvision(&root, 1, "src/lib/x.h", ht)
	toolP := mkProvision(&root, 2, "src/tool/x.h", ht)
	idx.Insert(lib)
	idx.Insert(toolP)

	chosen, ok := idx.Preferred(ht, "src/tool/use.cpp")
	require.True(t, ok)
	assert.Equal(t, toolP.ID, chosen.ID)
}

func TestTagIndex_Preferred_TieBreaksOnDepthThenName(t *testing.T) {
	root := artifact.New("/project", ".", false)
	idx := NewTagIndex()
	ht := tag.FromName("header:common.h")

	deep := mkProvision(&root, 1, "vendor/a/b/common.h", ht)
	shallow := mkProvision(&root, 2, "vendor/common.h", ht)
	idx.Insert(deep)
	idx.Insert(shallow)

	// Neither shares any path segment with the consumer, so depth breaks the tie.
	chosen, ok := idx.Preferred(ht, "app/main.cpp")
	require.True(t, ok)
	assert.Equal(t, shallow.ID, chosen.ID)
}

func TestTagIndex_Preferred_NotFound(t *testing.T) {
	idx := NewTagIndex()
	_, ok := idx.Preferred(tag.FromName("missing"), "a/b.cpp")
	assert.False(t, ok)
}
