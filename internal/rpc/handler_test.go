package rpc

import (
	"testing"

	"github.com/ekam-build/ekam/internal/action"
	"github.com/ekam-build/ekam/internal/artifact"
	"github.com/ekam-build/ekam/internal/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeActionCtx is a minimal in-memory stand-in for the engine's own
// action.Context implementation, exercising ContextHandler without
// spinning up a whole engine.
type fakeActionCtx struct {
	root      artifact.Artifact
	provided  map[string][]tag.Tag
	logged    []string
}

func newFakeActionCtx(t *testing.T) *fakeActionCtx {
	t.Helper()
	return &fakeActionCtx{
		root:     artifact.New(t.TempDir(), ".", false),
		provided: map[string][]tag.Tag{},
	}
}

func (c *fakeActionCtx) FindProvider(tag.Tag) (artifact.Artifact, bool) { return artifact.Artifact{}, false }
func (c *fakeActionCtx) FindInput(string) (artifact.Artifact, bool)    { return artifact.Artifact{}, false }

func (c *fakeActionCtx) Provide(art artifact.Artifact, tags ...tag.Tag) {
	c.provided[art.CanonicalName()] = append(c.provided[art.CanonicalName()], tags...)
}

func (c *fakeActionCtx) Install(artifact.Artifact, action.InstallLocation, string) {}

func (c *fakeActionCtx) NewOutput(path string) artifact.Artifact {
	return c.root.Resolve(path)
}

func (c *fakeActionCtx) Log(text string)                  { c.logged = append(c.logged, text) }
func (c *fakeActionCtx) AddActionType(action.Factory)      {}
func (c *fakeActionCtx) Passed()                           {}
func (c *fakeActionCtx) Failed(string)                     {}
func (c *fakeActionCtx) Done()                             {}

func TestContextHandler_NewProvider(t *testing.T) {
	ctx := newFakeActionCtx(t)
	h := ContextHandler{Ctx: ctx}

	path, err := h.NewProvider("header:sub/dir/foo.h")
	require.NoError(t, err)
	assert.Contains(t, path, "rpc-provider")

	found := false
	for _, tags := range ctx.provided {
		for _, tg := range tags {
			if tg == tag.FromName("header:sub/dir/foo.h") {
				found = true
			}
		}
	}
	assert.True(t, found, "NewProvider must Provide the requested tag")
}

func TestContextHandler_NewOutput(t *testing.T) {
	ctx := newFakeActionCtx(t)
	h := ContextHandler{Ctx: ctx}

	path, err := h.NewOutput("build/out.o")
	require.NoError(t, err)
	assert.Contains(t, path, "build/out.o")
}

func TestContextHandler_NoteInputLogs(t *testing.T) {
	ctx := newFakeActionCtx(t)
	h := ContextHandler{Ctx: ctx}

	h.NoteInput("/usr/include/stdio.h")
	require.Len(t, ctx.logged, 1)
	assert.Contains(t, ctx.logged[0], "/usr/include/stdio.h")
}
