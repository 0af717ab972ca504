package rpc

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	providers map[string]string
	inputs    map[string]string
	notedPath string
}

func (h *fakeHandler) FindProvider(tagName string) (string, bool) {
	p, ok := h.providers[tagName]
	return p, ok
}

func (h *fakeHandler) FindInput(path string) (string, bool) {
	p, ok := h.inputs[path]
	return p, ok
}

func (h *fakeHandler) NewProvider(tagName string) (string, error) {
	path := "/tmp/scratch/" + tagName
	if h.providers == nil {
		h.providers = map[string]string{}
	}
	h.providers[tagName] = path
	return path, nil
}

func (h *fakeHandler) NewOutput(path string) (string, error) {
	return "/tmp/scratch/" + path, nil
}

func (h *fakeHandler) NoteInput(path string) {
	h.notedPath = path
}

// pipePair wires a Server up to a FakeChild over two in-memory pipes,
// mirroring the two-fd call/reply layout a real child process uses.
func pipePair(t *testing.T, h Handler) (*FakeChild, func()) {
	t.Helper()
	callR, callW := io.Pipe()
	replyR, replyW := io.Pipe()

	srv := NewServer(h, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(callR, replyW) }()

	child := NewFakeChild(callW, replyR)
	cleanup := func() {
		callW.Close()
		<-done
	}
	return child, cleanup
}

func TestServer_FindProvider(t *testing.T) {
	h := &fakeHandler{providers: map[string]string{"header:foo.h": "/src/foo.h"}}
	child, cleanup := pipePair(t, h)
	defer cleanup()

	path, err := child.FindProvider("header:foo.h")
	require.NoError(t, err)
	assert.Equal(t, "/src/foo.h", path)

	path, err = child.FindProvider("header:missing.h")
	require.NoError(t, err)
	assert.Equal(t, "", path, "not-found replies with an empty line")
}

func TestServer_FindInput(t *testing.T) {
	h := &fakeHandler{inputs: map[string]string{"a.o": "/tmp/build/a.o"}}
	child, cleanup := pipePair(t, h)
	defer cleanup()

	path, err := child.FindInput("a.o")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/build/a.o", path)
}

func TestServer_NewProviderAndNewOutput(t *testing.T) {
	h := &fakeHandler{}
	child, cleanup := pipePair(t, h)
	defer cleanup()

	path, err := child.NewProvider("object:foo.o")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/scratch/object:foo.o", path)

	got, ok := h.FindProvider("object:foo.o")
	assert.True(t, ok)
	assert.Equal(t, path, got)

	outPath, err := child.NewOutput("gen/bar.c")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/scratch/gen/bar.c", outPath)
}

func TestServer_NoteInput(t *testing.T) {
	h := &fakeHandler{}
	child, cleanup := pipePair(t, h)
	defer cleanup()

	require.NoError(t, child.NoteInput("/usr/include/stdio.h"))
	assert.Equal(t, "/usr/include/stdio.h", h.notedPath)
}

func TestServer_MalformedRequestGetsEmptyReply(t *testing.T) {
	h := &fakeHandler{}
	callR, callW := io.Pipe()
	replyR, replyW := io.Pipe()
	srv := NewServer(h, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(callR, replyW) }()

	go func() { io.WriteString(callW, "bogus\n") }()
	child := NewFakeChild(callW, replyR)
	line, err := readLine(child)
	require.NoError(t, err)
	assert.Equal(t, "", line)

	callW.Close()
	<-done
}

func readLine(c *FakeChild) (string, error) {
	b, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return b[:len(b)-1], nil
}
