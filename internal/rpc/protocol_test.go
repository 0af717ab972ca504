package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest("findProvider header:foo.h")
	require.NoError(t, err)
	assert.Equal(t, CmdFindProvider, req.Command)
	assert.Equal(t, "header:foo.h", req.Arg)
}

func TestParseRequest_UnknownCommand(t *testing.T) {
	_, err := ParseRequest("deleteEverything /")
	assert.Error(t, err)
}

func TestParseRequest_MissingArgument(t *testing.T) {
	_, err := ParseRequest("findProvider")
	assert.Error(t, err)
}

func TestFormatRequest_RoundTrips(t *testing.T) {
	req := Request{Command: CmdNewOutput, Arg: "build/a.o"}
	back, err := ParseRequest(FormatRequest(req))
	require.NoError(t, err)
	assert.Equal(t, req, back)
}
