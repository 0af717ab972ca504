package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullHash_DistinctFromEmptyContent(t *testing.T) {
	empty := HashBytes([]byte{})
	assert.False(t, empty.Equal(NullHash))
	assert.True(t, NullHash.IsNull())
	assert.False(t, empty.IsNull())
}

func TestHashBytes_Deterministic(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	assert.True(t, a.Equal(b))
}

func TestHashBytes_DifferentContent(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("world"))
	assert.False(t, a.Equal(b))
}

func TestHash_StringNull(t *testing.T) {
	assert.Equal(t, "<null>", NullHash.String())
}
