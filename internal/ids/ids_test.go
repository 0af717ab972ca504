package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocator_Monotonic(t *testing.T) {
	a := NewAllocator()
	first := a.Next()
	second := a.Next()
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
}

func TestDriverID_NoDriverString(t *testing.T) {
	assert.Equal(t, "driver:none", NoDriver.String())
	assert.Equal(t, "driver:5", DriverID(5).String())
}
