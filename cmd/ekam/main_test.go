package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCommand_Flags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"jobs", "config", "network", "log-lines", "verbose", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %q", name)
	}
}
