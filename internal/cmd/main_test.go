package cmd

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommands(t *testing.T) {
	ui := cli.NewMockUi()
	initCommands(hclog.NewNullLogger(), ui)

	for _, name := range []string{"enter", "exec", "leave", "name", "version"} {
		factory, ok := Commands[name]
		require.True(t, ok, name)

		c, err := factory()
		require.NoError(t, err)
		assert.NotEmpty(t, c.Synopsis(), name)
		assert.NotEmpty(t, c.Help(), name)
	}
}

func TestVersionCommand(t *testing.T) {
	ui := cli.NewMockUi()
	initCommands(hclog.NewNullLogger(), ui)

	c, err := Commands["version"]()
	require.NoError(t, err)
	require.Equal(t, 0, c.Run(nil))
	assert.Contains(t, ui.OutputWriter.String(), "suitedb v")
}

func TestMainVersionFlag(t *testing.T) {
	assert.Equal(t, 0, Main([]string{"suitedb", "-v"}))
}
