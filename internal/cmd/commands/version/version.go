package version

import (
	"github.com/hashicorp-forge/suitedb/internal/cmd/base"
	"github.com/hashicorp-forge/suitedb/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the suitedb version"
}

func (c *Command) Help() string {
	return "Usage: suitedb version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output("suitedb v" + version.Version)
	return 0
}
