package name

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/hashicorp-forge/suitedb/internal/cmd/base"
	"github.com/hashicorp-forge/suitedb/pkg/descriptor"
	"github.com/hashicorp-forge/suitedb/pkg/provision"
)

type Command struct {
	*base.Command

	// Fs overrides the filesystem used to discover the package.
	Fs afero.Fs

	flagDir     string
	flagPackage string
}

func (c *Command) Synopsis() string {
	return "Print the database name for a test package"
}

func (c *Command) Help() string {
	return `Usage: suitedb name [options]

  Prints the database name the database interceptor uses for a test package,
  e.g. acme/shop-internal-store becomes acme_shop_internal_store.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("name", flag.ContinueOnError))

	f.StringVar(
		&c.flagDir, "dir", "",
		"Directory of the test package. Defaults to the working directory.",
	)
	f.StringVar(
		&c.flagPackage, "package", "",
		"Package name to convert instead of the one derived from go.mod.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	pkg := c.flagPackage
	if pkg == "" {
		dir := c.flagDir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				ui.Error(fmt.Sprintf("error getting current directory: %v", err))
				return 1
			}
			dir = wd
		}

		fs := c.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		p, err := descriptor.Discover(fs, dir)
		if err != nil {
			ui.Error(fmt.Sprintf("error discovering package: %v", err))
			return 1
		}
		if p.Name == "" {
			ui.Error(fmt.Sprintf("no go.mod found for %s", dir))
			return 1
		}
		pkg = p.Name
	}

	ui.Output(provision.DatabaseName(pkg))
	return 0
}
