package suite

import (
	"context"
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"github.com/hashicorp-forge/suitedb/internal/cmd/base"
	"github.com/hashicorp-forge/suitedb/pkg/hookconfig"
)

type LeaveCommand struct {
	*base.Command

	// Registry and Fs override the defaults used to load interceptors.
	Registry *hookconfig.Registry
	Fs       afero.Fs

	flags flags
}

func (c *LeaveCommand) Synopsis() string {
	return "Run the suite end hooks for a test package"
}

func (c *LeaveCommand) Help() string {
	return `Usage: suitedb leave [options]

  Runs every configured interceptor's end hook for the test package in -dir,
  e.g. dropping the database created by "suitedb enter".` +
		c.Flags().Help()
}

func (c *LeaveCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("leave", flag.ContinueOnError))
	c.flags.bind(f)
	return f
}

func (c *LeaveCommand) Run(args []string) int {
	logger, ui := c.Log, c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if flags.NArg() > 0 {
		ui.Error(fmt.Sprintf("unexpected arguments: %v", flags.Args()))
		return 1
	}

	s, executor, err := prepare(c.Command, c.flags, c.Registry, c.Fs)
	if err != nil {
		ui.Error(fmt.Sprintf("error preparing suite: %v", err))
		return 1
	}
	defer func() {
		if err := executor.Close(); err != nil {
			logger.Warn("error closing interceptors", "error", err)
		}
	}()

	if err := executor.HandleSuiteEnd(context.Background(), s); err != nil {
		ui.Error(err.Error())
		return 1
	}

	logger.Info("suite left", "package", s.Package.Name)
	return 0
}
