package suite

import (
	"context"
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"github.com/hashicorp-forge/suitedb/internal/cmd/base"
	"github.com/hashicorp-forge/suitedb/pkg/hookconfig"
)

type EnterCommand struct {
	*base.Command

	// Registry and Fs override the defaults used to load interceptors.
	Registry *hookconfig.Registry
	Fs       afero.Fs

	flags flags
}

func (c *EnterCommand) Synopsis() string {
	return "Run the suite start hooks for a test package"
}

func (c *EnterCommand) Help() string {
	return `Usage: suitedb enter [options]

  Runs every configured interceptor's start hook for the test package in
  -dir, e.g. creating its database. Pair with "suitedb leave".` +
		c.Flags().Help()
}

func (c *EnterCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("enter", flag.ContinueOnError))
	c.flags.bind(f)
	return f
}

func (c *EnterCommand) Run(args []string) int {
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

	if err := executor.HandleSuiteStart(context.Background(), s); err != nil {
		ui.Error(err.Error())
		return 1
	}

	logger.Info("suite entered", "package", s.Package.Name)
	return 0
}
