package suite

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/suitedb/internal/cmd/base"
	"github.com/hashicorp-forge/suitedb/pkg/hookconfig"
	"github.com/hashicorp-forge/suitedb/pkg/provision"
)

const (
	// EnvPackage and EnvDatabase are set for the command run by exec.
	EnvPackage  = "SUITEDB_PACKAGE"
	EnvDatabase = "SUITEDB_DATABASE"
)

type ExecCommand struct {
	*base.Command

	// Registry and Fs override the defaults used to load interceptors.
	Registry *hookconfig.Registry
	Fs       afero.Fs

	flags flags
}

func (c *ExecCommand) Synopsis() string {
	return "Run a command between the suite start and end hooks"
}

func (c *ExecCommand) Help() string {
	return `Usage: suitedb exec [options] -- <command> [args]

  Runs the start hooks, then the command, then the end hooks. The end hooks
  run whenever the start hooks succeeded, even if the command fails. The
  command's exit code is returned.

  The command sees ` + EnvPackage + ` and ` + EnvDatabase + ` in its
  environment.

      $ suitedb exec -- go test ./internal/store` +
		c.Flags().Help()
}

func (c *ExecCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("exec", flag.ContinueOnError))
	c.flags.bind(f)
	return f
}

func (c *ExecCommand) Run(args []string) int {
	logger, ui := c.Log, c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	command := flags.Args()
	if len(command) == 0 {
		ui.Error("no command given")
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

	ctx := context.Background()
	if err := executor.HandleSuiteStart(ctx, s); err != nil {
		ui.Error(err.Error())
		return 1
	}

	var result *multierror.Error
	code := 0

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	cmd := exec.CommandContext(runCtx, command[0], command[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if s.HasPackage() {
		cmd.Env = append(cmd.Env,
			EnvPackage+"="+s.Package.Name,
			EnvDatabase+"="+provision.DatabaseName(s.Package.Name),
		)
	}

	logger.Debug("running command", "command", command, "package", s.Package.Name)
	err = cmd.Run()
	stop()

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
		if code < 0 {
			code = 1
		}
	case err != nil:
		result = multierror.Append(result, fmt.Errorf("error running %s: %w", command[0], err))
		code = 1
	}

	if err := executor.HandleSuiteEnd(ctx, s); err != nil {
		result = multierror.Append(result, err)
		if code == 0 {
			code = 1
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		ui.Error(err.Error())
	}
	return code
}
