package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/suitedb/internal/cmd/base"
	"github.com/hashicorp-forge/suitedb/internal/cmd/commands/name"
	"github.com/hashicorp-forge/suitedb/internal/cmd/commands/suite"
	"github.com/hashicorp-forge/suitedb/internal/cmd/commands/version"
)

// Commands is the mapping of all available suitedb commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"enter": func() (cli.Command, error) {
			return &suite.EnterCommand{Command: b}, nil
		},
		"exec": func() (cli.Command, error) {
			return &suite.ExecCommand{Command: b}, nil
		},
		"leave": func() (cli.Command, error) {
			return &suite.LeaveCommand{Command: b}, nil
		},
		"name": func() (cli.Command, error) {
			return &name.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
