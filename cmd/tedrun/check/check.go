// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package check contains the check command, which verifies that tedana is
// installed in a virtual environment.
package check

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
	"github.com/matt-FFFFFF/tedrun/internal/install"
	"github.com/urfave/cli/v3"
)

const (
	pythonFlag  = "python"
	envRootFlag = "env-root"
)

// CheckCmd is the command that reports the tedana version of an environment.
var CheckCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Check that tedana can be imported by the given interpreter",
		Description: `Run the interpreter with its virtual environment activated and print the
installed tedana version. Exits with code 1 when tedana cannot be imported.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      pythonFlag,
				Usage:     "Path to the Python interpreter of the virtual environment",
				TakesFile: true,
				Required:  true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:      envRootFlag,
				Usage:     "Root of the virtual environment, when the interpreter is not in <root>/bin",
				TakesFile: true,
				OnlyOnce:  true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running check command")

	version, err := install.Check(ctx, cmd.String(pythonFlag), cmd.String(envRootFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintf(cmd.Root().Writer, "tedana %s\n", version) //nolint:errcheck

	return nil
}
