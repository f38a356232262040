// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package validate contains the validate command, which checks that a
// directory is a BIDS dataset tedrun can process.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/tedrun/internal/bids"
	"github.com/matt-FFFFFF/tedrun/internal/color"
	"github.com/matt-FFFFFF/tedrun/internal/config"
	"github.com/urfave/cli/v3"
)

const dirArg = "dir"

// ValidateCmd is the command that validates a BIDS directory.
var ValidateCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check that a directory is a BIDS dataset with multi-echo BOLD runs",
		Description: `Check that every sub-* directory, or each of its ses-* directories,
has a func directory holding BOLD NIfTI images with JSON sidecars.
All problems are listed, not only the first one.`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      dirArg,
				UsageText: "BIDS dataset directory",
				Config:    cli.StringConfig{TrimSpace: true},
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg(dirArg)
	if dir == "" {
		return cli.Exit("please specify the dataset directory", 1)
	}

	w := cmd.Root().Writer

	msg, err := bids.Validate(config.FsFactory(), dir)
	if err != nil {
		writeProblems(w, err)
		return cli.Exit(fmt.Sprintf("%s is not a valid BIDS dataset", dir), 1)
	}

	fmt.Fprintln(w, color.Colorize("✓ "+msg, color.FgGreen)) //nolint:errcheck

	return nil
}

// writeProblems lists each aggregated problem on its own line.
func writeProblems(w io.Writer, err error) {
	problems := []error{err}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		problems = merr.WrappedErrors()
	}

	for _, p := range problems {
		fmt.Fprintln(w, color.Colorize("✗ "+p.Error(), color.FgRed)) //nolint:errcheck
	}
}
