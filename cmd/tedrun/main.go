// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the tedrun command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/tedrun"
	"github.com/matt-FFFFFF/tedrun/cmd/tedrun/check"
	"github.com/matt-FFFFFF/tedrun/cmd/tedrun/config"
	"github.com/matt-FFFFFF/tedrun/cmd/tedrun/run"
	"github.com/matt-FFFFFF/tedrun/cmd/tedrun/scan"
	"github.com/matt-FFFFFF/tedrun/cmd/tedrun/validate"
	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
	"github.com/matt-FFFFFF/tedrun/internal/signalbroker"
	"github.com/matt-FFFFFF/tedrun/internal/supervisor"
	"github.com/urfave/cli/v3"
)

const (
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
	formatJSON    = "json"
	formatPretty  = "pretty"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		check.CheckCmd,
		validate.ValidateCmd,
		scan.ScanCmd,
		config.ConfigCmd,
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    logLevelFlag,
			Usage:   "Set the log level: DEBUG, INFO, WARN or ERROR",
			Sources: cli.EnvVars(ctxlog.LogLevelEnvVar),
			Value:   "WARN",
		},
		&cli.StringFlag{
			Name:  logFormatFlag,
			Usage: "Set the log format: pretty or json",
			Value: formatPretty,
		},
	},
	Before:    beforeFunc,
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "tedrun",
	Description: `tedrun runs tedana, the multi-echo fMRI denoising tool, over every subject
and session of a BIDS dataset. Items run one at a time inside a Python virtual
environment, their output is streamed live and a summary is printed at the end.
Press Ctrl+C once to stop the running item, twice to exit immediately.`,
	Usage:     "tedrun run --python /opt/venvs/tedana/bin/python --bids-dir ./dataset",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func beforeFunc(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := ctxlog.ParseLevel(cmd.String(logLevelFlag))
	if err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}

	ctxlog.LevelVar.Set(level)

	switch cmd.String(logFormatFlag) {
	case formatJSON:
		return ctxlog.New(ctx, ctxlog.JSONLogger), nil
	case formatPretty:
		return ctx, nil
	default:
		return ctx, cli.Exit(fmt.Sprintf("unknown log format %q", cmd.String(logFormatFlag)), 1)
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	// The first signal stops the current run; with no run in progress it
	// cancels whatever command is executing.
	go signalbroker.Watch(ctx, sigCh, func(os.Signal) {
		if err := supervisor.Default.Cancel(); errors.Is(err, supervisor.ErrNotRunning) {
			cancel()
		}
	}, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", tedrun.Version, tedrun.Commit)

	err := rootCmd.Run(ctx, os.Args) // Exit codes are handled by the cli framework

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Debug("command completed successfully")
}
