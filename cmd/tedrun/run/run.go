// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the run command, which runs tedana over a dataset.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/tedrun/internal/bids"
	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/matt-FFFFFF/tedrun/internal/config"
	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
	"github.com/matt-FFFFFF/tedrun/internal/progress"
	"github.com/matt-FFFFFF/tedrun/internal/supervisor"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag                 = "file"
	pythonFlag               = "python"
	envRootFlag              = "env-root"
	bidsDirFlag              = "bids-dir"
	argsFlag                 = "args"
	subjectFlag              = "subject"
	sessionFlag              = "session"
	noStrictStderrFlag       = "no-strict-stderr"
	quietFlag                = "quiet"
	outFlag                  = "out"
	noOutputStdErrFlag       = "no-output-stderr"
	outputStdOutFlag         = "output-stdout"
	outputSuccessDetailsFlag = "output-success-details"
	cliExitStr               = ""
	reporterBufferSize       = 256

	// ExitCancelled is the exit code used when a run was cancelled.
	ExitCancelled = 130
)

// ErrNoItems is returned when the dataset and filters leave nothing to run.
var ErrNoItems = errors.New("no subjects to process")

// RunCmd is the command that runs tedana for every subject and session.
var RunCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run tedana for every subject and session of a dataset",
		Description: `Run tedana once per subject and session, one at a time.
Subjects come from the BIDS directory or from the subjects listed in the run file.
Settings given as flags override those from the run file.

Run file URLs use Hashicorp's go-getter syntax, which allows for fetching files from various sources.
See https://github.com/hashicorp/go-getter.

The run stops at the first failing item. A failing item is one that exits with
a non-zero code or, unless --no-strict-stderr is given, writes a line starting
with "ERROR:" to stderr.
`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     fileFlag,
				Aliases:  []string{"f"},
				Usage:    "Specify the path or go-getter URL of a YAML or HCL run file",
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:      pythonFlag,
				Usage:     "Path to the Python interpreter of the virtual environment holding tedana",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:      envRootFlag,
				Usage:     "Root of the virtual environment, when the interpreter is not in <root>/bin",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:      bidsDirFlag,
				Aliases:   []string{"d"},
				Usage:     "BIDS dataset to process",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringFlag{
				Name:     argsFlag,
				Aliases:  []string{"a"},
				Usage:    "Extra tedana arguments. ${SUBJECT} and ${SESSION} are replaced per item",
				OnlyOnce: true,
			},
			&cli.StringSliceFlag{
				Name:    subjectFlag,
				Aliases: []string{"s"},
				Usage:   "Only process this subject. Specify multiple times for several subjects",
			},
			&cli.StringSliceFlag{
				Name:  sessionFlag,
				Usage: "Only process this session. Specify multiple times for several sessions",
			},
			&cli.BoolFlag{
				Name:        noStrictStderrFlag,
				Usage:       "Do not fail items that write ERROR: lines to stderr",
				Value:       false,
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        quietFlag,
				Aliases:     []string{"q"},
				Usage:       "Do not stream tedana output while running",
				Value:       false,
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.StringFlag{
				Name:      outFlag,
				Usage:     "Write the plain text report to this file",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.BoolFlag{
				Name:        outputSuccessDetailsFlag,
				Aliases:     []string{"success"},
				Usage:       "Include output of successful items in the summary",
				DefaultText: "false",
				Value:       false,
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        noOutputStdErrFlag,
				Aliases:     []string{"no-stderr"},
				Usage:       "Exclude stderr output from the summary",
				Value:       false,
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        outputStdOutFlag,
				Aliases:     []string{"stdout"},
				Usage:       "Include stdout output in the summary",
				DefaultText: "false",
				Value:       false,
				OnlyOnce:    true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	w := cmd.Root().Writer

	rf, err := loadRunFile(ctx, cmd)
	if err != nil {
		logger.Error("Failed to load run file", "error", err)
		return cli.Exit(err.Error(), 1)
	}

	applyFlags(cmd, rf)

	if err := rf.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	filter := bids.Filter{
		Subjects: cmd.StringSlice(subjectFlag),
		Sessions: cmd.StringSlice(sessionFlag),
	}

	batch, err := resolveBatch(ctx, rf, filter)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if len(batch) == 0 {
		return cli.Exit(ErrNoItems.Error(), 1)
	}

	if err := supervisor.Default.Configure(supervisor.WithMarkerPolicy(rf.Strict())); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	reporter := progress.NewChannelReporter(ctx, reporterBufferSize)
	reporter.Listen(newLiveOutput(w, cmd.Bool(quietFlag)))

	report, runErr := supervisor.Default.Start(ctx, supervisor.Request{
		Interpreter: rf.Python,
		EnvRoot:     rf.EnvRoot,
		Template:    rf.Template(),
		Batch:       batch,
	}, reporter)

	reporter.Close()

	if outFileName := cmd.String(outFlag); outFileName != "" {
		if err := os.WriteFile(outFileName, []byte(report.String()), 0o644); err != nil { //nolint:gosec
			logger.Error(fmt.Sprintf("Failed to write report to file %s: %s", outFileName, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info(fmt.Sprintf("Report written to %s", outFileName))
	}

	opts := supervisor.DefaultOutputOptions()
	opts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)
	opts.IncludeStdOut = cmd.Bool(outputStdOutFlag)
	opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)

	if report != nil && len(report.Items) > 0 {
		fmt.Fprintln(w) //nolint:errcheck

		if err := report.Write(w, opts); err != nil {
			logger.Error(fmt.Sprintf("Failed to write summary: %s", err.Error()))
			return cli.Exit(cliExitStr, 1)
		}
	}

	switch {
	case errors.Is(runErr, supervisor.ErrCancelled):
		return cli.Exit(runErr.Error(), ExitCancelled)
	case runErr != nil:
		return cli.Exit(runErr.Error(), 1)
	}

	return nil
}

// loadRunFile loads the run file named by --file, or returns an empty one.
func loadRunFile(ctx context.Context, cmd *cli.Command) (*config.RunFile, error) {
	src := cmd.String(fileFlag)
	if src == "" {
		return &config.RunFile{}, nil
	}

	return config.LoadURL(ctx, src)
}

// applyFlags overrides run file settings with the flags that were set.
func applyFlags(cmd *cli.Command, rf *config.RunFile) {
	if cmd.IsSet(pythonFlag) {
		rf.Python = cmd.String(pythonFlag)
	}

	if cmd.IsSet(envRootFlag) {
		rf.EnvRoot = cmd.String(envRootFlag)
	}

	if cmd.IsSet(bidsDirFlag) {
		rf.BidsDir = cmd.String(bidsDirFlag)
	}

	if cmd.IsSet(argsFlag) {
		rf.Args = cmd.String(argsFlag)
	}

	if cmd.Bool(noStrictStderrFlag) {
		strict := false
		rf.StrictStderr = &strict
	}
}

// resolveBatch returns the subjects to process. Subjects listed in the run
// file take precedence over a scan of the BIDS directory, which is still
// validated when given.
func resolveBatch(ctx context.Context, rf *config.RunFile, filter bids.Filter) ([]cmdbuild.Subject, error) {
	if rf.BidsDir == "" {
		return filterSubjects(rf.Subjects, filter), nil
	}

	fs := config.FsFactory()

	msg, err := bids.Validate(fs, rf.BidsDir)
	if err != nil {
		return nil, err
	}

	ctxlog.Info(ctx, msg, "dir", rf.BidsDir)

	if len(rf.Subjects) > 0 {
		return filterSubjects(rf.Subjects, filter), nil
	}

	st, err := bids.Scan(fs, rf.BidsDir)
	if err != nil {
		return nil, err
	}

	for _, warning := range st.Warnings {
		ctxlog.Warn(ctx, warning, "dir", rf.BidsDir)
	}

	return st.Batch(filter), nil
}

// filterSubjects applies filter to an explicit subject list.
func filterSubjects(subjects []cmdbuild.Subject, filter bids.Filter) []cmdbuild.Subject {
	keep := trimAll(filter.Subjects, "sub-")
	sessions := trimAll(filter.Sessions, "ses-")

	out := make([]cmdbuild.Subject, 0, len(subjects))

	for _, s := range subjects {
		if len(keep) > 0 && !slices.Contains(keep, s.Key) {
			continue
		}

		if len(sessions) == 0 || len(s.Sessions) == 0 {
			out = append(out, s)
			continue
		}

		entry := cmdbuild.Subject{Key: s.Key}

		for _, ses := range s.Sessions {
			if slices.Contains(sessions, ses) {
				entry.Sessions = append(entry.Sessions, ses)
			}
		}

		if len(entry.Sessions) > 0 {
			out = append(out, entry)
		}
	}

	return out
}

func trimAll(values []string, prefix string) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimPrefix(strings.TrimSpace(v), prefix); v != "" {
			out = append(out, v)
		}
	}

	return out
}
