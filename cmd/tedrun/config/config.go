// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config contains the config command, which prints example run files
// and shows how a run file is interpreted.
package config

import (
	"context"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/matt-FFFFFF/tedrun/internal/color"
	runfile "github.com/matt-FFFFFF/tedrun/internal/config"
	"github.com/matt-FFFFFF/tedrun/internal/schema"
	"github.com/urfave/cli/v3"
)

const (
	formatFlag = "format"
	formatYAML = "yaml"
	formatHCL  = "hcl"
	fileArg    = "file"
)

// ConfigCmd is the command that documents the run file format.
var ConfigCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print an example run file",
		Description: `Print a complete example run file in YAML or HCL.
In both formats ${SUBJECT} and ${SESSION} are replaced for every work item.
HCL files can also read environment variables as ${env.NAME}.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        formatFlag,
				Aliases:     []string{"o"},
				Usage:       "Output format: yaml or hcl",
				DefaultText: formatYAML,
				Value:       formatYAML,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Load a run file and print the work it describes",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      fileArg,
						UsageText: "Path or go-getter URL of the run file",
						Config:    cli.StringConfig{TrimSpace: true},
					},
				},
				Action: showFunc,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of YAML run files",
				Description: `Print a JSON schema for editors. With yaml-language-server, reference it
from a run file using: # yaml-language-server: $schema=<path>`,
				Action: schemaFunc,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	switch f := cmd.String(formatFlag); f {
	case formatYAML:
		fmt.Fprint(w, runfile.ExampleYAML) //nolint:errcheck
	case formatHCL:
		fmt.Fprint(w, runfile.ExampleHCL) //nolint:errcheck
	default:
		return cli.Exit(fmt.Sprintf("Invalid format: %s. Valid formats: yaml, hcl", f), 1)
	}

	return nil
}

func showFunc(ctx context.Context, cmd *cli.Command) error {
	src := cmd.StringArg(fileArg)
	if src == "" {
		return cli.Exit("please specify the run file", 1)
	}

	rf, err := runfile.LoadURL(ctx, src)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	w := cmd.Root().Writer
	show(w, rf)

	if err := rf.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return nil
}

func schemaFunc(_ context.Context, cmd *cli.Command) error {
	err := schema.NewGenerator().WriteJSONSchema(cmd.Root().Writer,
		"tedrun run file", "Runs tedana for every subject and session of a dataset", runfile.RunFile{})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return nil
}

func show(w io.Writer, rf *runfile.RunFile) {
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s %s\n", color.Colorize(name+":", color.Bold), value) //nolint:errcheck
		}
	}

	field("Name", rf.Name)
	field("Description", rf.Description)
	field("Python", rf.Python)
	field("Environment root", rf.EnvRoot)
	field("BIDS directory", rf.BidsDir)
	field("Strict stderr", fmt.Sprintf("%t", rf.Strict()))
	field("Arguments", rf.Template())

	if len(rf.Subjects) == 0 {
		return
	}

	fmt.Fprintln(w, color.Colorize("Work items:", color.Bold)) //nolint:errcheck

	for _, it := range cmdbuild.Items(rf.Template(), rf.Subjects) {
		fmt.Fprintf(w, "  %s: tedana %s\n", it.Label(), it.Args) //nolint:errcheck
	}
}
