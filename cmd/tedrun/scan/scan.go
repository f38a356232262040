// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scan contains the scan command, which prints the subjects,
// sessions and echo metadata of a BIDS dataset.
package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/TylerBrock/colorjson"
	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/tedrun/internal/bids"
	"github.com/matt-FFFFFF/tedrun/internal/color"
	"github.com/matt-FFFFFF/tedrun/internal/config"
	"github.com/urfave/cli/v3"
)

const (
	dirArg     = "dir"
	formatFlag = "format"
	formatJSON = "json"
	formatYAML = "yaml"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown format")

// ScanCmd is the command that describes a BIDS dataset.
var ScanCmd = newCommand()

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Print the subjects, sessions and echo metadata of a BIDS dataset",
		Description: `Scan a BIDS dataset the way the run command does and print what was found.
Echo metadata is read from the JSON sidecars of the first subject's first session.`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      dirArg,
				UsageText: "BIDS dataset directory",
				Config:    cli.StringConfig{TrimSpace: true},
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        formatFlag,
				Aliases:     []string{"o"},
				Usage:       "Output format: json or yaml",
				DefaultText: formatJSON,
				Value:       formatJSON,
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

	st, err := bids.Scan(config.FsFactory(), dir)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err := write(cmd.Root().Writer, st, cmd.String(formatFlag)); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return nil
}

func write(w io.Writer, st *bids.Structure, format string) error {
	var (
		out []byte
		err error
	)

	switch format {
	case formatJSON:
		out, err = marshalJSON(st)
	case formatYAML:
		out, err = yaml.Marshal(st)
	default:
		return fmt.Errorf("%w %q, valid formats: json, yaml", ErrUnknownFormat, format)
	}

	if err != nil {
		return err //nolint:wrapcheck
	}

	if _, err := w.Write(out); err != nil {
		return err //nolint:wrapcheck
	}

	if len(out) > 0 && out[len(out)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}

	return err //nolint:wrapcheck
}

// marshalJSON renders st with colorjson, which works on generic values.
func marshalJSON(st *bids.Structure) ([]byte, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err //nolint:wrapcheck
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !color.Enabled()

	return f.Marshal(generic) //nolint:wrapcheck
}
