// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

const hclExt = ".hcl"

var (
	// ErrInvalidYaml is returned when a YAML run file cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidHcl is returned when an HCL run file cannot be decoded.
	ErrInvalidHcl = errors.New("invalid HCL")
	// ErrReadFile is returned when the run file cannot be read.
	ErrReadFile = errors.New("failed to read run file")
	// ErrNoInterpreter is returned when no Python interpreter is configured.
	ErrNoInterpreter = errors.New("no Python interpreter configured")
	// ErrNoDataset is returned when neither a BIDS directory nor subjects are configured.
	ErrNoDataset = errors.New("no BIDS directory or subjects configured")
)

// RunFile is the content of a run file.
type RunFile struct {
	Name         string                  `yaml:"name,omitempty" hcl:"name,optional" docdesc:"Name of the run"`
	Description  string                  `yaml:"description,omitempty" hcl:"description,optional" docdesc:"Description of the run"`
	Python       string                  `yaml:"python,omitempty" hcl:"python,optional" docdesc:"Python interpreter of the virtual environment holding tedana"`
	EnvRoot      string                  `yaml:"env_root,omitempty" hcl:"env_root,optional" docdesc:"Root of the virtual environment when the interpreter is not in <root>/bin"`
	BidsDir      string                  `yaml:"bids_dir,omitempty" hcl:"bids_dir,optional" docdesc:"BIDS dataset to scan for subjects and sessions"`
	Args         string                  `yaml:"args,omitempty" hcl:"args,optional" docdesc:"Extra tedana arguments; ${SUBJECT} and ${SESSION} are replaced per item"`
	StrictStderr *bool                   `yaml:"strict_stderr,omitempty" hcl:"strict_stderr,optional" docdesc:"Fail items that write ERROR: lines to stderr, default true"`
	Tedana       *cmdbuild.TedanaOptions `yaml:"tedana,omitempty" hcl:"tedana,block" docdesc:"Typed tedana options rendered before args"`
	Subjects     []cmdbuild.Subject      `yaml:"subjects,omitempty" hcl:"subject,block" docdesc:"Subjects to process instead of scanning bids_dir"`
}

// Load reads and decodes the run file at path.
func Load(path string) (*RunFile, error) {
	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}

	return Parse(path, data)
}

// Parse decodes data as HCL when filename ends in .hcl, otherwise as YAML.
func Parse(filename string, data []byte) (*RunFile, error) {
	if strings.EqualFold(filepath.Ext(filename), hclExt) {
		return ParseHCL(filename, data, os.Environ())
	}

	return ParseYAML(data)
}

// ParseYAML decodes a YAML run file. Unknown keys are rejected.
func ParseYAML(data []byte) (*RunFile, error) {
	rf := &RunFile{}

	if err := yaml.UnmarshalWithOptions(data, rf, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err) //nolint:errorlint
	}

	return rf, nil
}

// ParseHCL decodes an HCL run file. environ is a list of KEY=VALUE pairs
// exposed as env.KEY.
func ParseHCL(filename string, data []byte, environ []string) (*RunFile, error) {
	rf := &RunFile{}

	if err := hclsimple.Decode(filename, data, evalContext(environ), rf); err != nil {
		return nil, errors.Join(ErrInvalidHcl, err)
	}

	return rf, nil
}

func evalContext(environ []string) *hcl.EvalContext {
	env := make(map[string]cty.Value, len(environ))

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":     cty.ObjectVal(env),
			"SUBJECT": cty.StringVal(cmdbuild.SubjectPlaceholder),
			"SESSION": cty.StringVal(cmdbuild.SessionPlaceholder),
		},
	}
}

// Template returns the argument template: the rendered tedana options
// followed by the free-form args.
func (rf *RunFile) Template() string {
	var parts []string

	if rf.Tedana != nil {
		if t := cmdbuild.FromOptions(*rf.Tedana); t != "" {
			parts = append(parts, t)
		}
	}

	if a := strings.TrimSpace(rf.Args); a != "" {
		parts = append(parts, a)
	}

	return strings.Join(parts, " ")
}

// Strict reports whether "ERROR:" lines on stderr fail an item. Default true.
func (rf *RunFile) Strict() bool {
	return rf.StrictStderr == nil || *rf.StrictStderr
}

// Validate checks that the run file can be executed.
func (rf *RunFile) Validate() error {
	var errs []error

	if rf.Python == "" {
		errs = append(errs, ErrNoInterpreter)
	}

	if rf.BidsDir == "" && len(rf.Subjects) == 0 {
		errs = append(errs, ErrNoDataset)
	}

	return errors.Join(errs...)
}
