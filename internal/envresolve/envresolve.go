// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package envresolve derives the paths of an isolated Python environment from
// the path of its interpreter.
//
// The supported layout keeps executables one directory below the environment
// root, e.g. /opt/venvs/tedana/bin/python. Activation is expressed as a set of
// environment variable overrides instead of sourcing bin/activate.
package envresolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// ToolName is the executable supervised by tedrun.
	ToolName = "tedana"

	binDirUnix    = "bin"
	binDirWindows = "Scripts"
	exeSuffix     = ".exe"
	goosWindows   = "windows"
)

// ErrInvalidEnvironmentLayout is returned when the interpreter path does not
// sit two directories below an environment root.
var ErrInvalidEnvironmentLayout = errors.New("invalid environment layout")

// Environment describes a resolved runtime environment.
type Environment struct {
	Root        string // Environment root, e.g. /opt/venvs/tedana
	BinDir      string // Directory holding the executables
	Interpreter string // Cleaned interpreter path
	Tool        string // Path of the tedana executable
}

// Resolve derives the environment from interpreterPath alone.
func Resolve(interpreterPath string) (Environment, error) {
	return ResolveWithRoot(interpreterPath, "")
}

// ResolveWithRoot derives the environment, using root instead of the
// interpreter's grandparent directory when root is not empty.
func ResolveWithRoot(interpreterPath, root string) (Environment, error) {
	if interpreterPath == "" {
		return Environment{}, fmt.Errorf("%w: empty interpreter path", ErrInvalidEnvironmentLayout)
	}

	interp := filepath.Clean(interpreterPath)

	if root != "" {
		root = filepath.Clean(root)
		binDir := filepath.Join(root, binDirName())

		return Environment{
			Root:        root,
			BinDir:      binDir,
			Interpreter: interp,
			Tool:        filepath.Join(binDir, toolFileName()),
		}, nil
	}

	binDir := filepath.Dir(interp)
	root = filepath.Dir(binDir)

	if !isNamedDir(binDir) || !isNamedDir(root) {
		return Environment{}, fmt.Errorf(
			"%w: %s must be two directories below the environment root", ErrInvalidEnvironmentLayout, interpreterPath)
	}

	return Environment{
		Root:        root,
		BinDir:      binDir,
		Interpreter: interp,
		Tool:        filepath.Join(binDir, toolFileName()),
	}, nil
}

// Overrides returns the variables that activate the environment for a child
// process. getenv supplies the current values; nil means os.Getenv.
// An empty value means the variable must be removed.
func (e Environment) Overrides(getenv func(string) string) map[string]string {
	if getenv == nil {
		getenv = os.Getenv
	}

	path := e.BinDir
	if current := getenv("PATH"); current != "" {
		path += string(os.PathListSeparator) + current
	}

	return map[string]string{
		"PATH":        path,
		"VIRTUAL_ENV": e.Root,
		"PYTHONHOME":  "",
	}
}

// isNamedDir is false for "", ".", a volume or filesystem root.
func isNamedDir(dir string) bool {
	if dir == "" || dir == "." || dir == string(filepath.Separator) {
		return false
	}

	vol := filepath.VolumeName(dir)

	return dir != vol && dir != vol+string(filepath.Separator)
}

func binDirName() string {
	if runtime.GOOS == goosWindows {
		return binDirWindows
	}

	return binDirUnix
}

func toolFileName() string {
	if runtime.GOOS == goosWindows {
		return ToolName + exeSuffix
	}

	return ToolName
}
