// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package install checks that tedana can be imported by an environment's interpreter.
package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
	"github.com/matt-FFFFFF/tedrun/internal/envresolve"
	"github.com/matt-FFFFFF/tedrun/internal/launcher"
)

// versionScript prints the installed tedana version.
const versionScript = "import tedana; print(tedana.__version__)"

var (
	// ErrNotInstalled is returned when the interpreter cannot import tedana.
	ErrNotInstalled = errors.New("tedana is not installed in this environment")
	// ErrNoVersion is returned when the interpreter printed no version.
	ErrNoVersion = errors.New("tedana did not report a version")
)

// Check runs the interpreter with the environment activated and returns the
// tedana version. root overrides the environment root when not empty.
func Check(ctx context.Context, interpreter, root string) (string, error) {
	env, err := envresolve.ResolveWithRoot(interpreter, root)
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	logger := ctxlog.Logger(ctx).With("component", "install", "interpreter", env.Interpreter)

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, env.Interpreter, "-c", versionScript)
	cmd.Env = launcher.MergeEnv(os.Environ(), env.Overrides(nil))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("checking installation")

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Debug("import failed", "exitCode", exitErr.ExitCode(), "stderr", stderr.String())
			return "", fmt.Errorf("%w: %s", ErrNotInstalled, lastLine(stderr.String()))
		}

		return "", errors.Join(launcher.ErrSpawn, err)
	}

	version := strings.TrimSpace(stdout.String())
	if version == "" {
		return "", ErrNoVersion
	}

	logger.Debug("tedana found", "version", version)

	return version, nil
}

// lastLine returns the last non-empty line of s, which for a Python traceback
// is the exception message.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}
