// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/matt-FFFFFF/tedrun/internal/envresolve"
	"github.com/matt-FFFFFF/tedrun/internal/launcher"
)

var (
	// ErrInvalidEnvironmentLayout is returned when the interpreter path cannot be resolved.
	ErrInvalidEnvironmentLayout = envresolve.ErrInvalidEnvironmentLayout
	// ErrSpawn is returned when a work item's process could not be started.
	ErrSpawn = launcher.ErrSpawn
	// ErrAlreadyRunning is returned by Start while another run is active.
	ErrAlreadyRunning = errors.New("a run is already in progress")
	// ErrNotRunning is returned by Cancel when no run is active.
	ErrNotRunning = errors.New("no run in progress")
	// ErrProcessFailure is returned when a process exits non-zero or reports an error on stderr.
	ErrProcessFailure = errors.New("process failed")
	// ErrCancelled is returned when the run was cancelled.
	ErrCancelled = errors.New("run cancelled")
)

// ItemError is a failure of one work item.
type ItemError struct {
	Item     cmdbuild.WorkItem
	ExitCode int    // Exit code, -1 when unknown or killed
	Stream   string // "stderr" when the error marker triggered the failure
	Err      error
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	switch {
	case e.Stream != "":
		return fmt.Sprintf("%s: %v (error reported on %s)", e.Item.Label(), e.Err, e.Stream)
	case e.ExitCode > 0:
		return fmt.Sprintf("%s: %v (exit code: %d)", e.Item.Label(), e.Err, e.ExitCode)
	default:
		return fmt.Sprintf("%s: %v", e.Item.Label(), e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *ItemError) Unwrap() error {
	return e.Err
}
