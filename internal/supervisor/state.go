// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/matt-FFFFFF/tedrun/internal/streammux"
)

// Phase is the lifecycle stage of a Supervisor.
type Phase int

const (
	// PhaseIdle means no run is active.
	PhaseIdle Phase = iota
	// PhaseRunning means a batch is being processed.
	PhaseRunning
	// PhaseCancelled is the terminal phase of a cancelled run.
	PhaseCancelled
	// PhaseFailed is the terminal phase of a failed run.
	PhaseFailed
	// PhaseCompleted is the terminal phase of a successful run.
	PhaseCompleted
)

// String implements the Stringer interface for Phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCancelled:
		return "cancelled"
	case PhaseFailed:
		return "failed"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// State is a snapshot of a Supervisor.
type State struct {
	Phase      Phase
	Current    *cmdbuild.WorkItem   // Item being processed, nil when none
	Transcript streammux.Transcript // Lines of the current item read so far
	Done       int                  // Items finished in this run
	Total      int                  // Items in this run
	Reason     error                // Why the last run ended, nil on success
}
