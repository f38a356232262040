// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"fmt"
	"strings"
	"time"

	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/matt-FFFFFF/tedrun/internal/streammux"
)

// ItemStatus is the outcome of one work item.
type ItemStatus int

const (
	// ItemStatusSuccess means the process exited cleanly.
	ItemStatusSuccess ItemStatus = iota
	// ItemStatusFailed means the process could not start or failed.
	ItemStatusFailed
	// ItemStatusCancelled means the process was killed by a cancellation.
	ItemStatusCancelled
)

// String implements the Stringer interface for ItemStatus.
func (s ItemStatus) String() string {
	switch s {
	case ItemStatusSuccess:
		return "success"
	case ItemStatusFailed:
		return "failed"
	case ItemStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ItemResult is the record of one work item.
type ItemResult struct {
	Item       cmdbuild.WorkItem
	Status     ItemStatus
	ExitCode   int // -1 when the process did not exit on its own
	Pid        int
	Transcript streammux.Transcript
	Err        error
	Started    time.Time
	Finished   time.Time
}

// Duration is the wall time of the item.
func (r ItemResult) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}

	return r.Finished.Sub(r.Started)
}

// Report collects the results of a run in execution order.
type Report struct {
	Items []ItemResult
}

// HasError reports whether any item did not succeed.
func (r *Report) HasError() bool {
	if r == nil {
		return false
	}

	for _, it := range r.Items {
		if it.Status != ItemStatusSuccess {
			return true
		}
	}

	return false
}

// String renders the overall transcript, one block per item.
func (r *Report) String() string {
	if r == nil {
		return ""
	}

	var sb strings.Builder

	for _, it := range r.Items {
		fmt.Fprintf(&sb, "Subject: %s, Session: %s\n%s\n\n", it.Item.Subject, it.Item.Session, it.Transcript.String())
	}

	return sb.String()
}
