// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a real-time update from a run.
type Event struct {
	Type      EventType // What happened
	Subject   string    // Subject of the work item, empty for run-level events
	Session   string    // Session of the work item, may be empty
	Message   string    // Human-readable status message
	Timestamp time.Time // When the event occurred
	Data      EventData // Type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventRunStarted is sent once per run before the first item.
	EventRunStarted EventType = iota
	// EventItemStarted is sent after a work item's process was launched.
	EventItemStarted
	// EventProgressLine carries one line of the tool's standard output.
	EventProgressLine
	// EventErrorLine carries one line of the tool's standard error.
	EventErrorLine
	// EventItemCompleted is sent when an item finished successfully.
	EventItemCompleted
	// EventItemFailed is sent when an item could not be launched or failed.
	EventItemFailed
	// EventRunCompleted is sent when every item succeeded.
	EventRunCompleted
	// EventRunCancelled is sent when the run was cancelled.
	EventRunCancelled
	// EventRunFailed is sent when an item failed or the environment could not be resolved.
	EventRunFailed
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventRunStarted:
		return "run-started"
	case EventItemStarted:
		return "item-started"
	case EventProgressLine:
		return "progress-line"
	case EventErrorLine:
		return "error-line"
	case EventItemCompleted:
		return "item-completed"
	case EventItemFailed:
		return "item-failed"
	case EventRunCompleted:
		return "run-completed"
	case EventRunCancelled:
		return "run-cancelled"
	case EventRunFailed:
		return "run-failed"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information for progress events.
type EventData struct {
	// For EventProgressLine and EventErrorLine
	OutputLine string // The line, without its terminator
	Seq        int    // Index of the line within its stream

	// For EventItemStarted
	Pid int

	// For EventItemCompleted and EventItemFailed
	ExitCode int
	Error    error

	// For EventRunStarted
	Items int
}

// Reporter is the interface for sending progress events.
type Reporter interface {
	// Report delivers an event. It is called from several goroutines and
	// must be safe for concurrent use.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener receives progress events.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// OnEvent calls f.
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}

// NullReporter is a no-op implementation of Reporter.
type NullReporter struct{}

// Report does nothing.
func (NullReporter) Report(Event) {}

// Close does nothing.
func (NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return NullReporter{}
}
