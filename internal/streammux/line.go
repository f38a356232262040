// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package streammux

import (
	"strings"
)

const (
	// ErrorMarker in a diagnostic line marks the run as failed.
	ErrorMarker = "ERROR:"
	// DiagnosticPrefix is prepended to diagnostic lines in a rendered transcript.
	DiagnosticPrefix = "STDERR: "
)

// Origin tells which stream a line was read from.
type Origin int

const (
	// OriginPrimary is standard output.
	OriginPrimary Origin = iota
	// OriginDiagnostic is standard error.
	OriginDiagnostic
)

// String implements the Stringer interface for Origin.
func (o Origin) String() string {
	switch o {
	case OriginPrimary:
		return "stdout"
	case OriginDiagnostic:
		return "stderr"
	default:
		return "unknown"
	}
}

// Line is one line of output without its terminator.
type Line struct {
	Origin Origin
	Text   string
	Seq    int // Position within its stream, starting at 0
}

// Transcript is the ordered record of the lines read for one process.
type Transcript struct {
	Lines     []Line
	SawMarker bool // A diagnostic line contained ErrorMarker
}

// String renders the transcript, one line per entry, diagnostic lines prefixed.
func (t Transcript) String() string {
	var sb strings.Builder

	for _, l := range t.Lines {
		if l.Origin == OriginDiagnostic {
			sb.WriteString(DiagnosticPrefix)
		}

		sb.WriteString(l.Text)
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Text returns the lines of one origin in order.
func (t Transcript) Text(origin Origin) []string {
	var out []string

	for _, l := range t.Lines {
		if l.Origin == origin {
			out = append(out, l.Text)
		}
	}

	return out
}

// Clone returns a deep copy of the transcript.
func (t Transcript) Clone() Transcript {
	return Transcript{
		Lines:     append([]Line(nil), t.Lines...),
		SawMarker: t.SawMarker,
	}
}

// IsMarked reports whether l is a diagnostic line carrying ErrorMarker.
func IsMarked(l Line) bool {
	return l.Origin == OriginDiagnostic && strings.Contains(l.Text, ErrorMarker)
}
