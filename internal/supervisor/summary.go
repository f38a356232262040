// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/matt-FFFFFF/tedrun/internal/color"
	"github.com/matt-FFFFFF/tedrun/internal/streammux"
)

// OutputOptions controls what is included in a summary.
type OutputOptions struct {
	IncludeStdOut      bool // Whether to include stdout lines
	IncludeStdErr      bool // Whether to include stderr lines
	ShowSuccessDetails bool // Whether to show output for successful items
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdOut:      false,
		IncludeStdErr:      true,
		ShowSuccessDetails: false,
	}
}

// Print writes the summary to stdout with default options.
func (r *Report) Print() error {
	return r.Write(os.Stdout, nil)
}

// Write writes a one line per item summary to w.
func (r *Report) Write(w io.Writer, options *OutputOptions) error {
	if r == nil {
		return nil
	}

	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, it := range r.Items {
		if err := writeItem(w, it, options); err != nil {
			return err
		}
	}

	return nil
}

func writeItem(w io.Writer, it ItemResult, options *OutputOptions) error {
	var statusStr, labelPrefix string

	var errColor color.Code

	switch it.Status {
	case ItemStatusSuccess:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	case ItemStatusFailed:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
		errColor = color.FgRed
	case ItemStatusCancelled:
		statusStr = color.Colorize("~", color.FgYellow)
		labelPrefix = color.ControlString(color.Bold, color.FgYellow)
		errColor = color.FgYellow
	default:
		statusStr = color.Colorize("?", color.FgWhite)
		errColor = color.FgWhite
	}

	if _, err := fmt.Fprintf(w, "%s %s%s%s", statusStr, labelPrefix, it.Item.Label(), color.ControlString(color.Reset)); err != nil {
		return err //nolint:wrapcheck
	}

	if d := it.Duration(); d > 0 {
		fmt.Fprintf(w, " [%s]", d.Round(time.Millisecond)) // nolint:errcheck
	}

	if it.ExitCode > 0 {
		fmt.Fprintf(w, " (exit code: %d)", it.ExitCode) // nolint:errcheck
	}

	fmt.Fprintln(w) // nolint:errcheck

	if it.Err != nil {
		fmt.Fprintf(w, "  %s %s\n", color.Colorize("➜ Error:", errColor), it.Err.Error()) // nolint:errcheck
	}

	showDetails := it.Status != ItemStatusSuccess || options.ShowSuccessDetails

	if out := it.Transcript.Text(streammux.OriginPrimary); showDetails && options.IncludeStdOut && len(out) > 0 {
		fmt.Fprintln(w, "  ➜ Output:")            // nolint:errcheck
		fmt.Fprint(w, formatOutput(out, "     ")) // nolint:errcheck
	}

	if errOut := it.Transcript.Text(streammux.OriginDiagnostic); showDetails && options.IncludeStdErr && len(errOut) > 0 {
		fmt.Fprintf(w, "  %s\n", color.Colorize("➜ Error Output:", color.FgHiRed)) // nolint:errcheck
		fmt.Fprint(w, formatOutput(errOut, "     "))                               // nolint:errcheck
	}

	return nil
}

// formatOutput indents each line, leaving empty lines empty.
func formatOutput(lines []string, indent string) string {
	sb := strings.Builder{}

	for _, line := range lines {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
