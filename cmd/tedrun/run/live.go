// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/matt-FFFFFF/tedrun/internal/progress"
)

var _ progress.Listener = (*liveOutput)(nil)

// liveOutput prints progress events as they arrive.
type liveOutput struct {
	w      io.Writer
	quiet  bool
	header lipgloss.Style
	stderr lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
	warn   lipgloss.Style
}

func newLiveOutput(w io.Writer, quiet bool) *liveOutput {
	r := lipgloss.NewRenderer(w)

	return &liveOutput{
		w:      w,
		quiet:  quiet,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		stderr: r.NewStyle().Foreground(lipgloss.Color("11")),
		ok:     r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

func (l *liveOutput) OnEvent(e progress.Event) {
	label := cmdbuild.WorkItem{Subject: e.Subject, Session: e.Session}.Label()

	switch e.Type {
	case progress.EventRunStarted:
		l.println(l.header.Render(fmt.Sprintf("Processing %d item(s)", e.Data.Items)))
	case progress.EventItemStarted:
		l.println(l.header.Render("==> " + label))
	case progress.EventProgressLine:
		if !l.quiet {
			l.println(e.Data.OutputLine)
		}
	case progress.EventErrorLine:
		if !l.quiet {
			l.println(l.stderr.Render(e.Data.OutputLine))
		}
	case progress.EventItemCompleted:
		l.println(l.ok.Render("✓ " + label))
	case progress.EventItemFailed:
		l.println(l.fail.Render("✗ " + e.Message))
	case progress.EventRunCancelled:
		l.println(l.warn.Render("~ run cancelled"))
	case progress.EventRunFailed:
		l.println(l.fail.Render("✗ run failed"))
	case progress.EventRunCompleted:
	}
}

func (l *liveOutput) println(s string) {
	fmt.Fprintln(l.w, s) //nolint:errcheck
}
