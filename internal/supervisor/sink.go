// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"time"

	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/matt-FFFFFF/tedrun/internal/progress"
	"github.com/matt-FFFFFF/tedrun/internal/streammux"
)

var _ streammux.Sink = (*lineSink)(nil)

// lineSink turns output lines of one item into progress events.
type lineSink struct {
	reporter progress.Reporter
	item     cmdbuild.WorkItem
}

func (s *lineSink) OnLine(line streammux.Line) {
	evType := progress.EventProgressLine
	if line.Origin == streammux.OriginDiagnostic {
		evType = progress.EventErrorLine
	}

	s.reporter.Report(progress.Event{
		Type:      evType,
		Subject:   s.item.Subject,
		Session:   s.item.Session,
		Timestamp: time.Now(),
		Data: progress.EventData{
			OutputLine: line.Text,
			Seq:        line.Seq,
		},
	})
}

func reportItem(r progress.Reporter, t progress.EventType, item cmdbuild.WorkItem, msg string, data progress.EventData) {
	r.Report(progress.Event{
		Type:      t,
		Subject:   item.Subject,
		Session:   item.Session,
		Message:   msg,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func reportRun(r progress.Reporter, t progress.EventType, msg string, data progress.EventData) {
	r.Report(progress.Event{
		Type:      t,
		Message:   msg,
		Timestamp: time.Now(),
		Data:      data,
	})
}
