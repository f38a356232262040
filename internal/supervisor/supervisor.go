// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
	"github.com/matt-FFFFFF/tedrun/internal/envresolve"
	"github.com/matt-FFFFFF/tedrun/internal/launcher"
	"github.com/matt-FFFFFF/tedrun/internal/progress"
	"github.com/matt-FFFFFF/tedrun/internal/streammux"
)

// Default is the process-wide supervisor.
var Default = New()

// Request describes one run.
type Request struct {
	Interpreter string             // Path of the environment's Python interpreter
	EnvRoot     string             // Optional environment root, overrides the one derived from Interpreter
	Template    string             // Arguments passed to tedana before --subject and --session
	Batch       []cmdbuild.Subject // Subjects in execution order
}

// Supervisor runs batches one at a time.
type Supervisor struct {
	launcher     launcher.Launcher
	pollInterval time.Duration
	strictStderr bool
	getenv       func(string) string

	mu           sync.Mutex
	phase        Phase
	current      *cmdbuild.WorkItem
	drain        *streammux.Drain
	done         int
	total        int
	reason       error
	cancelCh     chan struct{}
	cancelClosed bool
}

// New returns an idle Supervisor.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		launcher:     launcher.OS{},
		pollInterval: DefaultPollInterval,
		strictStderr: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Configure applies opts. It fails with ErrAlreadyRunning during a run.
func (s *Supervisor) Configure(opts ...Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		return ErrAlreadyRunning
	}

	for _, opt := range opts {
		opt(s)
	}

	return nil
}

// State returns a snapshot of the supervisor.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Phase:  s.phase,
		Done:   s.done,
		Total:  s.total,
		Reason: s.reason,
	}

	if s.current != nil {
		item := *s.current
		st.Current = &item
	}

	if s.drain != nil {
		st.Transcript = s.drain.Snapshot()
	}

	return st
}

// Cancel requests cancellation of the active run. Repeated calls during the
// same run have no further effect.
func (s *Supervisor) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelCh == nil {
		return ErrNotRunning
	}

	if !s.cancelClosed {
		close(s.cancelCh)
		s.cancelClosed = true
	}

	return nil
}

// Start runs req to completion, failure or cancellation. The returned report
// holds every item that was started, also when an error is returned.
// Cancelling ctx has the same effect as Cancel. sink may be nil.
func (s *Supervisor) Start(ctx context.Context, req Request, sink progress.Reporter) (*Report, error) {
	cancelCh, err := s.begin()
	if err != nil {
		return nil, err
	}

	defer s.end()

	if sink == nil {
		sink = progress.NewNullReporter()
	}

	logger := ctxlog.Logger(ctx).With("component", "supervisor")
	ctx = ctxlog.New(ctx, logger)
	report := &Report{}

	items := cmdbuild.Items(req.Template, req.Batch)
	if len(items) == 0 {
		logger.Info("run completed", "items", 0)
		s.finish(PhaseCompleted, nil)
		reportRun(sink, progress.EventRunCompleted, "run completed", progress.EventData{})

		return report, nil
	}

	env, err := envresolve.ResolveWithRoot(req.Interpreter, req.EnvRoot)
	if err != nil {
		logger.Info("run failed", "error", err)
		s.finish(PhaseFailed, err)
		reportRun(sink, progress.EventRunFailed, "run failed", progress.EventData{Error: err})

		return report, err
	}

	overrides := env.Overrides(s.getenv)

	s.mu.Lock()
	s.total = len(items)
	s.mu.Unlock()

	logger.Info("run started", "items", len(items), "tool", env.Tool, "root", env.Root)
	reportRun(sink, progress.EventRunStarted, fmt.Sprintf("running %d item(s)", len(items)), progress.EventData{Items: len(items)})

	for _, item := range items {
		if isCancelled(ctx, cancelCh) {
			logger.Info("run cancelled before launching next item", "next", item.Label())
			s.finish(PhaseCancelled, ErrCancelled)
			reportRun(sink, progress.EventRunCancelled, "run cancelled", progress.EventData{Error: ErrCancelled})

			return report, ErrCancelled
		}

		res, err := s.runItem(ctx, cancelCh, env.Tool, overrides, item, sink)
		report.Items = append(report.Items, res)

		s.mu.Lock()
		s.done++
		s.mu.Unlock()

		if err == nil {
			continue
		}

		if errors.Is(err, ErrCancelled) {
			s.finish(PhaseCancelled, err)
			reportRun(sink, progress.EventRunCancelled, "run cancelled", progress.EventData{Error: err})

			return report, err
		}

		logger.Info("run failed", "item", item.Label(), "error", err)
		s.finish(PhaseFailed, err)
		reportRun(sink, progress.EventRunFailed, "run failed", progress.EventData{Error: err})

		return report, err
	}

	logger.Info("run completed", "items", len(report.Items))
	s.finish(PhaseCompleted, nil)
	reportRun(sink, progress.EventRunCompleted, "run completed", progress.EventData{Items: len(report.Items)})

	return report, nil
}

// runItem launches one item and supervises it until it exits or is cancelled.
func (s *Supervisor) runItem(
	ctx context.Context,
	cancelCh <-chan struct{},
	tool string,
	env map[string]string,
	item cmdbuild.WorkItem,
	sink progress.Reporter,
) (ItemResult, error) {
	logger := ctxlog.Logger(ctx).With("item", item.Label())

	res := ItemResult{
		Item:     item,
		ExitCode: -1,
		Started:  time.Now(),
	}

	s.setCurrent(&item, nil)

	logger.Debug("launching", "args", item.Args)

	h, err := s.launcher.Launch(ctx, tool, item.Args, env)
	if err != nil {
		if !errors.Is(err, ErrSpawn) {
			err = errors.Join(ErrSpawn, err)
		}

		ie := &ItemError{Item: item, ExitCode: -1, Err: err}
		res.Status = ItemStatusFailed
		res.Err = ie
		res.Finished = time.Now()

		reportItem(sink, progress.EventItemFailed, item, ie.Error(), progress.EventData{ExitCode: -1, Error: ie})

		return res, ie
	}

	defer h.Close() //nolint:errcheck

	res.Pid = h.Pid()
	reportItem(sink, progress.EventItemStarted, item, "started "+item.Label(), progress.EventData{Pid: res.Pid})

	drain := streammux.Start(ctx, h, &lineSink{reporter: sink, item: item})
	s.setCurrent(&item, drain)

	status, cancelled := s.waitExit(ctx, cancelCh, h, drain, logger)

	if !cancelled {
		select {
		case <-drain.Done():
		case <-cancelCh:
			cancelled = true
		case <-ctx.Done():
			cancelled = true
		}
	}

	if cancelled {
		// A killed process may leave descendants holding the pipes open.
		_ = h.Close()
	}

	res.Transcript = drain.Wait()
	res.Finished = time.Now()

	if cancelled {
		ie := &ItemError{Item: item, ExitCode: -1, Err: ErrCancelled}
		res.Status = ItemStatusCancelled
		res.Err = ie

		reportItem(sink, progress.EventItemFailed, item, ie.Error(), progress.EventData{ExitCode: -1, Error: ie})

		return res, ie
	}

	res.ExitCode = status.Code

	var ie *ItemError

	switch {
	case !status.Success():
		err := ErrProcessFailure
		if status.Err != nil {
			err = errors.Join(ErrProcessFailure, status.Err)
		}

		ie = &ItemError{Item: item, ExitCode: status.Code, Err: err}
	case s.strictStderr && res.Transcript.SawMarker:
		ie = &ItemError{
			Item:     item,
			ExitCode: status.Code,
			Stream:   streammux.OriginDiagnostic.String(),
			Err:      ErrProcessFailure,
		}
	}

	if ie != nil {
		res.Status = ItemStatusFailed
		res.Err = ie

		logger.Debug("item failed", "exitCode", status.Code, "sawMarker", res.Transcript.SawMarker)
		reportItem(sink, progress.EventItemFailed, item, ie.Error(), progress.EventData{ExitCode: status.Code, Error: ie})

		return res, ie
	}

	res.Status = ItemStatusSuccess

	logger.Debug("item completed", "duration", res.Duration())
	reportItem(sink, progress.EventItemCompleted, item, "completed "+item.Label(), progress.EventData{ExitCode: status.Code})

	return res, nil
}

// waitExit waits for the process to exit. On cancellation it kills the
// process once, waits for it to exit and reports cancelled.
func (s *Supervisor) waitExit(
	ctx context.Context,
	cancelCh <-chan struct{},
	h launcher.Handle,
	drain *streammux.Drain,
	logger *slog.Logger,
) (launcher.ExitStatus, bool) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if st, ok := h.TryWait(); ok {
			return st, false
		}

		select {
		case <-drain.Activity():
		case <-ticker.C:
		case <-cancelCh:
			logger.Info("cancel requested, killing process", "pid", h.Pid())
			return s.terminate(h, ticker, logger), true
		case <-ctx.Done():
			logger.Info("context done, killing process", "pid", h.Pid())
			return s.terminate(h, ticker, logger), true
		}
	}
}

func (s *Supervisor) terminate(h launcher.Handle, ticker *time.Ticker, logger *slog.Logger) launcher.ExitStatus {
	if err := h.Terminate(); err != nil {
		logger.Error("could not kill process", "pid", h.Pid(), "error", err)
		return launcher.ExitStatus{Code: -1, Err: err}
	}

	for {
		if st, ok := h.TryWait(); ok {
			return st
		}

		<-ticker.C
	}
}

func (s *Supervisor) begin() (chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		return nil, ErrAlreadyRunning
	}

	s.phase = PhaseRunning
	s.current = nil
	s.drain = nil
	s.done = 0
	s.total = 0
	s.reason = nil
	s.cancelCh = make(chan struct{})
	s.cancelClosed = false

	return s.cancelCh, nil
}

func (s *Supervisor) finish(phase Phase, reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = phase
	s.reason = reason
}

func (s *Supervisor) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseIdle
	s.current = nil
	s.drain = nil
	s.cancelCh = nil
	s.cancelClosed = false
}

func (s *Supervisor) setCurrent(item *cmdbuild.WorkItem, drain *streammux.Drain) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = item
	s.drain = drain
}

func isCancelled(ctx context.Context, cancelCh <-chan struct{}) bool {
	select {
	case <-cancelCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
