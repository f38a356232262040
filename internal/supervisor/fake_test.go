// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/matt-FFFFFF/tedrun/internal/launcher"
)

// fakeProc is a scripted process. Its output is written through pipes so
// that lines reach the reader as the script produces them.
type fakeProc struct {
	args       string
	outR, errR *io.PipeReader
	outW, errW *io.PipeWriter

	mu     sync.Mutex
	exited bool
	status launcher.ExitStatus

	terminations atomic.Int32
	exitedCh     chan struct{}
}

func newFakeProc(args string) *fakeProc {
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()

	return &fakeProc{
		args:     args,
		outR:     outR,
		errR:     errR,
		outW:     outW,
		errW:     errW,
		exitedCh: make(chan struct{}),
	}
}

func (p *fakeProc) Stdout() io.Reader { return p.outR }
func (p *fakeProc) Stderr() io.Reader { return p.errR }
func (p *fakeProc) Pid() int          { return 4242 }

func (p *fakeProc) TryWait() (launcher.ExitStatus, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status, p.exited
}

func (p *fakeProc) Terminate() error {
	p.terminations.Add(1)
	p.exit(-1)

	return nil
}

func (p *fakeProc) Close() error {
	_ = p.outR.Close()
	_ = p.errR.Close()

	return nil
}

func (p *fakeProc) stdout(line string) {
	fmt.Fprintln(p.outW, line) //nolint:errcheck
}

func (p *fakeProc) stderr(line string) {
	fmt.Fprintln(p.errW, line) //nolint:errcheck
}

// exit closes the write ends and records the status. Only the first call counts.
func (p *fakeProc) exit(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.exited {
		return
	}

	_ = p.outW.Close()
	_ = p.errW.Close()
	p.exited = true
	p.status = launcher.ExitStatus{Code: code}
	close(p.exitedCh)
}

// fakeLauncher starts fakeProcs and runs script for each on its own goroutine.
type fakeLauncher struct {
	script func(p *fakeProc)
	err    error

	mu       sync.Mutex
	procs    []*fakeProc
	overlaps int // Launches while an earlier process was still running
}

var _ launcher.Launcher = (*fakeLauncher)(nil)

func (l *fakeLauncher) Launch(_ context.Context, _, args string, _ map[string]string) (launcher.Handle, error) {
	if l.err != nil {
		return nil, l.err
	}

	p := newFakeProc(args)

	l.mu.Lock()
	for _, prev := range l.procs {
		if _, ok := prev.TryWait(); !ok {
			l.overlaps++
		}
	}

	l.procs = append(l.procs, p)
	l.mu.Unlock()

	if l.script != nil {
		go l.script(p)
	}

	return p, nil
}

func (l *fakeLauncher) launched() []*fakeProc {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]*fakeProc(nil), l.procs...)
}

func (l *fakeLauncher) overlapping() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.overlaps
}

var errFakeSpawn = errors.New("exec format error")
