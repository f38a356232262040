// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
	"mvdan.cc/sh/v3/shell"
)

var (
	// ErrSpawn is returned when the process could not be started.
	ErrSpawn = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when an operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrCouldNotKillProcess is returned when a running process could not be killed.
	ErrCouldNotKillProcess = errors.New("could not kill process")
)

// Launcher starts processes.
type Launcher interface {
	// Launch starts path with args split into words. env holds overrides
	// applied on top of the current environment; an empty value removes the
	// variable.
	Launch(ctx context.Context, path, args string, env map[string]string) (Handle, error)
}

// Handle controls a running child process.
type Handle interface {
	Stdout() io.Reader
	Stderr() io.Reader
	// TryWait reports the exit status if the process has exited.
	// It never blocks and may be called repeatedly.
	TryWait() (ExitStatus, bool)
	// Terminate kills the process. It is a no-op once the process has exited.
	Terminate() error
	// Close releases the read ends of the output pipes.
	Close() error
	Pid() int
}

// ExitStatus is the outcome of an exited process.
type ExitStatus struct {
	Code int   // Exit code, -1 when the process was killed by a signal
	Err  error // Error reported while waiting, if any
}

// Success is true for a zero exit code and no wait error.
func (s ExitStatus) Success() bool {
	return s.Code == 0 && s.Err == nil
}

var _ Launcher = OS{}

// OS launches real operating system processes.
type OS struct {
	// Dir is the working directory of the child. Empty means the current directory.
	Dir string
}

// Launch implements Launcher.
func (o OS) Launch(ctx context.Context, path, args string, env map[string]string) (Handle, error) {
	logger := ctxlog.Logger(ctx).With("component", "launcher")

	argv, err := SplitArgs(args)
	if err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	exe, err := exec.LookPath(path)
	if err != nil {
		return nil, errors.Join(ErrSpawn, err)
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		closeAll(rOut, wOut, rErr, wErr)
		return nil, errors.Join(ErrSpawn, err)
	}

	logger.Debug("starting process", "path", exe, "args", argv)

	ps, err := os.StartProcess(exe, slices.Concat([]string{filepath.Base(exe)}, argv), &os.ProcAttr{
		Dir:   o.Dir,
		Env:   MergeEnv(os.Environ(), env),
		Files: []*os.File{devNull, wOut, wErr},
	})

	// The child holds its own copies now; the parent keeps only the read ends
	// so that they report EOF once the child exits.
	closeAll(devNull, wOut, wErr)

	if err != nil {
		closeAll(rOut, rErr)
		return nil, errors.Join(ErrSpawn, err)
	}

	logger.Debug("process started", "pid", ps.Pid)

	h := &osHandle{
		ps:     ps,
		stdout: rOut,
		stderr: rErr,
		exited: make(chan struct{}),
		logger: logger.With("pid", ps.Pid),
	}

	go h.wait()

	return h, nil
}

// SplitArgs splits s into words using shell quoting rules.
func SplitArgs(s string) ([]string, error) {
	words, err := shell.Fields(s, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid argument string %q: %w", s, err)
	}

	return words, nil
}

// MergeEnv applies overrides to base, a list of KEY=VALUE pairs.
// An override with an empty value removes the key.
func MergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}

	env := make([]string, 0, len(base)+len(overrides))

	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if hasKey(overrides, key) {
			continue
		}

		env = append(env, kv)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		if v := overrides[k]; v != "" {
			env = append(env, k+"="+v)
		}
	}

	return env
}

// hasKey matches environment keys case-insensitively on Windows.
func hasKey(m map[string]string, key string) bool {
	if _, ok := m[key]; ok {
		return true
	}

	if runtime.GOOS != "windows" {
		return false
	}

	for k := range m {
		if strings.EqualFold(k, key) {
			return true
		}
	}

	return false
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

type osHandle struct {
	ps        *os.Process
	stdout    *os.File
	stderr    *os.File
	mu        sync.Mutex
	status    ExitStatus
	exited    chan struct{}
	closeOnce sync.Once
	closeErr  error
	logger    *slog.Logger
}

func (h *osHandle) wait() {
	state, err := h.ps.Wait()

	st := ExitStatus{Code: -1, Err: err}
	if state != nil {
		st.Code = state.ExitCode()
	}

	h.mu.Lock()
	h.status = st
	h.mu.Unlock()

	h.logger.Debug("process finished", "exitCode", st.Code)
	close(h.exited)
}

func (h *osHandle) Stdout() io.Reader { return h.stdout }

func (h *osHandle) Stderr() io.Reader { return h.stderr }

func (h *osHandle) Pid() int { return h.ps.Pid }

func (h *osHandle) TryWait() (ExitStatus, bool) {
	select {
	case <-h.exited:
	default:
		return ExitStatus{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.status, true
}

func (h *osHandle) Terminate() error {
	select {
	case <-h.exited:
		return nil
	default:
	}

	return h.killPs()
}

func (h *osHandle) Close() error {
	h.closeOnce.Do(func() {
		h.closeErr = errors.Join(h.stdout.Close(), h.stderr.Close())
	})

	return h.closeErr
}

func (h *osHandle) killPs() error {
	if err := h.ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			h.logger.Debug("process already done")
			return nil
		}

		h.logger.Error("process kill error", "error", err)

		return errors.Join(ErrCouldNotKillProcess, err)
	}

	h.logger.Info("process killed")

	return nil
}
