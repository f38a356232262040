// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package launcher

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const shPath = "/bin/sh"

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func waitExit(t *testing.T, h Handle) ExitStatus {
	t.Helper()

	var st ExitStatus

	require.Eventually(t, func() bool {
		var ok bool
		st, ok = h.TryWait()

		return ok
	}, 10*time.Second, 10*time.Millisecond)

	return st
}

func TestLaunch_CapturesBothStreams(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	h, err := OS{}.Launch(context.Background(), shPath, `-c 'echo out; echo err >&2; exit 3'`, nil)
	require.NoError(t, err)

	defer h.Close() //nolint:errcheck

	stdout, err := io.ReadAll(h.Stdout())
	require.NoError(t, err)

	stderr, err := io.ReadAll(h.Stderr())
	require.NoError(t, err)

	st := waitExit(t, h)

	assert.Equal(t, "out\n", string(stdout))
	assert.Equal(t, "err\n", string(stderr))
	assert.Equal(t, 3, st.Code)
	assert.False(t, st.Success())
	assert.Positive(t, h.Pid())
}

func TestLaunch_TryWaitIsRepeatable(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	h, err := OS{}.Launch(context.Background(), shPath, "-c true", nil)
	require.NoError(t, err)

	defer h.Close() //nolint:errcheck

	first := waitExit(t, h)
	second, ok := h.TryWait()

	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.True(t, second.Success())
}

func TestLaunch_Terminate(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	h, err := OS{}.Launch(context.Background(), shPath, "-c 'exec sleep 30'", nil)
	require.NoError(t, err)

	defer h.Close() //nolint:errcheck

	_, exited := h.TryWait()
	require.False(t, exited)

	require.NoError(t, h.Terminate())

	st := waitExit(t, h)
	assert.Equal(t, -1, st.Code)

	// No-op once exited.
	require.NoError(t, h.Terminate())
}

func TestLaunch_CloseUnblocksReaders(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	h, err := OS{}.Launch(context.Background(), shPath, "-c 'exec sleep 30'", nil)
	require.NoError(t, err)

	done := make(chan error)

	go func() {
		_, err := io.ReadAll(h.Stdout())
		done <- err
	}()

	require.NoError(t, h.Terminate())
	waitExit(t, h)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reader still blocked after Close")
	}
}

func TestLaunch_Environment(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	t.Setenv("TEDRUN_TEST_REMOVED", "present")
	t.Setenv("TEDRUN_TEST_KEPT", "kept")

	env := map[string]string{
		"TEDRUN_TEST_SET":     "set",
		"TEDRUN_TEST_REMOVED": "",
	}

	h, err := OS{}.Launch(context.Background(), shPath,
		`-c 'echo "$TEDRUN_TEST_SET:${TEDRUN_TEST_REMOVED-unset}:$TEDRUN_TEST_KEPT"'`, env)
	require.NoError(t, err)

	defer h.Close() //nolint:errcheck

	out, err := io.ReadAll(h.Stdout())
	require.NoError(t, err)
	waitExit(t, h)

	assert.Equal(t, "set:unset:kept\n", string(out))
}

func TestLaunch_WorkingDirectory(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	dir := t.TempDir()

	h, err := OS{Dir: dir}.Launch(context.Background(), shPath, "-c pwd", nil)
	require.NoError(t, err)

	defer h.Close() //nolint:errcheck

	out, err := io.ReadAll(h.Stdout())
	require.NoError(t, err)
	waitExit(t, h)

	want, err := os.Stat(dir)
	require.NoError(t, err)

	got, err := os.Stat(strings.TrimSpace(string(out)))
	require.NoError(t, err)
	assert.True(t, os.SameFile(want, got))
}

func TestLaunch_SpawnErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		args string
	}{
		{name: "missing executable", path: "/nonexistent/bin/tedana", args: ""},
		{name: "unterminated quote", path: shPath, args: `-c 'echo`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := OS{}.Launch(context.Background(), tt.path, tt.args, nil)
			require.ErrorIs(t, err, ErrSpawn)
			assert.Nil(t, h)
		})
	}
}

func TestLaunch_NotExecutable(t *testing.T) {
	skipOnWindows(t)

	path := t.TempDir() + "/tedana"
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o600))

	_, err := OS{}.Launch(context.Background(), path, "", nil)
	require.ErrorIs(t, err, ErrSpawn)
}

func TestSplitArgs(t *testing.T) {
	t.Setenv("TEDRUN_TEST_DIR", "/data")

	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "empty", in: "", want: nil},
		{name: "plain words", in: "-d a.nii  -e 12", want: []string{"-d", "a.nii", "-e", "12"}},
		{name: "single quotes", in: `--out-dir '/my results'`, want: []string{"--out-dir", "/my results"}},
		{name: "escaped quote", in: `--prefix 'it'\''s'`, want: []string{"--prefix", "it's"}},
		{name: "double quotes", in: `"a b" c`, want: []string{"a b", "c"}},
		{name: "variable", in: "--out-dir $TEDRUN_TEST_DIR/out", want: []string{"--out-dir", "/data/out"}},
		{name: "no globbing", in: "*.nii", want: []string{"*.nii"}},
		{name: "unterminated", in: `"abc`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitArgs(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)

			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/usr/bin", "HOME=/root", "PYTHONHOME=/py", "EMPTY="}

	got := MergeEnv(base, map[string]string{
		"PATH":        "/venv/bin:/usr/bin",
		"VIRTUAL_ENV": "/venv",
		"PYTHONHOME":  "",
	})

	assert.Equal(t, []string{"HOME=/root", "EMPTY=", "PATH=/venv/bin:/usr/bin", "VIRTUAL_ENV=/venv"}, got)
	assert.Equal(t, base, MergeEnv(base, nil))
}
