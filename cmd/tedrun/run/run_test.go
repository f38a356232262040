// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/tedrun/internal/bids"
	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/matt-FFFFFF/tedrun/internal/color"
	"github.com/matt-FFFFFF/tedrun/internal/config"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const (
	dataRoot   = "/data"
	fakeTedana = `#!/bin/sh
echo "tedana $*"
if [ "$2" = "02" ]; then
  echo "ERROR: no echoes found for $2" >&2
fi
`
)

// newFakeEnv creates a virtual environment whose tedana is a shell script.
func newFakeEnv(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	bin := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.Mkdir(bin, 0o755))

	interpreter := filepath.Join(bin, "python")
	require.NoError(t, os.WriteFile(interpreter, []byte("#!/bin/sh\n"), 0o755))               //nolint:gosec
	require.NoError(t, os.WriteFile(filepath.Join(bin, "tedana"), []byte(fakeTedana), 0o755)) //nolint:gosec

	return interpreter
}

// stubDataset serves a BIDS dataset with the given subject directories from memory.
func stubDataset(t *testing.T, dirs ...string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()

	for _, d := range dirs {
		base := strings.ReplaceAll(d, "/", "_")
		funcDir := filepath.Join(dataRoot, d, "func")
		require.NoError(t, fs.MkdirAll(funcDir, 0o755))
		require.NoError(t, afero.WriteFile(fs, filepath.Join(funcDir, base+"_task-rest_echo-1_bold.nii.gz"), nil, 0o644))
		require.NoError(t, afero.WriteFile(fs, filepath.Join(funcDir, base+"_task-rest_echo-1_bold.json"),
			[]byte(`{"EchoTime": 0.012}`), 0o644))
	}

	stubs := gostub.StubFunc(&config.FsFactory, fs)
	t.Cleanup(stubs.Reset)

	return fs
}

// runCLI runs the run command and returns its output and exit code.
func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()

	defer color.SetEnabled(false)()

	stubs := gostub.Stub(&cli.OsExiter, func(int) {})
	stubs.Stub(&cli.ErrWriter, io.Discard)

	defer stubs.Reset()

	out := &bytes.Buffer{}
	root := &cli.Command{
		Name:      "tedrun",
		Writer:    out,
		ErrWriter: io.Discard,
		Commands:  []*cli.Command{newCommand()},
	}

	err := root.Run(context.Background(), append([]string{"tedrun", "run"}, args...))
	if err == nil {
		return out.String(), 0
	}

	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)

	return out.String(), exitErr.ExitCode()
}

func TestRun_BidsDataset(t *testing.T) {
	interpreter := newFakeEnv(t)
	stubDataset(t, "sub-01/ses-A", "sub-01/ses-B", "sub-03/ses-A")

	out, code := runCLI(t, "--python", interpreter, "--bids-dir", dataRoot, "--args=--tedpca aic")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Processing 3 item(s)")
	assert.Contains(t, out, "tedana --tedpca aic --subject 01 --session A")
	assert.Contains(t, out, "tedana --tedpca aic --subject 01 --session B")
	assert.Contains(t, out, "tedana --tedpca aic --subject 03 --session A")
	assert.Contains(t, out, "✓ sub-03/ses-A")
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	interpreter := newFakeEnv(t)
	stubDataset(t, "sub-01", "sub-02", "sub-03")

	out, code := runCLI(t, "--python", interpreter, "--bids-dir", dataRoot)

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "✓ sub-01")
	assert.Contains(t, out, "ERROR: no echoes found for 02")
	assert.Contains(t, out, "✗ sub-02")
	assert.Contains(t, out, "✗ run failed")
	assert.NotContains(t, out, "--subject 03")
}

func TestRun_NoStrictStderr(t *testing.T) {
	interpreter := newFakeEnv(t)
	stubDataset(t, "sub-01", "sub-02", "sub-03")

	out, code := runCLI(t, "--python", interpreter, "--bids-dir", dataRoot, "--no-strict-stderr", "--quiet")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "✓ sub-02")
	assert.Contains(t, out, "✓ sub-03")
	assert.NotContains(t, out, "tedana --subject")
}

func TestRun_SubjectFilter(t *testing.T) {
	interpreter := newFakeEnv(t)
	stubDataset(t, "sub-01", "sub-02", "sub-03")

	out, code := runCLI(t, "--python", interpreter, "--bids-dir", dataRoot, "--subject", "sub-03")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Processing 1 item(s)")
	assert.Contains(t, out, "tedana --subject 03")
}

func TestRun_FilterMatchesNothing(t *testing.T) {
	interpreter := newFakeEnv(t)
	stubDataset(t, "sub-01")

	_, code := runCLI(t, "--python", interpreter, "--bids-dir", dataRoot, "--subject", "99")

	assert.Equal(t, 1, code)
}

func TestRun_RunFile(t *testing.T) {
	interpreter := newFakeEnv(t)
	fs := stubDataset(t)

	runFile := `python: ` + interpreter + `
args: "--out-dir /out/sub-${SUBJECT}"
subjects:
  - key: "04"
    sessions: ["A"]
`
	require.NoError(t, afero.WriteFile(fs, "/runs/run.yaml", []byte(runFile), 0o644))

	out, code := runCLI(t, "--file", "/runs/run.yaml")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "tedana --out-dir /out/sub-04 --subject 04 --session A")
}

func TestRun_WritesReport(t *testing.T) {
	interpreter := newFakeEnv(t)
	stubDataset(t, "sub-01")

	outFile := filepath.Join(t.TempDir(), "report.txt")

	_, code := runCLI(t, "--python", interpreter, "--bids-dir", dataRoot, "--out", outFile)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "Subject: 01, Session: \ntedana --subject 01\n\n\n", string(data))
}

func TestRun_ConfigurationErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{
			name: "no interpreter",
			args: []string{"--bids-dir", dataRoot},
		},
		{
			name: "no dataset",
			args: []string{"--python", "/opt/venvs/tedana/bin/python"},
		},
		{
			name: "dataset is not BIDS",
			args: []string{"--python", "/opt/venvs/tedana/bin/python", "--bids-dir", "/missing"},
		},
		{
			name: "run file not found",
			args: []string{"--file", "/missing/run.yaml"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stubDataset(t, "sub-01")

			_, code := runCLI(t, tc.args...)
			assert.Equal(t, 1, code)
		})
	}
}

func TestFilterSubjects(t *testing.T) {
	subjects := []cmdbuild.Subject{
		{Key: "01", Sessions: []string{"A", "B"}},
		{Key: "02"},
		{Key: "03", Sessions: []string{"B"}},
	}

	testCases := []struct {
		name   string
		filter bids.Filter
		want   []cmdbuild.Subject
	}{
		{
			name:   "no filter",
			filter: bids.Filter{},
			want:   subjects,
		},
		{
			name:   "subjects with prefix",
			filter: bids.Filter{Subjects: []string{"sub-02", "03"}},
			want:   []cmdbuild.Subject{{Key: "02"}, {Key: "03", Sessions: []string{"B"}}},
		},
		{
			name:   "sessions keep subjects without sessions",
			filter: bids.Filter{Sessions: []string{"ses-A"}},
			want:   []cmdbuild.Subject{{Key: "01", Sessions: []string{"A"}}, {Key: "02"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, filterSubjects(subjects, tc.filter))
		})
	}
}
