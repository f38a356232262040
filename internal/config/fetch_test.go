// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFileNameFromGetterURL(t *testing.T) {
	tests := []struct {
		url      string
		wantURL  string
		wantFile string
	}{
		{
			url:      "git::https://github.com/org/study.git//runs/rest.yaml",
			wantURL:  "git::https://github.com/org/study.git//runs",
			wantFile: "rest.yaml",
		},
		{
			url:      "git::https://github.com/org/study.git//run.hcl?ref=v1.2.0",
			wantURL:  "git::https://github.com/org/study.git?ref=v1.2.0",
			wantFile: "run.hcl",
		},
		{
			url: "https://example.com/run.yaml",
		},
		{
			url: "git::https://github.com/org/study.git//",
		},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			gotURL, gotFile := splitFileNameFromGetterURL(tt.url)
			assert.Equal(t, tt.wantURL, gotURL)
			assert.Equal(t, tt.wantFile, gotFile)
		})
	}
}

func TestLoadURL(t *testing.T) {
	stubFs(t, map[string]string{
		"/runs/a.yaml": "python: /venv/bin/python\nbids_dir: /data\n",
	})

	rf, err := LoadURL(context.Background(), "/runs/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/venv/bin/python", rf.Python)

	_, err = LoadURL(context.Background(), "")
	require.ErrorIs(t, err, ErrGetRunFile)

	_, err = LoadURL(context.Background(), "git::http://notexist//file.yaml")
	require.ErrorIs(t, err, ErrGetRunFile)
}

func TestFetch_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`python = "/venv/bin/python"`), 0o600))

	data, name, err := fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "run.hcl", name)
	assert.Equal(t, `python = "/venv/bin/python"`, string(data))
}
