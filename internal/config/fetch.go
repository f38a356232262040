// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
	"github.com/spf13/afero"
)

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // Minimum parts in a go-getter URL: scheme, host, and path
)

// ErrGetRunFile is returned when a remote run file cannot be fetched.
var ErrGetRunFile = errors.New("failed to get run file")

// LoadURL loads a run file from a local path or from any source supported
// by go-getter, e.g. git::https://example.com/runs.git//study/run.yaml?ref=v1.
func LoadURL(ctx context.Context, src string) (*RunFile, error) {
	if src == "" {
		return nil, ErrGetRunFile
	}

	if ok, _ := afero.Exists(FsFactory(), src); ok {
		return Load(src)
	}

	ctxlog.Debug(ctx, "fetching run file", "src", src)

	data, name, err := fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	return Parse(name, data)
}

// fetch downloads the directory holding the file named by src and returns
// the file's content and name.
func fetch(ctx context.Context, src string) ([]byte, string, error) {
	tmpDir, err := os.MkdirTemp("", "tedrun-getter-*")
	if err != nil {
		return nil, "", errors.Join(ErrGetRunFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Join(ErrGetRunFile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string

	// Getters other than the file getter fetch directories, so the file name
	// is split off and read from the download.
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, "", errors.Join(ErrGetRunFile, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(src)
		if newURL == "" || fileName == "" {
			return nil, "", fmt.Errorf("%w: invalid URL format: %s", ErrGetRunFile, src)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(src)
		fileName = filepath.Base(src)
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, "", errors.Join(ErrGetRunFile, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, "", errors.Join(ErrGetRunFile, err)
	}

	return data, fileName, nil
}

// splitFileNameFromGetterURL splits the URL into the directory and file name.
// Any ref query parameter is kept on the directory URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)
	parts[len(parts)-1] = filepath.Dir(last)

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
