// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package bids

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// CompatibleMessage is returned by Validate for a valid dataset.
const CompatibleMessage = "This directory is BIDS-compatible"

const (
	subjectPrefix = "sub-"
	sessionPrefix = "ses-"
	funcDir       = "func"
	boldJSON      = "_bold.json"
	boldNii       = "_bold.nii"
	boldNiiGz     = "_bold.nii.gz"
)

var (
	// ErrNotDirectory is returned when the dataset root is not a directory.
	ErrNotDirectory = errors.New("the provided path is not a directory")
	// ErrNoSubjects is returned when the root has no sub-* directories.
	ErrNoSubjects = errors.New("no sub-* directories found")
	// ErrNoFuncDir is returned when a subject or session has no func directory.
	ErrNoFuncDir = errors.New("no 'func' directory found")
	// ErrNoBoldFiles is returned when a func directory lacks BOLD files.
	ErrNoBoldFiles = errors.New("missing required '_bold.json' or '_bold.nii'/'_bold.nii.gz' files")
)

// Validate checks root and returns CompatibleMessage, or an error listing
// every problem found.
func Validate(fs afero.Fs, root string) (string, error) {
	if ok, err := afero.DirExists(fs, root); err != nil || !ok {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	subjects, err := listDirs(fs, root, subjectPrefix)
	if err != nil {
		return "", err
	}

	if len(subjects) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoSubjects, root)
	}

	var result error

	for _, sub := range subjects {
		if err := validateSubject(fs, filepath.Join(root, sub)); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if result != nil {
		return "", result
	}

	return CompatibleMessage, nil
}

func validateSubject(fs afero.Fs, subDir string) error {
	sessions, err := listDirs(fs, subDir, sessionPrefix)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		return validateFunc(fs, subDir)
	}

	var result *multierror.Error

	for _, ses := range sessions {
		if err := validateFunc(fs, filepath.Join(subDir, ses)); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func validateFunc(fs afero.Fs, dir string) error {
	fd := filepath.Join(dir, funcDir)

	if ok, err := afero.DirExists(fs, fd); err != nil || !ok {
		return fmt.Errorf("%w in %s", ErrNoFuncDir, dir)
	}

	entries, err := afero.ReadDir(fs, fd)
	if err != nil {
		return fmt.Errorf("reading %s: %w", fd, err)
	}

	var hasJSON, hasNii bool

	for _, e := range entries {
		name := e.Name()

		switch {
		case strings.HasSuffix(name, boldJSON):
			hasJSON = true
		case strings.HasSuffix(name, boldNii), strings.HasSuffix(name, boldNiiGz):
			hasNii = true
		}
	}

	if !hasJSON || !hasNii {
		return fmt.Errorf("%w in %s", ErrNoBoldFiles, fd)
	}

	return nil
}

// listDirs returns the sorted names of the directories in dir starting with prefix.
func listDirs(fs afero.Fs, dir, prefix string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var out []string

	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			out = append(out, e.Name())
		}
	}

	return out, nil
}
