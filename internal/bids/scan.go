// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package bids

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/tedrun/internal/cmdbuild"
	"github.com/spf13/afero"
)

var (
	echoNiftiRe   = regexp.MustCompile(`_echo-[1-5].*_bold\.(nii|nii\.gz)$`)
	echoSidecarRe = regexp.MustCompile(`_echo-[1-5].*_bold\.json$`)
	echoNumberRe  = regexp.MustCompile(`echo-(\d+)`)
)

// EchoMetadata is the acquisition metadata of one echo, read from its JSON sidecar.
type EchoMetadata struct {
	Echo                 int      `json:"echo" yaml:"echo"`
	DelayTime            *float64 `json:"delayTime,omitempty" yaml:"delay_time,omitempty"`
	EchoTime             *float64 `json:"echoTime,omitempty" yaml:"echo_time,omitempty"`
	RepetitionTime       *float64 `json:"repetitionTime,omitempty" yaml:"repetition_time,omitempty"`
	SkullStripped        *bool    `json:"skullStripped,omitempty" yaml:"skull_stripped,omitempty"`
	SliceTimingCorrected *bool    `json:"sliceTimingCorrected,omitempty" yaml:"slice_timing_corrected,omitempty"`
	StartTime            *float64 `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	TaskName             *string  `json:"taskName,omitempty" yaml:"task_name,omitempty"`
}

// Session is one ses-* directory, or the subject directory itself when the
// subject has no sessions (Name is then empty).
type Session struct {
	Name      string   `json:"name" yaml:"name"`
	EchoFiles []string `json:"echoFiles" yaml:"echo_files"`
}

// Subject is one sub-* directory.
type Subject struct {
	Name     string    `json:"name" yaml:"name"`
	Sessions []Session `json:"sessions" yaml:"sessions"`
}

// Structure is the result of Scan.
type Structure struct {
	Root     string         `json:"root" yaml:"root"`
	Metadata []EchoMetadata `json:"metadata" yaml:"metadata"`
	Subjects []Subject      `json:"subjects" yaml:"subjects"`
	Warnings []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Scan lists the subjects and sessions of root. Metadata is read from the
// echo sidecars of the first subject's first session; unreadable sidecars
// are skipped and noted in Warnings.
func Scan(fs afero.Fs, root string) (*Structure, error) {
	if ok, err := afero.DirExists(fs, root); err != nil || !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	subjects, err := listDirs(fs, root, subjectPrefix)
	if err != nil {
		return nil, err
	}

	st := &Structure{Root: root, Subjects: make([]Subject, 0, len(subjects))}

	for _, subName := range subjects {
		subDir := filepath.Join(root, subName)

		sessions, err := listDirs(fs, subDir, sessionPrefix)
		if err != nil {
			return nil, err
		}

		if len(sessions) == 0 {
			sessions = []string{""}
		}

		sub := Subject{Name: subName, Sessions: make([]Session, 0, len(sessions))}

		for i, sesName := range sessions {
			sesDir := filepath.Join(subDir, sesName)

			files, err := echoFiles(fs, sesDir)
			if err != nil {
				return nil, err
			}

			sub.Sessions = append(sub.Sessions, Session{Name: sesName, EchoFiles: files})

			if len(st.Metadata) == 0 && i == 0 {
				md, warnings, err := boldMetadata(fs, sesDir)
				if err != nil {
					return nil, err
				}

				st.Metadata = md
				st.Warnings = append(st.Warnings, warnings...)
			}
		}

		st.Subjects = append(st.Subjects, sub)
	}

	return st, nil
}

// EchoTimes returns the echo times in echo order, skipping echoes without one.
func (s *Structure) EchoTimes() []float64 {
	var out []float64

	for _, m := range s.Metadata {
		if m.EchoTime != nil {
			out = append(out, *m.EchoTime)
		}
	}

	return out
}

// Filter restricts Batch to some subjects and sessions. Values may be given
// with or without their sub-/ses- prefix. Empty means everything.
type Filter struct {
	Subjects []string
	Sessions []string
}

// Batch converts the structure to a batch for the supervisor. Keys are BIDS
// labels, i.e. directory names without their sub-/ses- prefix.
func (s *Structure) Batch(filter Filter) []cmdbuild.Subject {
	subjects := labels(filter.Subjects, subjectPrefix)
	sessions := labels(filter.Sessions, sessionPrefix)

	batch := make([]cmdbuild.Subject, 0, len(s.Subjects))

	for _, sub := range s.Subjects {
		key := strings.TrimPrefix(sub.Name, subjectPrefix)
		if len(subjects) > 0 && !slices.Contains(subjects, key) {
			continue
		}

		entry := cmdbuild.Subject{Key: key}

		for _, ses := range sub.Sessions {
			if ses.Name == "" {
				continue
			}

			label := strings.TrimPrefix(ses.Name, sessionPrefix)
			if len(sessions) > 0 && !slices.Contains(sessions, label) {
				continue
			}

			entry.Sessions = append(entry.Sessions, label)
		}

		// A session filter that matches none of the subject's sessions drops the subject.
		if len(sessions) > 0 && len(entry.Sessions) == 0 && hasSessions(sub) {
			continue
		}

		batch = append(batch, entry)
	}

	return batch
}

func hasSessions(sub Subject) bool {
	return len(sub.Sessions) > 0 && sub.Sessions[0].Name != ""
}

func labels(values []string, prefix string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimPrefix(v, prefix))
	}

	return out
}

func echoFiles(fs afero.Fs, dir string) ([]string, error) {
	fd := filepath.Join(dir, funcDir)

	entries, err := afero.ReadDir(fs, fd)
	if err != nil {
		return nil, fmt.Errorf("reading func directory %s: %w", fd, err)
	}

	var files []string

	for _, e := range entries {
		if !e.IsDir() && echoNiftiRe.MatchString(e.Name()) {
			files = append(files, filepath.Join(fd, e.Name()))
		}
	}

	slices.Sort(files)

	return files, nil
}

func boldMetadata(fs afero.Fs, dir string) ([]EchoMetadata, []string, error) {
	fd := filepath.Join(dir, funcDir)

	if ok, err := afero.DirExists(fs, fd); err != nil || !ok {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoFuncDir, dir)
	}

	entries, err := afero.ReadDir(fs, fd)
	if err != nil {
		return nil, nil, fmt.Errorf("reading func directory %s: %w", fd, err)
	}

	var (
		md       []EchoMetadata
		warnings []string
	)

	for _, e := range entries {
		if e.IsDir() || !echoSidecarRe.MatchString(e.Name()) {
			continue
		}

		m, err := readSidecar(fs, filepath.Join(fd, e.Name()))
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}

		md = append(md, m)
	}

	slices.SortStableFunc(md, func(a, b EchoMetadata) int { return a.Echo - b.Echo })
	md = slices.CompactFunc(md, func(a, b EchoMetadata) bool { return a.Echo == b.Echo })

	return md, warnings, nil
}

func readSidecar(fs afero.Fs, path string) (EchoMetadata, error) {
	m := EchoMetadata{}

	match := echoNumberRe.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return m, fmt.Errorf("%s: failed to extract echo number", path)
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		return m, fmt.Errorf("%s: failed to extract echo number: %w", path, err)
	}

	m.Echo = n

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return m, fmt.Errorf("%s: failed to read file: %w", path, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return m, fmt.Errorf("%s: failed to parse JSON: %w", path, err)
	}

	m.DelayTime = floatField(fields, "DelayTime")
	m.EchoTime = floatField(fields, "EchoTime")
	m.RepetitionTime = floatField(fields, "RepetitionTime")
	m.SkullStripped = boolField(fields, "SkullStripped")
	m.SliceTimingCorrected = boolField(fields, "SliceTimingCorrected")
	m.StartTime = floatField(fields, "StartTime")

	if s, ok := fields["TaskName"].(string); ok {
		m.TaskName = &s
	}

	return m, nil
}

// floatField returns the numeric field key, nil when missing or not a number.
func floatField(fields map[string]any, key string) *float64 {
	if v, ok := fields[key].(float64); ok {
		return &v
	}

	return nil
}

func boolField(fields map[string]any, key string) *bool {
	if v, ok := fields[key].(bool); ok {
		return &v
	}

	return nil
}
