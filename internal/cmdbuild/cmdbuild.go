// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdbuild turns a batch of subjects and sessions into the argument
// strings passed to tedana, one per work item.
package cmdbuild

import (
	"strings"
)

const (
	// SubjectPlaceholder is replaced by the subject key in a template.
	SubjectPlaceholder = "${SUBJECT}"
	// SessionPlaceholder is replaced by the session key in a template.
	SessionPlaceholder = "${SESSION}"

	subjectFlag = "--subject"
	sessionFlag = "--session"
)

// Subject is one entry of a batch: a subject key and its ordered sessions.
// No sessions means the subject has no sub-units.
type Subject struct {
	Key      string   `yaml:"key" hcl:"key,label" docdesc:"Subject label without the sub- prefix"`
	Sessions []string `yaml:"sessions,omitempty" hcl:"sessions,optional" docdesc:"Session labels without the ses- prefix"`
}

// WorkItem is one (subject, session) pair with its argument string.
type WorkItem struct {
	Subject string
	Session string
	Args    string
}

// Label identifies the item in logs and summaries.
func (w WorkItem) Label() string {
	if w.Session == "" {
		return "sub-" + w.Subject
	}

	return "sub-" + w.Subject + "/ses-" + w.Session
}

// Build appends the subject and, when present, the session flags to template.
// Placeholders in template are substituted first.
func Build(template, subject, session string) string {
	parts := make([]string, 0, 5)

	if t := strings.TrimSpace(Expand(template, subject, session)); t != "" {
		parts = append(parts, t)
	}

	parts = append(parts, subjectFlag, quote(subject))

	if session != "" {
		parts = append(parts, sessionFlag, quote(session))
	}

	return strings.Join(parts, " ")
}

// Expand substitutes ${SUBJECT} and ${SESSION} in s.
func Expand(s, subject, session string) string {
	if !strings.Contains(s, "${") {
		return s
	}

	return strings.NewReplacer(SubjectPlaceholder, subject, SessionPlaceholder, session).Replace(s)
}

// Normalize returns the sessions of s, or a single empty session when s has none.
func (s Subject) Normalize() []string {
	if len(s.Sessions) == 0 {
		return []string{""}
	}

	return s.Sessions
}

// Items flattens batch into work items, preserving order.
func Items(template string, batch []Subject) []WorkItem {
	items := make([]WorkItem, 0, len(batch))

	for _, s := range batch {
		for _, session := range s.Normalize() {
			items = append(items, WorkItem{
				Subject: s.Key,
				Session: session,
				Args:    Build(template, s.Key, session),
			})
		}
	}

	return items
}

// quote single-quotes v when it contains characters a POSIX shell would split on.
func quote(v string) string {
	if v == "" {
		return "''"
	}

	if strings.IndexFunc(v, needsQuote) < 0 {
		return v
	}

	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}

	return !strings.ContainsRune("-_.,:/=+@%", r)
}
