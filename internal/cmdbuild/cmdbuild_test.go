// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		template string
		subject  string
		session  string
		want     string
	}{
		{name: "no session", template: "run", subject: "01", session: "", want: "run --subject 01"},
		{name: "with session", template: "run", subject: "01", session: "A", want: "run --subject 01 --session A"},
		{name: "empty template", template: "", subject: "01", want: "--subject 01"},
		{name: "template whitespace trimmed", template: "  -d a.nii  ", subject: "02", want: "-d a.nii --subject 02"},
		{
			name:     "placeholders",
			template: "-d /data/sub-${SUBJECT}/ses-${SESSION}/echo1.nii --out-dir out/${SUBJECT}",
			subject:  "03",
			session:  "pre",
			want:     "-d /data/sub-03/ses-pre/echo1.nii --out-dir out/03 --subject 03 --session pre",
		},
		{name: "unsafe subject quoted", template: "run", subject: "a b", want: "run --subject 'a b'"},
		{name: "quote in key", template: "run", subject: "it's", want: `run --subject 'it'\''s'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.template, tt.subject, tt.session))
		})
	}
}

func TestItems(t *testing.T) {
	batch := []Subject{
		{Key: "01", Sessions: []string{"A", "B"}},
		{Key: "02"},
		{Key: "03", Sessions: []string{""}},
	}

	items := Items("run", batch)

	assert.Equal(t, []WorkItem{
		{Subject: "01", Session: "A", Args: "run --subject 01 --session A"},
		{Subject: "01", Session: "B", Args: "run --subject 01 --session B"},
		{Subject: "02", Session: "", Args: "run --subject 02"},
		{Subject: "03", Session: "", Args: "run --subject 03"},
	}, items)

	assert.Empty(t, Items("run", nil))
}

func TestWorkItemLabel(t *testing.T) {
	assert.Equal(t, "sub-01", WorkItem{Subject: "01"}.Label())
	assert.Equal(t, "sub-01/ses-A", WorkItem{Subject: "01", Session: "A"}.Label())
}

func TestFromOptions(t *testing.T) {
	seed := 42
	threads := 4

	got := FromOptions(TedanaOptions{
		DataFiles: []string{
			"/data/sub-${SUBJECT}/func/sub-${SUBJECT}_echo-1_bold.nii.gz",
			"/data/sub-${SUBJECT}/func/sub-${SUBJECT}_echo-2_bold.nii.gz",
		},
		EchoTimes: []float64{14.5, 38.5},
		OutDir:    "/results/my out",
		Prefix:    "sub-${SUBJECT}",
		FitType:   "curvefit",
		Seed:      &seed,
		TedOrt:    true,
		GSControl: []string{"mir", "gsr"},
		NThreads:  &threads,
		Overwrite: true,
	})

	assert.Equal(t,
		"-d /data/sub-${SUBJECT}/func/sub-${SUBJECT}_echo-1_bold.nii.gz"+
			" /data/sub-${SUBJECT}/func/sub-${SUBJECT}_echo-2_bold.nii.gz"+
			" -e 14.5 38.5 --out-dir '/results/my out' --prefix sub-${SUBJECT}"+
			" --fittype curvefit --seed 42 --tedort --gscontrol mir gsr --n-threads 4 --overwrite",
		got)

	assert.Empty(t, FromOptions(TedanaOptions{}))
}

func TestFromOptionsThenBuild(t *testing.T) {
	template := FromOptions(TedanaOptions{
		DataFiles: []string{"${SUBJECT}"},
		EchoTimes: []float64{12},
	})

	assert.Equal(t, "-d '07' -e 12 --subject 07", Build(template, "07", ""))
}
