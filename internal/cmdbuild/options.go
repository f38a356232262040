// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdbuild

import (
	"strconv"
	"strings"
)

// TedanaOptions is the typed form of a tedana command line.
// Zero values are omitted when rendering.
type TedanaOptions struct {
	DataFiles  []string  `yaml:"data_files,omitempty" hcl:"data_files,optional" docdesc:"Multi-echo input files, one per echo"`
	EchoTimes  []float64 `yaml:"echo_times,omitempty" hcl:"echo_times,optional" docdesc:"Echo times in milliseconds"`
	OutDir     string    `yaml:"out_dir,omitempty" hcl:"out_dir,optional" docdesc:"Output directory"`
	Mask       string    `yaml:"mask,omitempty" hcl:"mask,optional" docdesc:"Binary mask of voxels to include"`
	Prefix     string    `yaml:"prefix,omitempty" hcl:"prefix,optional" docdesc:"Prefix for output file names"`
	Convention string    `yaml:"convention,omitempty" hcl:"convention,optional" docdesc:"Filenaming convention: orig or bids"`
	MaskType   []string  `yaml:"mask_type,omitempty" hcl:"mask_type,optional" docdesc:"Methods used to adaptively mask the data"`
	FitType    string    `yaml:"fit_type,omitempty" hcl:"fit_type,optional" docdesc:"T2* fitting method: loglin or curvefit"`
	CombMode   string    `yaml:"comb_mode,omitempty" hcl:"comb_mode,optional" docdesc:"Combination scheme for the echoes"`
	TedPCA     string    `yaml:"tedpca,omitempty" hcl:"tedpca,optional" docdesc:"Method used to select the number of PCA components"`
	Tree       string    `yaml:"tree,omitempty" hcl:"tree,optional" docdesc:"Decision tree used to classify components"`
	Seed       *int      `yaml:"seed,omitempty" hcl:"seed,optional" docdesc:"Seed for ICA"`
	MaxIt      *int      `yaml:"maxit,omitempty" hcl:"maxit,optional" docdesc:"Maximum number of ICA iterations"`
	MaxRestart *int      `yaml:"maxrestart,omitempty" hcl:"maxrestart,optional" docdesc:"Maximum number of ICA restarts"`
	TedOrt     bool      `yaml:"tedort,omitempty" hcl:"tedort,optional" docdesc:"Orthogonalize rejected components to accepted ones"`
	GSControl  []string  `yaml:"gscontrol,omitempty" hcl:"gscontrol,optional" docdesc:"Global signal control methods"`
	NoReports  bool      `yaml:"no_reports,omitempty" hcl:"no_reports,optional" docdesc:"Do not create HTML reports"`
	PNGCmap    string    `yaml:"png_cmap,omitempty" hcl:"png_cmap,optional" docdesc:"Colormap for the report figures"`
	Verbose    bool      `yaml:"verbose,omitempty" hcl:"verbose,optional" docdesc:"Write intermediate files"`
	LowMem     bool      `yaml:"lowmem,omitempty" hcl:"lowmem,optional" docdesc:"Reduce memory use at the cost of speed"`
	NThreads   *int      `yaml:"n_threads,omitempty" hcl:"n_threads,optional" docdesc:"Number of threads"`
	Debug      bool      `yaml:"debug,omitempty" hcl:"debug,optional" docdesc:"Log at debug level"`
	T2SMap     string    `yaml:"t2smap,omitempty" hcl:"t2smap,optional" docdesc:"Precalculated T2* map"`
	Mix        string    `yaml:"mix,omitempty" hcl:"mix,optional" docdesc:"Precalculated ICA mixing matrix"`
	Overwrite  bool      `yaml:"overwrite,omitempty" hcl:"overwrite,optional" docdesc:"Overwrite existing output files"`
}

// FromOptions renders o as an argument template in tedana's documented flag order.
// Values are quoted for shell word splitting; placeholders survive untouched.
func FromOptions(o TedanaOptions) string {
	var b argBuilder

	b.list("-d", o.DataFiles)

	if len(o.EchoTimes) > 0 {
		tes := make([]string, len(o.EchoTimes))
		for i, te := range o.EchoTimes {
			tes[i] = strconv.FormatFloat(te, 'f', -1, 64)
		}

		b.list("-e", tes)
	}

	b.str("--out-dir", o.OutDir)
	b.str("--mask", o.Mask)
	b.str("--prefix", o.Prefix)
	b.str("--convention", o.Convention)
	b.list("--masktype", o.MaskType)
	b.str("--fittype", o.FitType)
	b.str("--combmode", o.CombMode)
	b.str("--tedpca", o.TedPCA)
	b.str("--tree", o.Tree)
	b.num("--seed", o.Seed)
	b.num("--maxit", o.MaxIt)
	b.num("--maxrestart", o.MaxRestart)
	b.flag("--tedort", o.TedOrt)
	b.list("--gscontrol", o.GSControl)
	b.flag("--no-reports", o.NoReports)
	b.str("--png-cmap", o.PNGCmap)
	b.flag("--verbose", o.Verbose)
	b.flag("--lowmem", o.LowMem)
	b.num("--n-threads", o.NThreads)
	b.flag("--debug", o.Debug)
	b.str("--t2smap", o.T2SMap)
	b.str("--mix", o.Mix)
	b.flag("--overwrite", o.Overwrite)

	return b.String()
}

type argBuilder struct {
	parts []string
}

func (b *argBuilder) String() string {
	return strings.Join(b.parts, " ")
}

func (b *argBuilder) str(flag, v string) {
	if v == "" {
		return
	}

	b.parts = append(b.parts, flag, quoteTemplate(v))
}

func (b *argBuilder) list(flag string, vs []string) {
	if len(vs) == 0 {
		return
	}

	b.parts = append(b.parts, flag)
	for _, v := range vs {
		b.parts = append(b.parts, quoteTemplate(v))
	}
}

func (b *argBuilder) num(flag string, v *int) {
	if v == nil {
		return
	}

	b.parts = append(b.parts, flag, strconv.Itoa(*v))
}

func (b *argBuilder) flag(flag string, on bool) {
	if on {
		b.parts = append(b.parts, flag)
	}
}

// quoteTemplate quotes v but keeps placeholders expandable by Expand, which
// runs on the whole string before the launcher splits it.
func quoteTemplate(v string) string {
	stripped := strings.NewReplacer(SubjectPlaceholder, "", SessionPlaceholder, "").Replace(v)
	if stripped != "" && strings.IndexFunc(stripped, needsQuote) < 0 {
		return v
	}

	return quote(v)
}
