// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/header"
)

// LintResult describes one schema resource.
type LintResult struct {
	// ID is the schema identifier derived from the file name.
	ID string `json:"id" yaml:"id"`

	// File is the resource file name within the schema directory.
	File string `json:"file" yaml:"file"`

	// Fields is the number of declared fields when the resource parses.
	Fields int `json:"fields" yaml:"fields"`

	// Error is set when the resource is malformed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Warnings list problems that only surface during validation, such as
	// dict fields with no key-named resource.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// LintSummary aggregates lint results.
type LintSummary struct {
	Total     int `json:"total" yaml:"total"`
	Malformed int `json:"malformed" yaml:"malformed"`
	Warnings  int `json:"warnings" yaml:"warnings"`
}

// LintReport is the outcome of linting a schema directory.
type LintReport struct {
	header.Header `json:",inline" yaml:",inline"`

	Dir     string       `json:"dir" yaml:"dir"`
	Summary LintSummary  `json:"summary" yaml:"summary"`
	Results []LintResult `json:"results" yaml:"results"`
}

// OK reports whether every resource parsed.
func (r *LintReport) OK() bool {
	return r.Summary.Malformed == 0
}

// LintOptions tunes Lint.
type LintOptions struct {
	// Concurrency bounds parallel parsing. Zero uses GOMAXPROCS.
	Concurrency int

	// Version is stamped into the report header.
	Version string
}

// Lint parses every resource in the directory, including ones shadowed by
// a higher-priority extension, and reports which are malformed.
func (s *DirStore) Lint(ctx context.Context, opts LintOptions) (*LintReport, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeSchemaLoad,
			"failed to list schema directory", err, map[string]any{"dir": s.name})
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && isSchemaExt(path.Ext(e.Name())) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	ids, err := s.IDs()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]LintResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.lintFile(file, known)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeSchemaLoad, "schema lint interrupted", err)
	}

	report := &LintReport{Dir: s.name, Results: results}
	report.Init(header.KindSchemaLintReport, opts.Version)
	for _, r := range results {
		report.Summary.Total++
		if r.Error != "" {
			report.Summary.Malformed++
		}
		report.Summary.Warnings += len(r.Warnings)
	}
	slog.Debug("schema lint complete",
		"dir", s.name,
		"total", report.Summary.Total,
		"malformed", report.Summary.Malformed)
	return report, nil
}

func (s *DirStore) lintFile(file string, known map[string]bool) LintResult {
	ext := path.Ext(file)
	id := file[:len(file)-len(ext)]
	res := LintResult{ID: id, File: file}

	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	def, err := Parse(id, ext, data)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Fields = def.Len()

	for _, e := range Extensions {
		if e == ext {
			break
		}
		if _, err := fs.Stat(s.fsys, id+e); err == nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("shadowed by %s%s", id, e))
			break
		}
	}
	res.Warnings = append(res.Warnings, unresolvedDicts(def, known)...)
	return res
}

// unresolvedDicts finds dict fields that have neither an inline schema nor
// a key-named resource. A non-empty mapping under such a field fails
// validation with a schema load error.
func unresolvedDicts(def *Definition, known map[string]bool) []string {
	var out []string
	for _, name := range def.names {
		r := def.rules[name]
		if r.Schema != nil {
			out = append(out, unresolvedDicts(r.Schema, known)...)
			continue
		}
		if !r.expects(TypeDict) && (r.Items == nil || !r.Items.expects(TypeDict)) {
			continue
		}
		if r.Items != nil && r.Items.Schema != nil {
			out = append(out, unresolvedDicts(r.Items.Schema, known)...)
			continue
		}
		if !known[name] {
			out = append(out, fmt.Sprintf("field %q may hold a mapping but has no schema resource", name))
		}
	}
	return out
}

// expects reports whether the rule names the type explicitly.
func (r *Rule) expects(t string) bool {
	for _, have := range r.Types {
		if have == t {
			return true
		}
	}
	return false
}
