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

package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/irule-builder/pkg/document"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/header"
)

// Status represents the overall validation outcome.
type Status string

const (
	// StatusValid indicates the document satisfied every schema.
	StatusValid Status = "valid"

	// StatusInvalid indicates one or more findings.
	StatusInvalid Status = "invalid"
)

// Finding is a single structural mismatch.
type Finding struct {
	// Path locates the offending field from the document root.
	Path document.Path `json:"path" yaml:"path"`

	// Schema is the identifier of the definition that produced the finding.
	Schema string `json:"schema" yaml:"schema"`

	// Code is the violated rule, e.g. "required" or "type".
	Code string `json:"code" yaml:"code"`

	// Message is the human-readable reason.
	Message string `json:"message" yaml:"message"`
}

func (f Finding) String() string {
	p := f.Path.String()
	if p == "" {
		p = "(root)"
	}
	return fmt.Sprintf("%s: %s", p, f.Message)
}

// Result is either valid (no findings) or invalid with findings in
// document order. The zero value is valid.
type Result struct {
	Findings []Finding `json:"findings" yaml:"findings"`
}

// Valid returns an empty result.
func Valid() *Result {
	return &Result{Findings: []Finding{}}
}

// Invalid returns a result holding findings.
func Invalid(findings ...Finding) *Result {
	return &Result{Findings: findings}
}

// IsValid reports whether the result carries no findings.
func (r *Result) IsValid() bool {
	return r == nil || len(r.Findings) == 0
}

// Status returns the outcome as a Status.
func (r *Result) Status() Status {
	if r.IsValid() {
		return StatusValid
	}
	return StatusInvalid
}

// Merge returns a new result holding r's findings followed by each
// other's. Inputs are not modified.
func (r *Result) Merge(others ...*Result) *Result {
	out := Valid()
	if r != nil {
		out.Findings = append(out.Findings, r.Findings...)
	}
	for _, o := range others {
		if o != nil {
			out.Findings = append(out.Findings, o.Findings...)
		}
	}
	return out
}

// Annotate returns a copy of the result with prefix prepended to every
// finding path.
func (r *Result) Annotate(prefix document.Path) *Result {
	out := Valid()
	if r == nil {
		return out
	}
	for _, f := range r.Findings {
		f.Path = prefix.Join(f.Path)
		out.Findings = append(out.Findings, f)
	}
	return out
}

// String renders the findings as an indented report.
func (r *Result) String() string {
	if r.IsValid() {
		return "document is valid"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "document failed validation with %d finding(s):", len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "\n  - %s [%s/%s]", f, f.Schema, f.Code)
	}
	return b.String()
}

// Err returns nil for a valid result and an ErrCodeValidation error
// carrying the full report otherwise.
func (r *Result) Err() error {
	if r.IsValid() {
		return nil
	}
	return apperrors.NewWithContext(apperrors.ErrCodeValidation, r.String(),
		map[string]any{"findings": len(r.Findings)})
}

// Summary contains aggregate statistics about a validation run.
type Summary struct {
	// Status is the overall outcome.
	Status Status `json:"status" yaml:"status"`

	// Findings is the number of findings.
	Findings int `json:"findings" yaml:"findings"`

	// Mappings is the number of mappings checked against a definition.
	Mappings int `json:"mappings" yaml:"mappings"`

	// Schemas is the number of distinct definitions resolved.
	Schemas int `json:"schemas" yaml:"schemas"`

	// Duration is how long the walk took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the serializable outcome of validating one document.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	// RunID identifies this validation run in logs and reports.
	RunID string `json:"runID" yaml:"runID"`

	// Source is the input reference that was validated.
	Source string `json:"source" yaml:"source"`

	// RootSchema is the identifier applied to the document root.
	RootSchema string `json:"rootSchema" yaml:"rootSchema"`

	Summary Summary `json:"summary" yaml:"summary"`

	Findings []Finding `json:"findings" yaml:"findings"`
}

// NewReport builds a report from a walk outcome.
func NewReport(out *Outcome, source, version string) *Report {
	r := &Report{
		RunID:      uuid.NewString(),
		Source:     source,
		RootSchema: out.RootSchema,
		Summary: Summary{
			Status:   out.Result.Status(),
			Findings: len(out.Result.Findings),
			Mappings: out.Mappings,
			Schemas:  out.Schemas,
			Duration: out.Duration,
		},
		Findings: append([]Finding{}, out.Result.Findings...),
	}
	r.Init(header.KindValidationReport, version)
	r.Set("runID", r.RunID)
	return r
}

// TableRows implements the table output of the report writer.
func (r *Report) TableRows() ([]string, [][]string) {
	rows := make([][]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		rows = append(rows, []string{f.Path.String(), f.Schema, f.Code, f.Message})
	}
	return []string{"PATH", "SCHEMA", "CODE", "MESSAGE"}, rows
}
