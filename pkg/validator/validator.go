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
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NVIDIA/irule-builder/pkg/defaults"
	"github.com/NVIDIA/irule-builder/pkg/document"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/schema"
)

// Validator walks document trees and checks every mapping against the
// schema named after its key.
type Validator struct {
	store    schema.Store
	maxDepth int
}

// Option is a functional option for configuring Validator instances.
type Option func(*Validator)

// WithMaxDepth bounds nesting. Non-positive values keep the default.
func WithMaxDepth(depth int) Option {
	return func(v *Validator) {
		if depth > 0 {
			v.maxDepth = depth
		}
	}
}

// New creates a Validator resolving definitions from store.
func New(store schema.Store, opts ...Option) *Validator {
	v := &Validator{
		store:    store,
		maxDepth: defaults.MaxDepth,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Outcome is a Result plus statistics about the walk that produced it.
type Outcome struct {
	Result     *Result
	RootSchema string
	Mappings   int
	Schemas    int
	Duration   time.Duration
}

// Validate checks node against the schema id and everything below it.
//
// Structural mismatches are collected into the Result. Schema resolution
// failures (E1300), nesting beyond the depth limit (E1401) and context
// cancellation abort the walk and return an error with no Result.
func (v *Validator) Validate(ctx context.Context, node *document.Node, id string) (*Result, error) {
	out, err := v.Walk(ctx, node, id)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// frame is one pending node on the work stack.
type frame struct {
	node   *document.Node
	id     string
	inline *schema.Definition
	path   document.Path
	depth  int
}

// Walk is Validate with walk statistics.
func (v *Validator) Walk(ctx context.Context, node *document.Node, id string) (*Outcome, error) {
	start := time.Now()
	defer func() {
		validationDuration.Observe(time.Since(start).Seconds())
	}()

	// Definitions resolved during this walk, by identifier.
	table := make(map[string]*schema.Definition)
	out := &Outcome{Result: Valid(), RootSchema: id}
	// Results of failed mapping checks, in document order.
	var failed []*Result

	stack := []frame{{node: node, id: id}}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.ErrCodeUnknown, "validation canceled", ctx.Err())
		default:
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !f.node.IsContainer() || f.node.Len() == 0 {
			continue
		}
		if f.depth > v.maxDepth {
			validationRuns.WithLabelValues("error").Inc()
			return nil, apperrors.NewWithContext(apperrors.ErrCodeTooDeep,
				fmt.Sprintf("document is too deeply nested (limit %d)", v.maxDepth),
				map[string]any{"path": f.path.String(), "depth": f.depth})
		}

		if f.node.Kind == document.KindSequence {
			for i := len(f.node.Items) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					node:   f.node.Items[i],
					id:     f.id,
					inline: f.inline,
					path:   f.path.At(i),
					depth:  f.depth + 1,
				})
			}
			continue
		}

		def := f.inline
		if def == nil {
			var err error
			if def, err = v.resolve(table, f.id, f.path); err != nil {
				validationRuns.WithLabelValues("error").Inc()
				return nil, err
			}
		}
		out.Mappings++

		if violations := def.Check(f.node); len(violations) > 0 {
			findings := make([]Finding, len(violations))
			for i, vi := range violations {
				findings[i] = Finding{
					Path:    vi.Path,
					Schema:  def.ID,
					Code:    vi.Code,
					Message: vi.Message,
				}
			}
			failed = append(failed, Invalid(findings...).Annotate(f.path))
			continue
		}

		for i := len(f.node.Fields) - 1; i >= 0; i-- {
			field := f.node.Fields[i]
			rule, _ := def.Rule(field.Key)
			stack = append(stack, frame{
				node:   field.Value,
				id:     field.Key,
				inline: inlineFor(rule, field.Value),
				path:   f.path.Child(field.Key),
				depth:  f.depth + 1,
			})
		}
	}

	out.Result = out.Result.Merge(failed...)
	out.Schemas = len(table)
	out.Duration = time.Since(start)
	validationRuns.WithLabelValues(string(out.Result.Status())).Inc()
	validationFindings.Add(float64(len(out.Result.Findings)))
	slog.Debug("validation complete",
		"schema", id,
		"status", out.Result.Status(),
		"findings", len(out.Result.Findings),
		"mappings", out.Mappings,
		"schemas", out.Schemas,
		"duration", out.Duration)
	return out, nil
}

func (v *Validator) resolve(table map[string]*schema.Definition, id string, path document.Path) (*schema.Definition, error) {
	if def, ok := table[id]; ok {
		return def, nil
	}
	def, err := v.store.Resolve(id)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeSchemaLoad,
			fmt.Sprintf("cannot resolve schema %q", id), err,
			map[string]any{"schema": id, "path": path.String()})
	}
	table[id] = def
	return def, nil
}

// inlineFor picks the inline definition a field's rule supplies for its
// value, if any.
func inlineFor(rule *schema.Rule, value *document.Node) *schema.Definition {
	if rule == nil || value == nil {
		return nil
	}
	switch value.Kind {
	case document.KindMapping:
		return rule.Schema
	case document.KindSequence:
		if rule.Items != nil {
			return rule.Items.Schema
		}
	}
	return nil
}
