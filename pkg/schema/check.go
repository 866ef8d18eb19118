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
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/NVIDIA/irule-builder/pkg/document"
)

// Violation codes.
const (
	CodeRequired  = "required"
	CodeUnknown   = "unknown"
	CodeType      = "type"
	CodeNullable  = "nullable"
	CodeAllowed   = "allowed"
	CodeMin       = "min"
	CodeMax       = "max"
	CodeMinLength = "minlength"
	CodeMaxLength = "maxlength"
	CodeRegex     = "regex"
)

// Violation is a single field-level mismatch found by Check. Path is
// relative to the mapping that was checked.
type Violation struct {
	Path    document.Path
	Code    string
	Message string
}

// Check applies the definition to a mapping as a flat structural check.
// Present fields are checked in document order, then missing required
// fields in declaration order. Nested mappings are not descended into;
// that is the walker's job. A non-mapping node yields no violations.
func (d *Definition) Check(n *document.Node) []Violation {
	if n == nil || n.Kind != document.KindMapping {
		return nil
	}

	var out []Violation
	for _, f := range n.Fields {
		path := document.Path{}.Child(f.Key)
		r, ok := d.rules[f.Key]
		if !ok {
			if !d.AllowUnknown {
				out = append(out, Violation{Path: path, Code: CodeUnknown, Message: "unknown field"})
			}
			continue
		}
		out = append(out, r.check(f.Value, path)...)
	}

	for _, name := range d.names {
		if !d.rules[name].Required {
			continue
		}
		if _, ok := n.Get(name); !ok {
			out = append(out, Violation{
				Path:    document.Path{}.Child(name),
				Code:    CodeRequired,
				Message: "required field",
			})
		}
	}
	return out
}

func (r *Rule) check(n *document.Node, path document.Path) []Violation {
	typeName := n.TypeName()
	if typeName == document.TypeNull {
		if r.Nullable {
			return nil
		}
		return []Violation{{Path: path, Code: CodeNullable, Message: "null value not allowed"}}
	}

	if !r.Accepts(typeName) {
		return []Violation{{Path: path, Code: CodeType, Message: fmt.Sprintf("must be of %s type", strings.Join(r.Types, " or "))}}
	}

	var out []Violation
	add := func(code, format string, args ...any) {
		out = append(out, Violation{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if len(r.Allowed) > 0 {
		switch n.Kind {
		case document.KindScalar:
			if !r.allows(n.Value) {
				add(CodeAllowed, "unallowed value %v", n.Value)
			}
		case document.KindSequence:
			var bad []string
			for _, it := range n.Items {
				if it.Kind != document.KindScalar || !r.allows(it.Value) {
					bad = append(bad, fmt.Sprint(it.Interface()))
				}
			}
			if len(bad) > 0 {
				add(CodeAllowed, "unallowed values %s", strings.Join(bad, ", "))
			}
		}
	}

	if v, ok := numeric(n.Value); ok && n.Kind == document.KindScalar {
		if r.Min != nil && v < *r.Min {
			add(CodeMin, "min value is %v", *r.Min)
		}
		if r.Max != nil && v > *r.Max {
			add(CodeMax, "max value is %v", *r.Max)
		}
	}

	if size, ok := length(n); ok {
		if r.MinLength != nil && size < *r.MinLength {
			add(CodeMinLength, "min length is %d", *r.MinLength)
		}
		if r.MaxLength != nil && size > *r.MaxLength {
			add(CodeMaxLength, "max length is %d", *r.MaxLength)
		}
	}

	if r.Regex != nil {
		if s, ok := n.Value.(string); ok && !r.Regex.MatchString(s) {
			add(CodeRegex, "value does not match regex '%s'", r.Pattern)
		}
	}

	if r.Items != nil && n.Kind == document.KindSequence {
		for i, it := range n.Items {
			out = append(out, r.Items.check(it, path.At(i))...)
		}
	}
	return out
}

func (r *Rule) allows(v any) bool {
	for _, a := range r.Allowed {
		if scalarEqual(a, v) {
			return true
		}
	}
	return false
}

// scalarEqual compares scalars, treating integers and floats numerically.
func scalarEqual(a, b any) bool {
	fa, okA := numeric(a)
	fb, okB := numeric(b)
	if okA && okB {
		return fa == fb
	}
	return a == b
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func length(n *document.Node) (int, bool) {
	switch n.Kind {
	case document.KindSequence, document.KindMapping:
		return n.Len(), true
	}
	if s, ok := n.Value.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	return 0, false
}
