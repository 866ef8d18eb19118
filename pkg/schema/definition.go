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
	"regexp"
	"sort"
	"strings"

	"github.com/NVIDIA/irule-builder/pkg/document"
)

// Type names accepted in a rule's "type" entry, after alias resolution.
const (
	TypeString  = document.TypeString
	TypeInteger = document.TypeInteger
	TypeFloat   = document.TypeFloat
	TypeNumber  = "number"
	TypeBoolean = document.TypeBoolean
	TypeList    = document.TypeList
	TypeDict    = document.TypeDict
)

var typeAliases = map[string]string{
	"string":   TypeString,
	"str":      TypeString,
	"integer":  TypeInteger,
	"int":      TypeInteger,
	"float":    TypeFloat,
	"double":   TypeFloat,
	"number":   TypeNumber,
	"boolean":  TypeBoolean,
	"bool":     TypeBoolean,
	"list":     TypeList,
	"array":    TypeList,
	"sequence": TypeList,
	"dict":     TypeDict,
	"map":      TypeDict,
	"mapping":  TypeDict,
	"object":   TypeDict,
}

// Definition-level directives. They are prefixed with '$' so they cannot
// collide with field names.
const (
	directiveAllowUnknown = "$allow_unknown"
	directiveComment      = "$comment"
)

// Rule constrains a single field of a mapping.
type Rule struct {
	// Types lists the accepted type names. Empty accepts any type.
	Types []string

	// Required is true unless the resource sets "required: false".
	Required bool

	// Nullable permits an explicit null value.
	Nullable bool

	// Allowed restricts scalar values (or list items) to a fixed set.
	Allowed []any

	Min, Max             *float64
	MinLength, MaxLength *int

	// Pattern is the source of Regex, kept for messages.
	Pattern string
	Regex   *regexp.Regexp

	// Schema is an inline definition applied to a dict value in place of
	// the key-named resource.
	Schema *Definition

	// Items constrains every element of a list value.
	Items *Rule
}

// Definition is the parsed constraint set for one mapping shape.
type Definition struct {
	// ID is the schema identifier the definition was resolved for. Inline
	// definitions carry the owning field path.
	ID string

	// AllowUnknown accepts fields that have no rule. Definitions are closed
	// by default.
	AllowUnknown bool

	rules map[string]*Rule
	names []string
}

// Fields returns the declared field names in sorted order.
func (d *Definition) Fields() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Rule returns the rule for a field.
func (d *Definition) Rule(name string) (*Rule, bool) {
	r, ok := d.rules[name]
	return r, ok
}

// Len returns the number of declared fields.
func (d *Definition) Len() int {
	return len(d.names)
}

// Accepts reports whether a type name satisfies the rule's type entry.
func (r *Rule) Accepts(typeName string) bool {
	if len(r.Types) == 0 {
		return true
	}
	for _, t := range r.Types {
		switch {
		case t == typeName:
			return true
		case t == TypeNumber && (typeName == TypeInteger || typeName == TypeFloat):
			return true
		case t == TypeFloat && typeName == TypeInteger:
			return true
		}
	}
	return false
}

// Decode builds a definition from a decoded resource. raw maps field names
// to rule mappings; keys starting with '$' are directives.
func Decode(id string, raw map[string]any) (*Definition, error) {
	d := &Definition{ID: id, rules: make(map[string]*Rule, len(raw))}
	for key, v := range raw {
		if strings.HasPrefix(key, "$") {
			if err := d.directive(key, v); err != nil {
				return nil, err
			}
			continue
		}
		r, err := decodeRule(id+"."+key, v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		d.rules[key] = r
		d.names = append(d.names, key)
	}
	sort.Strings(d.names)
	return d, nil
}

func (d *Definition) directive(key string, v any) error {
	switch key {
	case directiveAllowUnknown:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%s must be a boolean, got %T", key, v)
		}
		d.AllowUnknown = b
		return nil
	case directiveComment:
		return nil
	default:
		return fmt.Errorf("unknown directive %q", key)
	}
}

func decodeRule(owner string, v any) (*Rule, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("rule must be a mapping, got %T", v)
	}

	r := &Rule{Required: true}
	var rawSchema any
	for key, val := range m {
		var err error
		switch key {
		case "type":
			r.Types, err = decodeTypes(val)
		case "required":
			r.Required, err = asBool(key, val)
		case "nullable":
			r.Nullable, err = asBool(key, val)
		case "allowed":
			list, ok := val.([]any)
			if !ok {
				return nil, fmt.Errorf("allowed must be a list, got %T", val)
			}
			r.Allowed = make([]any, len(list))
			for i, a := range list {
				r.Allowed[i] = document.Scalar(a).Value
			}
		case "min":
			r.Min, err = asFloat(key, val)
		case "max":
			r.Max, err = asFloat(key, val)
		case "minlength":
			r.MinLength, err = asInt(key, val)
		case "maxlength":
			r.MaxLength, err = asInt(key, val)
		case "regex":
			s, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("regex must be a string, got %T", val)
			}
			r.Pattern = s
			r.Regex, err = regexp.Compile("^(?:" + s + ")$")
		case "schema":
			rawSchema = val
		case "meta", "description":
		default:
			return nil, fmt.Errorf("unknown rule %q", key)
		}
		if err != nil {
			return nil, err
		}
	}

	if rawSchema != nil {
		if err := r.decodeNested(owner, rawSchema); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// decodeNested interprets "schema" as item rules for list fields and as an
// inline definition otherwise.
func (r *Rule) decodeNested(owner string, v any) error {
	m, ok := asMap(v)
	if !ok {
		return fmt.Errorf("schema must be a mapping, got %T", v)
	}
	if r.listOnly() {
		items, err := decodeRule(owner+"[]", m)
		if err != nil {
			return fmt.Errorf("schema: %w", err)
		}
		r.Items = items
		return nil
	}
	def, err := Decode(owner, m)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	r.Schema = def
	return nil
}

func (r *Rule) listOnly() bool {
	if len(r.Types) == 0 {
		return false
	}
	for _, t := range r.Types {
		if t != TypeList {
			return false
		}
	}
	return true
}

func decodeTypes(v any) ([]string, error) {
	var names []string
	switch t := v.(type) {
	case string:
		names = []string{t}
	case []any:
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("type list entries must be strings, got %T", e)
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("type must be a string or list, got %T", v)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		canonical, ok := typeAliases[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("unsupported type %q", n)
		}
		out = append(out, canonical)
	}
	return out, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	}
	return nil, false
}

func asBool(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean, got %T", key, v)
	}
	return b, nil
}

func asFloat(key string, v any) (*float64, error) {
	switch n := document.Scalar(v).Value.(type) {
	case int64:
		f := float64(n)
		return &f, nil
	case float64:
		return &n, nil
	}
	return nil, fmt.Errorf("%s must be a number, got %T", key, v)
}

func asInt(key string, v any) (*int, error) {
	switch n := document.Scalar(v).Value.(type) {
	case int64:
		if n < 0 {
			return nil, fmt.Errorf("%s must not be negative", key)
		}
		i := int(n)
		return &i, nil
	case float64:
		if n < 0 || n != float64(int(n)) {
			return nil, fmt.Errorf("%s must be a non-negative integer", key)
		}
		i := int(n)
		return &i, nil
	}
	return nil, fmt.Errorf("%s must be an integer, got %T", key, v)
}
