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
	"errors"
	"fmt"

	"github.com/NVIDIA/irule-builder/pkg/document"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

// Skeleton builds a document an author can fill in: every declared field
// of the id schema with a placeholder value for its type. Dict and list
// fields expand through inline schemas or key-named resources where they
// exist. Expansion stops at maxDepth and on recursive schemas.
func Skeleton(store Store, id string, maxDepth int) (*document.Node, error) {
	def, err := store.Resolve(id)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeGenerate,
			"failed to generate skeleton", err, map[string]any{"schema": id})
	}
	g := &skeletonGen{store: store, maxDepth: maxDepth, active: map[string]bool{id: true}}
	n, err := g.mapping(def, 0)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeGenerate,
			"failed to generate skeleton", err, map[string]any{"schema": id})
	}
	return n, nil
}

type skeletonGen struct {
	store    Store
	maxDepth int
	active   map[string]bool
}

func (g *skeletonGen) mapping(def *Definition, depth int) (*document.Node, error) {
	out := document.Mapping()
	if depth >= g.maxDepth {
		return out, nil
	}
	for _, name := range def.names {
		v, err := g.value(name, def.rules[name], depth+1)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out.Fields = append(out.Fields, document.F(name, v))
	}
	return out, nil
}

func (g *skeletonGen) value(name string, r *Rule, depth int) (*document.Node, error) {
	primary := ""
	if len(r.Types) > 0 {
		primary = r.Types[0]
	}

	switch primary {
	case TypeDict:
		if r.Schema != nil {
			return g.mapping(r.Schema, depth)
		}
		return g.named(name, depth)
	case TypeList:
		if r.Items != nil {
			item, err := g.value(name, r.Items, depth+1)
			if err != nil {
				return nil, err
			}
			return document.Sequence(item), nil
		}
		item, err := g.named(name, depth+1)
		if err != nil {
			return nil, err
		}
		if item.Len() == 0 {
			return document.Sequence(), nil
		}
		return document.Sequence(item), nil
	}

	if len(r.Allowed) > 0 {
		return document.Scalar(r.Allowed[0]), nil
	}
	switch primary {
	case TypeString:
		return document.Scalar(""), nil
	case TypeInteger:
		if r.Min != nil {
			return document.Scalar(int64(*r.Min)), nil
		}
		return document.Scalar(0), nil
	case TypeFloat, TypeNumber:
		if r.Min != nil {
			return document.Scalar(*r.Min), nil
		}
		return document.Scalar(0.0), nil
	case TypeBoolean:
		return document.Scalar(false), nil
	default:
		return document.Null(), nil
	}
}

// named expands a mapping through the key-named resource. A missing
// resource yields an empty mapping; a malformed one is an error.
func (g *skeletonGen) named(name string, depth int) (*document.Node, error) {
	if g.active[name] {
		return document.Mapping(), nil
	}
	def, err := g.store.Resolve(name)
	if errors.Is(err, ErrSchemaNotFound) {
		return document.Mapping(), nil
	}
	if err != nil {
		return nil, err
	}
	g.active[name] = true
	defer delete(g.active, name)
	return g.mapping(def, depth)
}
