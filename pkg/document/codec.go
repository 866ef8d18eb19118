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

package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	mergeTag = "!!merge"

	// maxNodes bounds alias expansion while converting a YAML tree.
	maxNodes = 1 << 20
)

var (
	// ErrDuplicateKey is returned when a mapping repeats a key.
	ErrDuplicateKey = errors.New("duplicate mapping key")
	// ErrNonScalarKey is returned when a mapping key is a sequence or mapping.
	ErrNonScalarKey = errors.New("mapping key must be a scalar")
	// ErrTooManyNodes is returned when alias expansion exceeds maxNodes.
	ErrTooManyNodes = errors.New("document expands to too many nodes")
)

// ParseYAML parses YAML (or JSON, which is a subset) text into a Node.
// Only the first document of a stream is read. Empty input yields a null
// scalar.
func ParseYAML(data []byte) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if root.Kind == 0 {
		return Null(), nil
	}
	return FromYAML(&root)
}

// FromYAML converts a yaml.v3 node tree. Aliases are expanded and merge
// keys (<<) are applied; explicit keys win over merged ones.
func FromYAML(n *yaml.Node) (*Node, error) {
	c := &yamlConverter{}
	return c.convert(n)
}

type yamlConverter struct {
	count int
}

func (c *yamlConverter) convert(n *yaml.Node) (*Node, error) {
	if n == nil {
		return Null(), nil
	}
	c.count++
	if c.count > maxNodes {
		return nil, ErrTooManyNodes
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return c.convert(n.Content[0])

	case yaml.AliasNode:
		return c.convert(n.Alias)

	case yaml.SequenceNode:
		out := &Node{Kind: KindSequence, Items: make([]*Node, 0, len(n.Content)), Line: n.Line, Column: n.Column}
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, v)
		}
		return out, nil

	case yaml.MappingNode:
		return c.mapping(n)

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if ts, ok := v.(time.Time); ok {
			v = ts.Format(time.RFC3339Nano)
		}
		out := Scalar(v)
		out.Line, out.Column = n.Line, n.Column
		return out, nil

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func (c *yamlConverter) mapping(n *yaml.Node) (*Node, error) {
	out := &Node{Kind: KindMapping, Fields: make([]Field, 0, len(n.Content)/2), Line: n.Line, Column: n.Column}
	seen := make(map[string]bool, len(n.Content)/2)
	var merged []Field

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.AliasNode {
			k = k.Alias
		}

		if k.Kind == yaml.ScalarNode && k.Value == "<<" && (k.Tag == "" || k.Tag == mergeTag) {
			fields, err := c.mergeSources(v)
			if err != nil {
				return nil, err
			}
			merged = append(merged, fields...)
			continue
		}

		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %w", k.Line, ErrNonScalarKey)
		}
		if seen[k.Value] {
			return nil, fmt.Errorf("line %d: %w %q", k.Line, ErrDuplicateKey, k.Value)
		}
		seen[k.Value] = true

		val, err := c.convert(v)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, Field{Key: k.Value, Value: val})
	}

	for _, f := range merged {
		if seen[f.Key] {
			continue
		}
		seen[f.Key] = true
		out.Fields = append(out.Fields, f)
	}
	return out, nil
}

// mergeSources resolves the value of a << key: one mapping or a sequence
// of mappings, earlier mappings taking precedence.
func (c *yamlConverter) mergeSources(v *yaml.Node) ([]Field, error) {
	if v.Kind == yaml.AliasNode {
		v = v.Alias
	}
	var sources []*yaml.Node
	switch v.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{v}
	case yaml.SequenceNode:
		for _, s := range v.Content {
			if s.Kind == yaml.AliasNode {
				s = s.Alias
			}
			sources = append(sources, s)
		}
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping or sequence of mappings", v.Line)
	}

	var fields []Field
	seen := make(map[string]bool)
	for _, s := range sources {
		if s.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: merge value must be a mapping or sequence of mappings", s.Line)
		}
		m, err := c.mapping(s)
		if err != nil {
			return nil, err
		}
		for _, f := range m.Fields {
			if !seen[f.Key] {
				seen[f.Key] = true
				fields = append(fields, f)
			}
		}
	}
	return fields, nil
}

// ParseTOML parses TOML text into a Node, preserving key order as written.
func ParseTOML(data []byte) (*Node, error) {
	var m map[string]any
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	order := make(map[string]int)
	for i, k := range md.Keys() {
		order[strings.Join(k, "\x00")] = i
	}
	return fromValue(m, nil, order)
}

// fromValue converts decoded TOML values into a Node. Map keys follow
// order when it knows them and are sorted otherwise.
func fromValue(v any, path []string, order map[string]int) (*Node, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sortKeys(keys, path, order)

		out := &Node{Kind: KindMapping, Fields: make([]Field, 0, len(keys))}
		for _, k := range keys {
			child, err := fromValue(t[k], append(path[:len(path):len(path)], k), order)
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, Field{Key: k, Value: child})
		}
		return out, nil

	case []map[string]any:
		out := &Node{Kind: KindSequence, Items: make([]*Node, 0, len(t))}
		for _, item := range t {
			child, err := fromValue(item, path, order)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, child)
		}
		return out, nil

	case []any:
		out := &Node{Kind: KindSequence, Items: make([]*Node, 0, len(t))}
		for _, item := range t {
			child, err := fromValue(item, path, order)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, child)
		}
		return out, nil

	case time.Time:
		return Scalar(t.Format(time.RFC3339Nano)), nil

	default:
		return Scalar(v), nil
	}
}

// sortKeys orders keys by their position in the source when known, then
// alphabetically.
func sortKeys(keys []string, path []string, order map[string]int) {
	pos := func(k string) (int, bool) {
		if order == nil {
			return 0, false
		}
		p, ok := order[strings.Join(append(path[:len(path):len(path)], k), "\x00")]
		return p, ok
	}
	sort.SliceStable(keys, func(i, j int) bool {
		pi, oki := pos(keys[i])
		pj, okj := pos(keys[j])
		switch {
		case oki && okj:
			return pi < pj
		case oki != okj:
			return oki
		default:
			return keys[i] < keys[j]
		}
	})
}

// ToYAML converts a Node into a yaml.v3 node tree that preserves mapping
// order when encoded.
func ToYAML(n *Node) *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch n.Kind {
	case KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range n.Items {
			out.Content = append(out.Content, ToYAML(it))
		}
		return out
	case KindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range n.Fields {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
				ToYAML(f.Value))
		}
		return out
	default:
		out := &yaml.Node{}
		if err := out.Encode(n.Value); err != nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(n.Value)}
		}
		return out
	}
}

// MarshalYAML encodes the tree as YAML text, preserving mapping order.
func MarshalYAML(n *Node) ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(ToYAML(n)); err != nil {
		return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	return []byte(b.String()), nil
}
