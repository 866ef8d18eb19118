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
	"fmt"
)

// Kind is the shape of a Node.
type Kind int

const (
	// KindScalar is a string, integer, float, boolean or null leaf.
	KindScalar Kind = iota
	// KindSequence is an ordered list of nodes.
	KindSequence
	// KindMapping is an ordered set of uniquely keyed nodes.
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type names reported by Node.TypeName. They match the names used in
// schema resources.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeString  = "string"
	TypeList    = "list"
	TypeDict    = "dict"
)

// Field is one key/value entry of a mapping.
type Field struct {
	Key   string
	Value *Node
}

// Node is one element of a loaded document. Scalar values are normalized
// to nil, bool, int64, float64 or string. A Node is never mutated once the
// loader returns it.
type Node struct {
	Kind   Kind
	Value  any
	Items  []*Node
	Fields []Field

	// Line and Column locate the node in its source, when known.
	Line   int
	Column int
}

// Scalar returns a scalar node. Integer and float values of any Go width
// are normalized.
func Scalar(v any) *Node {
	return &Node{Kind: KindScalar, Value: normalizeScalar(v)}
}

// Null returns a null scalar.
func Null() *Node {
	return &Node{Kind: KindScalar}
}

// Sequence returns a sequence node holding items.
func Sequence(items ...*Node) *Node {
	return &Node{Kind: KindSequence, Items: items}
}

// Mapping returns a mapping node holding fields in order. Later duplicate
// keys replace earlier ones in place.
func Mapping(fields ...Field) *Node {
	n := &Node{Kind: KindMapping}
	for _, f := range fields {
		n.set(f.Key, f.Value)
	}
	return n
}

// F is shorthand for a Field, used when building mappings by hand.
func F(key string, value *Node) Field {
	return Field{Key: key, Value: value}
}

func (n *Node) set(key string, value *Node) {
	for i := range n.Fields {
		if n.Fields[i].Key == key {
			n.Fields[i].Value = value
			return
		}
	}
	n.Fields = append(n.Fields, Field{Key: key, Value: value})
}

// Len returns the number of items or fields; scalars have length zero.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case KindSequence:
		return len(n.Items)
	case KindMapping:
		return len(n.Fields)
	default:
		return 0
	}
}

// IsContainer reports whether n is a sequence or mapping.
func (n *Node) IsContainer() bool {
	return n != nil && (n.Kind == KindSequence || n.Kind == KindMapping)
}

// Get returns the value stored under key in a mapping.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMapping {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the mapping keys in document order.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	keys := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		keys[i] = f.Key
	}
	return keys
}

// TypeName returns the schema type name of the node.
func (n *Node) TypeName() string {
	if n == nil {
		return TypeNull
	}
	switch n.Kind {
	case KindSequence:
		return TypeList
	case KindMapping:
		return TypeDict
	}
	switch n.Value.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case int64:
		return TypeInteger
	case float64:
		return TypeFloat
	default:
		return TypeString
	}
}

// Interface converts the node into plain Go values: map[string]any,
// []any and scalars. Mapping order is lost; use it for template data and
// JSON encoding only.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindSequence:
		out := make([]any, len(n.Items))
		for i, it := range n.Items {
			out[i] = it.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(n.Fields))
		for _, f := range n.Fields {
			out[f.Key] = f.Value.Interface()
		}
		return out
	default:
		return n.Value
	}
}

// Equal reports whether two trees hold the same values in the same order.
// Source positions are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindSequence:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Key != b.Fields[i].Key || !Equal(a.Fields[i].Value, b.Fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return a.Value == b.Value
	}
}

func normalizeScalar(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return uintToScalar(uint64(t))
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return uintToScalar(t)
	case float32:
		return float64(t)
	case nil, bool, int64, float64, string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func uintToScalar(u uint64) any {
	if u > 1<<63-1 {
		return float64(u)
	}
	return int64(u)
}
