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
	"strconv"
	"strings"
)

// PathElem is one step of a Path: a mapping key or a sequence index.
type PathElem struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path locates a node from the document root.
type Path []PathElem

// Child returns a copy of p extended with a mapping key.
func (p Path) Child(key string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, PathElem{Key: key})
}

// At returns a copy of p extended with a sequence index.
func (p Path) At(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, PathElem{Index: i, IsIndex: true})
}

// Join returns p followed by rel.
func (p Path) Join(rel Path) Path {
	out := make(Path, 0, len(p)+len(rel))
	out = append(out, p...)
	return append(out, rel...)
}

// String renders the path as dotted keys with bracketed indexes, for
// example "pools[1].members[0].port". Keys that would be ambiguous are
// quoted in brackets. The root path renders as the empty string.
func (p Path) String() string {
	var b strings.Builder
	for i, e := range p {
		if e.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(e.Index))
			b.WriteByte(']')
			continue
		}
		if e.Key == "" || strings.ContainsAny(e.Key, ".[]\"") {
			b.WriteString("[")
			b.WriteString(strconv.Quote(e.Key))
			b.WriteString("]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(e.Key)
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler so paths serialize as
// their string form in JSON and YAML reports.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
