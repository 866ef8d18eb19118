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

// Package document defines the in-memory tree every input document and
// generated skeleton is represented as.
//
// A Node is a Scalar (string, integer, float, boolean or null), a Sequence
// of Nodes, or a Mapping of uniquely keyed Nodes that keeps the order the
// keys were written in. Order matters: validation findings and generated
// skeletons follow document order.
//
// Trees come from ParseYAML (YAML and JSON text), ParseTOML, or FromValue
// for already-decoded Go values. They are read-only once built; the
// validator and renderer only read them.
//
//	root, err := document.ParseYAML([]byte("service:\n  port: 80\n"))
//	port, _ := root.Get("service")
//	fmt.Println(port.TypeName()) // dict
package document
