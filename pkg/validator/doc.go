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

// Package validator checks document trees against per-key schemas.
//
// # Overview
//
// The root of a document is checked against the "irule" schema. Every
// mapping below it is checked against the schema named after the key it
// sits under, so the shape of the data alone selects the schema:
//
//	service:          <- checked with schema "service"
//	  port: 80
//	pools:            <- each element checked with schema "pools"
//	  - name: web
//
// Scalars and empty containers pass on their own; they are constrained by
// the rules of the mapping that contains them. Sequence elements share
// the schema of the sequence. A mapping that fails its own check is not
// descended into.
//
// # Findings and errors
//
// Structural mismatches never stop the walk. They are collected into a
// Result in document order, each with a path such as "pools[1].name":
//
//	v := validator.New(schema.NewDirStore("schema"))
//	res, err := v.Validate(ctx, root, "irule")
//	if err != nil {
//	    // E1300 schema resolution, E1401 too deeply nested
//	}
//	if err := res.Err(); err != nil {
//	    // E1400 with every finding in the message
//	}
//
// A schema that cannot be resolved aborts the walk. The walk uses an
// explicit stack with a depth limit (64 by default, see WithMaxDepth), so
// hostile input fails with E1401 instead of exhausting the goroutine stack.
//
// Definitions are resolved at most once per identifier within a walk.
// Validation is read-only and repeatable: the same document and store
// always yield the same Result.
//
// # Reports
//
// NewReport wraps a walk Outcome into a serializable Report with a header,
// run ID and summary for the validate command.
package validator
