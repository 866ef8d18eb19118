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

// Package builder turns input documents into rendered iRules.
//
// A build runs four steps and stops at the first one that fails:
//
//  1. load the input reference (file, literal text, URL or ConfigMap)
//  2. validate the document against the root schema, recursing into every
//     mapping by key name
//  3. render the template with the document as data
//  4. emit the result to stdout, a file, a ConfigMap or an OCI registry
//
// Nothing is rendered for an invalid document, and nothing is written
// unless rendering succeeded. File output is replaced atomically.
//
//	b := builder.New(
//	    builder.WithStore(schema.NewDirStore("schema")),
//	    builder.WithRenderer(render.New("templates")),
//	)
//	res, err := b.Build(ctx, "input.yaml", "irule.tcl")
//
// Check validates without rendering and returns a report. Generate writes a
// skeleton document for the root schema. Watch rebuilds when the input,
// schema or template files change.
package builder
