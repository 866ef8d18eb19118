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

// Package schema loads and applies the per-key schema definitions that
// drive document validation.
//
// # Resources
//
// A schema directory holds one resource per identifier, named <id>.json,
// <id>.yaml or <id>.yml; the first existing one wins in that order. The
// document root uses the "irule" identifier and every mapping below it is
// validated with the schema named after its key.
//
// A resource maps field names to rules:
//
//	{
//	  "port":    {"type": "integer", "min": 1, "max": 65535},
//	  "enabled": {"type": "boolean"},
//	  "mode":    {"type": "string", "allowed": ["tcp", "udp"]},
//	  "note":    {"type": "string", "required": false},
//	  "pools":   {"type": "list", "schema": {"type": "dict"}},
//	  "$allow_unknown": false
//	}
//
// Every field is required unless the rule says "required": false, and
// unknown fields are rejected unless "$allow_unknown" is true. Supported
// rules are type, required, nullable, allowed, min, max, minlength,
// maxlength, regex and schema. For list fields "schema" constrains each
// item; for dict fields it is an inline definition used instead of the
// key-named resource.
//
// # Stores
//
// DirStore reads a directory and caches parsed definitions until
// Invalidate is called. MapStore serves definitions built in code.
// Resolution failures wrap ErrSchemaNotFound or ErrSchemaMalformed in a
// StructuredError with code E1300.
//
//	store := schema.NewDirStore("schema")
//	def, err := store.Resolve("irule")
//	if errors.Is(err, schema.ErrSchemaNotFound) {
//	    ...
//	}
//	violations := def.Check(node)
//
// Lint parses every resource concurrently and Skeleton produces a
// placeholder document from a schema for authors to fill in.
package schema
