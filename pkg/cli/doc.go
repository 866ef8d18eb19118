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

// Package cli implements the irule command-line interface.
//
// # Overview
//
// irule turns a nested configuration document into a rendered F5 iRule. The
// document is validated recursively: the root against the "irule" schema and
// every mapping value against the schema named after its key. Only a fully
// valid document is rendered.
//
// # Commands
//
// build - Validate and render:
//
//	irule build input.yaml [--output irule.tcl] [--template irule.tmpl] [--watch]
//
// Renders to stdout unless --output names a file, a ConfigMap
// (cm://namespace/name) or an OCI reference (oci://registry/repo:tag).
// With --watch the document is rebuilt whenever the input, schema directory
// or template directory changes; --metrics-addr serves Prometheus metrics
// and build status while watching.
//
// validate - Report findings without rendering:
//
//	irule validate input.yaml [--format yaml|json|table] [--fail-on-error]
//
// generate - Write a skeleton document for the root schema:
//
//	irule generate [--output input.yaml]
//
// schema lint - Parse every schema resource:
//
//	irule schema lint [--schema-dir schema] [--fail-on-error]
//
// # Global Flags
//
//	--verbose, -v     Repeat for more detail (-v, -vv)
//	--log-level       debug, info, warn, error (default: warn)
//	--log-format      json, text (default: text)
//	--schema-dir      Schema directory (default: schema)
//	--template-dir    Template directory (default: templates)
//	--root-schema     Root schema identifier (default: irule)
//	--max-depth       Maximum nesting depth (default: 64)
//	--kubeconfig, -k  Kubeconfig for cm:// inputs and outputs
//	--http-timeout    Timeout for http:// and https:// inputs (default: 30s)
//	--http-max-bytes  Largest remote input accepted
//	--insecure-tls    Skip TLS verification for https:// inputs and oci:// outputs
//
// Every flag can also be set through an IRULE_* environment variable.
//
// # Diagnostics
//
// A failing run prints one line prefixed with a stable code (E1001 to E9999)
// and exits with status 1. At -v the underlying cause and context are
// appended; at -vv logging switches to debug.
package cli
