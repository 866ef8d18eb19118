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

// Package serializer moves documents and reports in and out of the builder.
//
// # Input
//
// Loader resolves an input reference into a document.Node:
//
//   - http:// and https:// URLs are fetched with HttpReader
//   - cm://namespace/name references read a ConfigMap entry
//   - anything else is read as a local file path
//
// When no file exists at the reference, the reference itself is parsed as
// document text and an I2000 message is logged. A file that exists but cannot
// be read is an E1002 error. Text that does not parse is an E1001 error.
// Files and keys ending in .toml are parsed as TOML, everything else as YAML
// (which also accepts JSON).
//
//	loader := serializer.NewLoader(serializer.WithKubeClient(client.Lazy("")))
//	doc, src, err := loader.Load(ctx, "input.yaml")
//
// # Output
//
// Reports are encoded as JSON, YAML or a table:
//
//	w, err := serializer.NewReportWriter(serializer.FormatYAML, "report.yaml", os.Stdout, nil)
//	if err != nil {
//	    return err
//	}
//	if err := w.Serialize(ctx, report); err != nil {
//	    return err
//	}
//
// An empty destination writes to stdout. Local files are replaced
// atomically via WriteFileAtomic, so a failed write never leaves a partial
// file. A cm://namespace/name destination is written with server-side apply.
//
// Types implementing TableRenderer control their own table layout; other
// values are flattened into FIELD/VALUE rows.
package serializer
