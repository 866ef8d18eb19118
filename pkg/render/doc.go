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

// Package render turns a validated document into the final artifact by
// executing a text/template from the template root.
//
// Templates see the document as plain maps and lists, so a mapping key is
// read with a field-style reference:
//
//	when CLIENT_ACCEPTED {
//	    if { [TCP::local_port] == {{ .service.port }} } {
//	        pool {{ .service.pool | quote }}
//	    }
//	}
//
// Every other *.tmpl file in the root is available as a partial through
// {{ template "name.tmpl" . }}. Helper functions are listed on FuncMap.
//
// Rendering is strict by default: a reference to a missing key fails with
// E1102 instead of printing "<no value>". An unknown template name fails
// with E1101 and wraps ErrTemplateNotFound. The output is the rendered
// text plus a trailing newline, and the same document and template always
// render the same bytes.
package render
