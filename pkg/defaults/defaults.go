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

package defaults

import "time"

// Conventional locations and names used by the build pipeline.
const (
	// RootSchemaID is the schema identifier applied to the document root.
	RootSchemaID = "irule"

	// SchemaDir is the directory holding one schema resource per identifier.
	SchemaDir = "schema"

	// TemplateDir is the template root.
	TemplateDir = "templates"

	// TemplateName is the template requested for the final rendering.
	TemplateName = "irule.tmpl"

	// MaxDepth bounds how deeply a document may nest before validation
	// fails with a too-deeply-nested error.
	MaxDepth = 64
)

// HTTP client timeouts for remote input documents.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// Kubernetes and registry timeouts.
const (
	// ConfigMapReadTimeout is the timeout for reading input ConfigMaps.
	ConfigMapReadTimeout = 15 * time.Second

	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second

	// OCIPushTimeout bounds pushing a rendered artifact to a registry.
	OCIPushTimeout = 2 * time.Minute
)

// Watch mode.
const (
	// WatchDebounceInterval is how long file events are coalesced before a rebuild.
	WatchDebounceInterval = 200 * time.Millisecond

	// WatchMinRebuildInterval is the minimum spacing between two rebuilds.
	WatchMinRebuildInterval = 1 * time.Second

	// MetricsShutdownTimeout is the grace period for the metrics listener.
	MetricsShutdownTimeout = 5 * time.Second

	// MetricsReadHeaderTimeout prevents slow header attacks on the metrics listener.
	MetricsReadHeaderTimeout = 5 * time.Second
)
