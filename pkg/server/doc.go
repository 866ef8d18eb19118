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

// Package server exposes build status and prometheus metrics while
// `irule build --watch` runs.
//
// Endpoints:
//
//	GET /health   liveness, always 200
//	GET /ready    200 once the first build has finished, 503 before
//	GET /status   outcome of the most recent build as JSON
//	GET /metrics  prometheus metrics (validation, render, schema cache, builds)
//
// The watch loop reports each run through RecordBuild.
package server
