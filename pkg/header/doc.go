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

// Package header provides the common Kubernetes-style header embedded in
// every report emitted by irule (validation reports, schema lint reports,
// build results).
//
//	var r validator.Report
//	r.Init(header.KindValidationReport, version)
//
// Init stamps the API version, a UTC timestamp and the tool version into
// the metadata map.
package header
