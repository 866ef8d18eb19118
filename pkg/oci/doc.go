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

// Package oci publishes rendered iRules to OCI registries.
//
// An oci://registry/repository[:tag] output destination is parsed with
// ParseReference. Push packs the rendered text as a single-layer OCI 1.1
// artifact of type ArtifactType and copies it to the registry:
//
//	ref, err := oci.ParseReference("oci://ghcr.io/nvidia/irules:v1")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Push(ctx, oci.PushOptions{
//	    Reference: ref,
//	    Content:   []byte(rendered),
//	})
//
// References without a tag are pushed as DefaultTag. Setting
// PushOptions.Created pins the manifest creation time, so identical
// content yields an identical digest.
//
// Registry credentials come from the Docker configuration
// (~/.docker/config.json) through the ORAS credentials package. PlainHTTP
// and InsecureTLS cover local development registries.
package oci
