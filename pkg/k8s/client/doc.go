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

// Package client builds the Kubernetes client used to read input documents
// from, and write rendered artifacts to, ConfigMaps (cm://namespace/name).
//
// The client is created lazily: Lazy returns a Getter that only connects
// when a ConfigMap reference is actually used, and then reuses the same
// client for the rest of the run.
//
//	get := client.Lazy(kubeconfig)
//	cs, err := get()
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//
// # Kubeconfig Resolution
//
// ResolveKubeconfig picks, in order: the explicit --kubeconfig path, the
// KUBECONFIG environment variable, and ~/.kube/config when it exists.
// With none of these, in-cluster service account credentials are used.
//
// Tests inject a fake clientset with Static:
//
//	get := client.Static(fake.NewSimpleClientset())
package client
