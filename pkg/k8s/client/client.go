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

package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface is the Kubernetes API surface used for ConfigMap documents.
type Interface = kubernetes.Interface

// Getter returns a Kubernetes client on demand. Commands that never touch
// a cm:// reference never build one.
type Getter func() (Interface, error)

// Lazy returns a Getter that builds a client from kubeconfig on first use
// and returns the same client (or error) afterwards.
func Lazy(kubeconfig string) Getter {
	get := sync.OnceValues(func() (Interface, error) {
		c, _, err := BuildKubeClient(kubeconfig)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	return Getter(get)
}

// Static returns a Getter for an existing client, typically a fake in tests.
func Static(c Interface) Getter {
	return func() (Interface, error) {
		if c == nil {
			return nil, fmt.Errorf("kubernetes client not configured")
		}
		return c, nil
	}
}

// ResolveKubeconfig returns the kubeconfig path to use: the explicit path,
// then $KUBECONFIG, then ~/.kube/config when it exists. An empty result
// means in-cluster configuration.
func ResolveKubeconfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// BuildKubeClient creates a clientset from kubeconfig, resolved with
// ResolveKubeconfig.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	var config *rest.Config
	var err error

	kubeconfig = ResolveKubeconfig(kubeconfig)

	// Use InClusterConfig directly when no kubeconfig is available
	// This avoids the warning: "Neither --kubeconfig nor --master was specified"
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return client, config, nil
}
