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

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/NVIDIA/irule-builder/pkg/defaults"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/header"
	"github.com/NVIDIA/irule-builder/pkg/k8s/client"
)

// FieldManager identifies this tool in server-side apply.
const FieldManager = "irule-builder"

// ConfigMapWriter writes reports or rendered artifacts to a Kubernetes
// ConfigMap using server-side apply, so the ConfigMap is created or
// updated in one call.
type ConfigMapWriter struct {
	client    client.Getter
	namespace string
	name      string
	format    Format
}

// NewConfigMapWriter creates a new ConfigMapWriter that writes to the specified
// namespace and ConfigMap name in the given format.
func NewConfigMapWriter(get client.Getter, namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &ConfigMapWriter{
		client:    get,
		namespace: namespace,
		name:      name,
		format:    format,
	}
}

// Serialize writes a report under the key report.{json|yaml|txt}.
// Values carrying a header contribute their kind and version as labels.
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	content, err := Marshal(w.format, v)
	if err != nil {
		return err
	}

	component := "report"
	version := "unknown"
	if h, ok := v.(interface {
		GetKind() header.Kind
		GetMetadata() map[string]string
	}); ok {
		component = strings.ToLower(h.GetKind().String())
		if ver, exists := h.GetMetadata()["version"]; exists && ver != "" {
			version = ver
		}
	}

	return w.apply(ctx, "report."+w.format.Extension(), content, map[string]string{
		"app.kubernetes.io/component": component,
		"app.kubernetes.io/version":   version,
	})
}

// WriteData stores content under key, alongside a timestamp entry.
func (w *ConfigMapWriter) WriteData(ctx context.Context, key string, content []byte) error {
	return w.apply(ctx, key, content, map[string]string{
		"app.kubernetes.io/component": "artifact",
	})
}

func (w *ConfigMapWriter) apply(ctx context.Context, key string, content []byte, labels map[string]string) error {
	errCtx := map[string]any{"namespace": w.namespace, "name": w.name, "key": key}

	// Create context with timeout for Kubernetes API operations
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	if w.client == nil {
		return apperrors.NewWithContext(apperrors.ErrCodeOutputWrite, "kubernetes client not configured", errCtx)
	}
	cs, err := w.client()
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite, "failed to get kubernetes client", err, errCtx)
	}

	allLabels := map[string]string{"app.kubernetes.io/name": "irule-builder"}
	for k, v := range labels {
		allLabels[k] = v
	}

	configMap := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(allLabels).
		WithData(map[string]string{
			key:         string(content),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})

	slog.Info("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"key", key)

	// Force allows taking ownership from previous field managers.
	_, err = cs.CoreV1().ConfigMaps(w.namespace).Apply(
		writeCtx,
		configMap,
		metav1.ApplyOptions{
			FieldManager: FieldManager,
			Force:        true,
		},
	)
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite, "failed to apply ConfigMap", err, errCtx)
	}
	return nil
}

// ConfigMapReader fetches input documents from ConfigMaps.
type ConfigMapReader struct {
	client client.Getter
}

// NewConfigMapReader returns a reader using get for API access.
func NewConfigMapReader(get client.Getter) *ConfigMapReader {
	return &ConfigMapReader{client: get}
}

// documentKeys are probed in order when a ConfigMap holds several entries.
var documentKeys = []string{"irule.yaml", "irule.yml", "irule.json", "irule.toml", "document.yaml", "document.json"}

// Read returns the document stored in the ConfigMap at uri and the data
// key it came from. A ConfigMap with one data entry yields that entry;
// otherwise the first of the conventional keys is used, then the first
// key with a document extension in sorted order.
func (r *ConfigMapReader) Read(ctx context.Context, uri string) ([]byte, string, error) {
	namespace, name, err := ParseConfigMapURI(uri)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid ConfigMap reference", err)
	}
	errCtx := map[string]any{"namespace": namespace, "name": name}

	if r.client == nil {
		return nil, "", apperrors.NewWithContext(apperrors.ErrCodeInputRead, "kubernetes client not configured", errCtx)
	}
	cs, err := r.client()
	if err != nil {
		return nil, "", apperrors.WrapWithContext(apperrors.ErrCodeInputRead, "failed to get kubernetes client", err, errCtx)
	}

	readCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	cm, err := cs.CoreV1().ConfigMaps(namespace).Get(readCtx, name, metav1.GetOptions{})
	if err != nil {
		return nil, "", apperrors.WrapWithContext(apperrors.ErrCodeInputRead,
			fmt.Sprintf("failed to get ConfigMap %s/%s", namespace, name), err, errCtx)
	}

	key, ok := pickDocumentKey(cm.Data)
	if !ok {
		return nil, "", apperrors.NewWithContext(apperrors.ErrCodeInputRead,
			fmt.Sprintf("ConfigMap %s/%s has no document data", namespace, name), errCtx)
	}

	slog.Debug("reading from ConfigMap",
		"namespace", namespace,
		"name", name,
		"key", key)
	return []byte(cm.Data[key]), key, nil
}

func pickDocumentKey(data map[string]string) (string, bool) {
	if len(data) == 1 {
		for k := range data {
			return k, true
		}
	}
	for _, k := range documentKeys {
		if _, ok := data[k]; ok {
			return k, true
		}
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch path.Ext(k) {
		case ".yaml", ".yml", ".json", ".toml":
			return k, true
		}
	}
	return "", false
}

// ParseConfigMapURI parses a ConfigMap URI in the format cm://namespace/name
// and returns the namespace and name components.
// Returns an error if the URI is malformed.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	rest := strings.TrimPrefix(uri, ConfigMapURIScheme)

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])

	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}
	if strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot contain '/'")
	}

	return namespace, name, nil
}
