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

package oci

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

const testIRule = "when CLIENT_ACCEPTED {\n  if { [TCP::local_port] == 80 } { pool web }\n}\n"

func TestStripProtocol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://ghcr.io", "ghcr.io"},
		{"http://localhost:5000", "localhost:5000"},
		{"registry.example.com", "registry.example.com"},
		{"localhost:5000", "localhost:5000"},
	}

	for _, tt := range tests {
		if got := stripProtocol(tt.input); got != tt.expected {
			t.Errorf("stripProtocol(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPushTo_Validation(t *testing.T) {
	ref := &Reference{Registry: "localhost:5000", Repository: "irule"}

	tests := []struct {
		name string
		opts PushOptions
	}{
		{name: "nil reference", opts: PushOptions{Content: []byte(testIRule)}},
		{name: "empty content", opts: PushOptions{Reference: ref}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PushTo(context.Background(), memory.New(), tt.opts)
			if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidRequest {
				t.Errorf("code = %v, want %v (err %v)", apperrors.CodeOf(err), apperrors.ErrCodeInvalidRequest, err)
			}
		})
	}
}

func TestPush_NilReference(t *testing.T) {
	_, err := Push(context.Background(), PushOptions{Content: []byte(testIRule)})
	if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidRequest {
		t.Errorf("code = %v, want %v", apperrors.CodeOf(err), apperrors.ErrCodeInvalidRequest)
	}
}

func TestPushTo_ArtifactStructure(t *testing.T) {
	ctx := context.Background()
	dst := memory.New()

	res, err := PushTo(ctx, dst, PushOptions{
		Reference:   &Reference{Registry: "localhost:5000", Repository: "f5/irule"},
		Content:     []byte(testIRule),
		Annotations: map[string]string{ociv1.AnnotationVersion: "v1.2.3"},
	})
	if err != nil {
		t.Fatalf("PushTo() error = %v", err)
	}
	if res.Reference != "localhost:5000/f5/irule:latest" {
		t.Errorf("Reference = %q", res.Reference)
	}

	desc, err := dst.Resolve(ctx, DefaultTag)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if desc.Digest.String() != res.Digest {
		t.Errorf("digest = %s, want %s", desc.Digest, res.Digest)
	}

	raw, err := content.FetchAll(ctx, dst, desc)
	if err != nil {
		t.Fatalf("FetchAll(manifest) error = %v", err)
	}
	var manifest ociv1.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		t.Fatalf("Unmarshal(manifest) error = %v", err)
	}

	if manifest.ArtifactType != ArtifactType {
		t.Errorf("ArtifactType = %q", manifest.ArtifactType)
	}
	if manifest.Annotations[ociv1.AnnotationVersion] != "v1.2.3" {
		t.Errorf("annotations = %v", manifest.Annotations)
	}
	if manifest.Annotations[ociv1.AnnotationCreated] == "" {
		t.Error("created annotation missing")
	}
	if len(manifest.Layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(manifest.Layers))
	}

	layer := manifest.Layers[0]
	if layer.MediaType != LayerMediaType {
		t.Errorf("layer MediaType = %q", layer.MediaType)
	}
	if layer.Annotations[ociv1.AnnotationTitle] != DefaultFileName {
		t.Errorf("layer title = %q", layer.Annotations[ociv1.AnnotationTitle])
	}
	body, err := content.FetchAll(ctx, dst, layer)
	if err != nil {
		t.Fatalf("FetchAll(layer) error = %v", err)
	}
	if string(body) != testIRule {
		t.Errorf("layer content = %q", body)
	}
}

func TestPushTo_Reproducible(t *testing.T) {
	opts := PushOptions{
		Reference: &Reference{Registry: "localhost:5000", Repository: "f5/irule", Tag: "v1"},
		Content:   []byte(testIRule),
		FileName:  "web.tcl",
		Created:   "2025-01-01T00:00:00Z",
	}

	first, err := PushTo(context.Background(), memory.New(), opts)
	if err != nil {
		t.Fatalf("PushTo() error = %v", err)
	}
	second, err := PushTo(context.Background(), memory.New(), opts)
	if err != nil {
		t.Fatalf("PushTo() error = %v", err)
	}
	if first.Digest != second.Digest {
		t.Errorf("digests differ: %s vs %s", first.Digest, second.Digest)
	}
}
