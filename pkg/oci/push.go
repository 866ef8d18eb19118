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
	"crypto/tls"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/NVIDIA/irule-builder/pkg/defaults"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

const (
	// ArtifactType identifies rendered iRule artifacts in a registry.
	ArtifactType = "application/vnd.nvidia.irule.artifact"

	// LayerMediaType is the media type of the single artifact layer.
	LayerMediaType = "application/vnd.nvidia.irule.layer.v1+tcl"

	// DefaultFileName titles the layer when PushOptions.FileName is empty.
	DefaultFileName = "irule.tcl"
)

// PushOptions configures an artifact push.
type PushOptions struct {
	// Reference is the destination. A missing tag becomes DefaultTag.
	Reference *Reference
	// Content is the artifact body.
	Content []byte
	// FileName is recorded as the layer title annotation.
	FileName string
	// Annotations are added to the manifest.
	Annotations map[string]string
	// Created pins org.opencontainers.image.created for reproducible
	// manifests. When empty the push time is used.
	Created string
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// PushResult describes a pushed artifact.
type PushResult struct {
	// Digest is the manifest digest.
	Digest string
	// Reference is registry/repository:tag.
	Reference string
}

// Push packs opts.Content as a single-layer artifact and copies it to the
// registry named by opts.Reference, using Docker credentials when present.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if opts.Reference == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.OCIPushTimeout)
	defer cancel()

	registryHost := stripProtocol(opts.Reference.Registry)
	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", registryHost, opts.Reference.Repository))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	return PushTo(ctx, repo, opts)
}

// PushTo packs the artifact in memory and copies it into dst under the
// reference tag.
func PushTo(ctx context.Context, dst oras.Target, opts PushOptions) (*PushResult, error) {
	if opts.Reference == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	if len(opts.Content) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "refusing to push an empty artifact")
	}
	ref := opts.Reference.OrDefaultTag()
	errCtx := map[string]any{"reference": ref.String()}

	store := memory.New()
	manifestDesc, err := pack(ctx, store, ref.Tag, opts)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite, "failed to pack OCI artifact", err, errCtx)
	}

	slog.Debug("pushing OCI artifact",
		"reference", ref.ImageReference(),
		"digest", manifestDesc.Digest.String(),
		"bytes", len(opts.Content))

	desc, err := oras.Copy(ctx, store, ref.Tag, dst, ref.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeOutputWrite, "failed to push artifact to registry", err, errCtx)
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: ref.ImageReference(),
	}, nil
}

// pack stores the layer and an OCI 1.1 manifest in store and tags it.
func pack(ctx context.Context, store *memory.Store, tag string, opts PushOptions) (ociv1.Descriptor, error) {
	name := opts.FileName
	if name == "" {
		name = DefaultFileName
	}

	layerDesc, err := oras.PushBytes(ctx, store, LayerMediaType, opts.Content)
	if err != nil {
		return ociv1.Descriptor{}, fmt.Errorf("failed to store layer: %w", err)
	}
	layerDesc.Annotations = map[string]string{ociv1.AnnotationTitle: name}

	annotations := make(map[string]string, len(opts.Annotations)+1)
	maps.Copy(annotations, opts.Annotations)
	if opts.Created != "" {
		annotations[ociv1.AnnotationCreated] = opts.Created
	}

	manifestDesc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layerDesc},
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return ociv1.Descriptor{}, fmt.Errorf("failed to pack manifest: %w", err)
	}

	if err := store.Tag(ctx, manifestDesc, tag); err != nil {
		return ociv1.Descriptor{}, fmt.Errorf("failed to tag manifest in local store: %w", err)
	}
	return manifestDesc, nil
}

func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return registry
}

func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credentials unavailable, pushing anonymously", "error", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
