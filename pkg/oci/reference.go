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
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

// URIScheme marks an output destination as an OCI registry reference.
const URIScheme = "oci://"

// DefaultTag is applied when a reference carries no tag.
const DefaultTag = "latest"

// Reference is a parsed oci:// destination.
type Reference struct {
	// Registry is the registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the repository path (e.g., "nvidia/irules").
	Repository string
	// Tag is the artifact tag. Empty when the reference had none.
	Tag string
}

// IsReference reports whether target uses the oci:// scheme.
func IsReference(target string) bool {
	return strings.HasPrefix(target, URIScheme)
}

// ParseReference parses oci://registry/repository[:tag]. Digest references
// are rejected since a push needs a tag to land on.
func ParseReference(target string) (*Reference, error) {
	if !IsReference(target) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("OCI reference must start with %s", URIScheme),
			map[string]any{"reference": target})
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}
	if _, ok := ref.(reference.Digested); ok {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"OCI reference must use a tag, not a digest",
			map[string]any{"reference": target})
	}

	r := &Reference{
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		r.Tag = tagged.Tag()
	}
	return r, nil
}

// String returns the reference with its oci:// scheme.
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// ImageReference returns registry/repository[:tag] without a scheme.
func (r *Reference) ImageReference() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy of the reference with tag set.
func (r *Reference) WithTag(tag string) *Reference {
	c := *r
	c.Tag = tag
	return &c
}

// OrDefaultTag returns r, or a copy tagged DefaultTag when r has no tag.
func (r *Reference) OrDefaultTag() *Reference {
	if r.Tag != "" {
		return r
	}
	return r.WithTag(DefaultTag)
}
