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

package builder

import (
	"context"
	"fmt"
	"strings"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/NVIDIA/irule-builder/pkg/defaults"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/oci"
	"github.com/NVIDIA/irule-builder/pkg/serializer"
)

const (
	// ArtifactName names the rendered iRule in ConfigMaps and OCI layers.
	ArtifactName = "irule.tcl"

	// SkeletonName names a generated skeleton document.
	SkeletonName = "irule.yaml"
)

// Artifact is a finished output, written in full or not at all.
type Artifact struct {
	Name    string
	Content []byte
}

// Location describes where an artifact was written.
type Location struct {
	Destination string
	Digest      string
}

// Emit writes a to dest:
//
//   - "" writes to the builder's stdout
//   - cm://namespace/name stores the artifact under a.Name in a ConfigMap
//   - oci://registry/repository[:tag] pushes a single-layer artifact
//   - anything else is a file path, replaced atomically
func (b *Builder) Emit(ctx context.Context, dest string, a Artifact) (*Location, error) {
	dest = strings.TrimSpace(dest)
	loc := &Location{Destination: destinationName(dest)}

	switch {
	case dest == "":
		if _, err := b.stdout.Write(a.Content); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeOutputWrite, "failed to write output", err)
		}

	case strings.HasPrefix(dest, serializer.ConfigMapURIScheme):
		namespace, name, err := serializer.ParseConfigMapURI(dest)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid output destination", err)
		}
		ctx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
		defer cancel()
		w := serializer.NewConfigMapWriter(b.kube, namespace, name, serializer.FormatYAML)
		if err := w.WriteData(ctx, a.Name, a.Content); err != nil {
			return nil, err
		}

	case oci.IsReference(dest):
		ref, err := oci.ParseReference(dest)
		if err != nil {
			return nil, err
		}
		annotations := map[string]string{}
		if b.version != "" {
			annotations[ociv1.AnnotationVersion] = b.version
		}
		res, err := oci.Push(ctx, oci.PushOptions{
			Reference:   ref,
			Content:     a.Content,
			FileName:    a.Name,
			Annotations: annotations,
			PlainHTTP:   b.plainHTTP,
			InsecureTLS: b.insecureTLS,
		})
		if err != nil {
			return nil, err
		}
		loc.Destination = fmt.Sprintf("%s%s", oci.URIScheme, res.Reference)
		loc.Digest = res.Digest

	default:
		if err := serializer.WriteFileAtomic(dest, a.Content, 0o644); err != nil {
			return nil, err
		}
	}

	return loc, nil
}
