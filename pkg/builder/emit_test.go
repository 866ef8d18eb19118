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
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/k8s/client"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, assert.AnError
}

func TestEmitStdout(t *testing.T) {
	var buf bytes.Buffer
	b := New(WithStdout(&buf))

	loc, err := b.Emit(context.Background(), "", Artifact{Name: ArtifactName, Content: []byte("x\n")})
	require.NoError(t, err)
	assert.Equal(t, "stdout", loc.Destination)
	assert.Equal(t, "x\n", buf.String())
}

func TestEmitStdoutFailure(t *testing.T) {
	b := New(WithStdout(failingWriter{}))
	_, err := b.Emit(context.Background(), "", Artifact{Name: ArtifactName, Content: []byte("x")})
	assert.Equal(t, apperrors.ErrCodeOutputWrite, apperrors.CodeOf(err))
}

func TestEmitConfigMapWithoutClient(t *testing.T) {
	_, err := New().Emit(context.Background(), "cm://ns/name", Artifact{Name: ArtifactName, Content: []byte("x")})
	assert.Equal(t, apperrors.ErrCodeOutputWrite, apperrors.CodeOf(err))
}

func TestEmitConfigMap(t *testing.T) {
	b := New(WithKubeClient(client.Static(fake.NewClientset())))
	loc, err := b.Emit(context.Background(), "cm://ns/name", Artifact{Name: SkeletonName, Content: []byte("a: 1\n")})
	require.NoError(t, err)
	assert.Equal(t, "cm://ns/name", loc.Destination)
	assert.Empty(t, loc.Digest)
}
