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
	"testing"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantReg  string
		wantRepo string
		wantTag  string
		wantErr  bool
	}{
		{
			name:     "with tag",
			input:    "oci://ghcr.io/nvidia/irules:v1.0.0",
			wantReg:  "ghcr.io",
			wantRepo: "nvidia/irules",
			wantTag:  "v1.0.0",
		},
		{
			name:     "without tag",
			input:    "oci://ghcr.io/nvidia/irules",
			wantReg:  "ghcr.io",
			wantRepo: "nvidia/irules",
		},
		{
			name:     "with port and tag",
			input:    "oci://localhost:5000/test/irule:v1",
			wantReg:  "localhost:5000",
			wantRepo: "test/irule",
			wantTag:  "v1",
		},
		{
			name:     "docker hub shorthand",
			input:    "oci://irule",
			wantReg:  "docker.io",
			wantRepo: "library/irule",
		},
		{
			name:    "missing scheme",
			input:   "ghcr.io/nvidia/irules:v1",
			wantErr: true,
		},
		{
			name:    "uppercase repository",
			input:   "oci://ghcr.io/NVIDIA/irules",
			wantErr: true,
		},
		{
			name:    "digest",
			input:   "oci://ghcr.io/nvidia/irules@sha256:" + "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "oci://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseReference(%q) expected error", tt.input)
				}
				if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidRequest {
					t.Errorf("code = %v, want %v", apperrors.CodeOf(err), apperrors.ErrCodeInvalidRequest)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReference(%q) error = %v", tt.input, err)
			}
			if got.Registry != tt.wantReg {
				t.Errorf("Registry = %q, want %q", got.Registry, tt.wantReg)
			}
			if got.Repository != tt.wantRepo {
				t.Errorf("Repository = %q, want %q", got.Repository, tt.wantRepo)
			}
			if got.Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", got.Tag, tt.wantTag)
			}
		})
	}
}

func TestReference_String(t *testing.T) {
	r := &Reference{Registry: "ghcr.io", Repository: "nvidia/irules"}
	if got := r.String(); got != "oci://ghcr.io/nvidia/irules" {
		t.Errorf("String() = %q", got)
	}
	if got := r.WithTag("v2").String(); got != "oci://ghcr.io/nvidia/irules:v2" {
		t.Errorf("String() = %q", got)
	}
	if got := r.WithTag("v2").ImageReference(); got != "ghcr.io/nvidia/irules:v2" {
		t.Errorf("ImageReference() = %q", got)
	}
}

func TestReference_WithTag(t *testing.T) {
	orig := &Reference{Registry: "ghcr.io", Repository: "nvidia/irules", Tag: "v1"}
	tagged := orig.WithTag("v2")

	if orig.Tag != "v1" {
		t.Errorf("original modified: Tag = %q", orig.Tag)
	}
	if tagged.Tag != "v2" || tagged.Registry != orig.Registry || tagged.Repository != orig.Repository {
		t.Errorf("WithTag() = %+v", tagged)
	}
}

func TestReference_OrDefaultTag(t *testing.T) {
	untagged := &Reference{Registry: "ghcr.io", Repository: "nvidia/irules"}
	if got := untagged.OrDefaultTag().Tag; got != DefaultTag {
		t.Errorf("Tag = %q, want %q", got, DefaultTag)
	}
	if untagged.Tag != "" {
		t.Error("original modified")
	}
	tagged := untagged.WithTag("v1")
	if tagged.OrDefaultTag() != tagged {
		t.Error("tagged reference should be returned as-is")
	}
}
