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
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/irule-builder/pkg/document"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/k8s/client"
)

func portOf(t *testing.T, n *document.Node) any {
	t.Helper()
	svc, ok := n.Get("service")
	if !ok {
		t.Fatalf("document has no service key: %v", n.Keys())
	}
	port, ok := svc.Get("port")
	if !ok {
		t.Fatal("service has no port key")
	}
	return port.Value
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "input.yaml")
	tomlPath := filepath.Join(dir, "input.toml")
	badPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(yamlPath, []byte("service:\n  port: 80\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tomlPath, []byte("[service]\nport = 80\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(badPath, []byte("service: [80\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		ref        string
		wantKind   SourceKind
		wantFormat DocumentFormat
		wantCode   apperrors.ErrorCode
	}{
		{name: "yaml file", ref: yamlPath, wantKind: SourceFile, wantFormat: DocumentYAML},
		{name: "toml file", ref: tomlPath, wantKind: SourceFile, wantFormat: DocumentTOML},
		{name: "literal text", ref: "service:\n  port: 80\n", wantKind: SourceLiteral, wantFormat: DocumentYAML},
		{name: "literal json", ref: `{"service": {"port": 80}}`, wantKind: SourceLiteral, wantFormat: DocumentYAML},
		{name: "directory is unreadable", ref: dir, wantCode: apperrors.ErrCodeInputRead},
		{name: "malformed file", ref: badPath, wantCode: apperrors.ErrCodeInputParse},
		{name: "malformed literal", ref: "service: [80", wantCode: apperrors.ErrCodeInputParse},
		{name: "empty reference", ref: " ", wantCode: apperrors.ErrCodeInvalidRequest},
	}

	l := NewLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, src, err := l.Load(context.Background(), tt.ref)
			if tt.wantCode != "" {
				if apperrors.CodeOf(err) != tt.wantCode {
					t.Errorf("code = %v, want %v (err %v)", apperrors.CodeOf(err), tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if src.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", src.Kind, tt.wantKind)
			}
			if src.Format != tt.wantFormat {
				t.Errorf("Format = %v, want %v", src.Format, tt.wantFormat)
			}
			if got := portOf(t, n); got != int64(80) {
				t.Errorf("port = %#v, want 80", got)
			}
		})
	}
}

func TestLoader_LiteralFallbackWarns(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	_, src, err := NewLoader().Load(context.Background(), "service: {port: 80}")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if src.Kind != SourceLiteral {
		t.Errorf("Kind = %v, want %v", src.Kind, SourceLiteral)
	}
	if !strings.Contains(buf.String(), apperrors.InfoLiteralFallback+":") {
		t.Errorf("warn-level log missing %s notice: %q", apperrors.InfoLiteralFallback, buf.String())
	}
}

func TestLoader_LoadHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/input.toml":
			_, _ = w.Write([]byte("[service]\nport = 80\n"))
		case "/input.yaml":
			_, _ = w.Write([]byte("service:\n  port: 80\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	l := NewLoader(WithHttpReader(NewHttpReader(WithUserAgent("irule/test"))))

	for _, name := range []string{"/input.toml", "/input.yaml?rev=2"} {
		n, src, err := l.Load(context.Background(), server.URL+name)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", name, err)
		}
		if src.Kind != SourceHTTP {
			t.Errorf("Kind = %v", src.Kind)
		}
		if got := portOf(t, n); got != int64(80) {
			t.Errorf("port = %#v, want 80", got)
		}
	}

	_, _, err := l.Load(context.Background(), server.URL+"/missing.yaml")
	if apperrors.CodeOf(err) != apperrors.ErrCodeInputRead {
		t.Errorf("code = %v, want %v", apperrors.CodeOf(err), apperrors.ErrCodeInputRead)
	}
}

func TestLoader_LoadConfigMap(t *testing.T) {
	cs := fake.NewClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "input", Namespace: "f5"},
		Data:       map[string]string{"irule.toml": "[service]\nport = 80\n"},
	})

	l := NewLoader(WithKubeClient(client.Static(cs)))
	n, src, err := l.Load(context.Background(), "cm://f5/input")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if src.Kind != SourceConfigMap || src.Format != DocumentTOML {
		t.Errorf("source = %+v", src)
	}
	if got := portOf(t, n); got != int64(80) {
		t.Errorf("port = %#v, want 80", got)
	}

	// Without a kube client the reference cannot be resolved.
	_, _, err = NewLoader().Load(context.Background(), "cm://f5/input")
	if apperrors.CodeOf(err) != apperrors.ErrCodeInputRead {
		t.Errorf("code = %v, want %v (err %v)", apperrors.CodeOf(err), apperrors.ErrCodeInputRead, err)
	}
}

func TestDocumentFormatFromName(t *testing.T) {
	if DocumentFormatFromName("a/b/irule.TOML") != DocumentTOML {
		t.Error("expected TOML")
	}
	for _, name := range []string{"irule.yaml", "irule.json", "irule", ""} {
		if DocumentFormatFromName(name) != DocumentYAML {
			t.Errorf("%q: expected YAML", name)
		}
	}
}
