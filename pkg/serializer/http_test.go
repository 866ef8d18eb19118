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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewHttpReader_Defaults(t *testing.T) {
	r := NewHttpReader()

	if r.UserAgent != HttpReaderUserAgent {
		t.Errorf("UserAgent = %q, want %q", r.UserAgent, HttpReaderUserAgent)
	}
	if r.TotalTimeout != HttpReaderDefaultTimeout {
		t.Errorf("TotalTimeout = %v, want %v", r.TotalTimeout, HttpReaderDefaultTimeout)
	}
	if r.MaxBytes != HttpReaderDefaultMaxBytes {
		t.Errorf("MaxBytes = %d, want %d", r.MaxBytes, HttpReaderDefaultMaxBytes)
	}
	if r.Client == nil {
		t.Fatal("Client is nil")
	}
	if r.Client.Timeout != HttpReaderDefaultTimeout {
		t.Errorf("Client.Timeout = %v, want %v", r.Client.Timeout, HttpReaderDefaultTimeout)
	}
}

func TestNewHttpReader_Options(t *testing.T) {
	r := NewHttpReader(
		WithUserAgent("custom/2.0"),
		WithTotalTimeout(5*time.Second),
		WithMaxBytes(64),
		WithInsecureSkipVerify(true),
	)

	if r.UserAgent != "custom/2.0" {
		t.Errorf("UserAgent = %q", r.UserAgent)
	}
	if r.MaxBytes != 64 {
		t.Errorf("MaxBytes = %d", r.MaxBytes)
	}
	if !r.InsecureSkipVerify {
		t.Error("InsecureSkipVerify not set")
	}
	if r.Client.Timeout != 5*time.Second {
		t.Errorf("Client.Timeout = %v", r.Client.Timeout)
	}
	tr, ok := r.Client.Transport.(*http.Transport)
	if !ok || tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Error("transport does not skip TLS verification")
	}
}

func TestNewHttpReader_EmptyUserAgentFallsBack(t *testing.T) {
	r := NewHttpReader(WithUserAgent(""))
	if r.UserAgent != HttpReaderUserAgent {
		t.Errorf("UserAgent = %q, want %q", r.UserAgent, HttpReaderUserAgent)
	}
}

func TestHttpReader_ReadWithContext(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/irule.yaml":
			_, _ = w.Write([]byte("service:\n  port: 80\n"))
		case "/large.yaml":
			_, _ = w.Write([]byte(strings.Repeat("a", 128)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	r := NewHttpReader(WithMaxBytes(100))

	t.Run("success", func(t *testing.T) {
		data, err := r.ReadWithContext(context.Background(), server.URL+"/irule.yaml")
		if err != nil {
			t.Fatalf("ReadWithContext() error = %v", err)
		}
		if string(data) != "service:\n  port: 80\n" {
			t.Errorf("data = %q", data)
		}
		if gotAgent != HttpReaderUserAgent {
			t.Errorf("User-Agent = %q", gotAgent)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := r.ReadWithContext(context.Background(), server.URL+"/missing"); err == nil {
			t.Error("expected error for 404")
		}
	})

	t.Run("too large", func(t *testing.T) {
		_, err := r.ReadWithContext(context.Background(), server.URL+"/large.yaml")
		if err == nil || !strings.Contains(err.Error(), "exceeds 100 bytes") {
			t.Errorf("error = %v, want size error", err)
		}
	})

	t.Run("empty url", func(t *testing.T) {
		if _, err := r.ReadWithContext(context.Background(), ""); err == nil {
			t.Error("expected error for empty url")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := r.ReadWithContext(ctx, server.URL+"/irule.yaml"); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}
