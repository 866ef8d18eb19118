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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"
	"syscall"

	"github.com/NVIDIA/irule-builder/pkg/document"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/k8s/client"
)

// SourceKind tells where a loaded document came from.
type SourceKind string

const (
	SourceFile      SourceKind = "file"
	SourceLiteral   SourceKind = "literal"
	SourceHTTP      SourceKind = "http"
	SourceConfigMap SourceKind = "configmap"
)

// DocumentFormat is the syntax an input document is parsed with.
type DocumentFormat string

const (
	// DocumentYAML also covers JSON, which is a subset of YAML.
	DocumentYAML DocumentFormat = "yaml"
	DocumentTOML DocumentFormat = "toml"
)

// DocumentFormatFromName picks TOML for names ending in .toml and YAML
// for everything else.
func DocumentFormatFromName(name string) DocumentFormat {
	if strings.EqualFold(path.Ext(name), ".toml") {
		return DocumentTOML
	}
	return DocumentYAML
}

// Source describes a loaded input.
type Source struct {
	// Ref is the reference as given.
	Ref string

	Kind   SourceKind
	Format DocumentFormat

	// Path is the local file path, when Kind is SourceFile.
	Path string
}

// Loader resolves input references into documents.
type Loader struct {
	http     *HttpReader
	cm       *ConfigMapReader
	readFile func(string) ([]byte, error)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHttpReader sets the reader used for http(s) references.
func WithHttpReader(r *HttpReader) LoaderOption {
	return func(l *Loader) {
		l.http = r
	}
}

// WithKubeClient enables cm://namespace/name references.
func WithKubeClient(get client.Getter) LoaderOption {
	return func(l *Loader) {
		l.cm = NewConfigMapReader(get)
	}
}

// NewLoader returns a Loader. Without WithKubeClient, ConfigMap references
// fail with an input read error.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{readFile: os.ReadFile}
	for _, opt := range opts {
		opt(l)
	}
	if l.http == nil {
		l.http = NewHttpReader()
	}
	if l.cm == nil {
		l.cm = NewConfigMapReader(nil)
	}
	return l
}

// Load reads and parses the document behind ref.
//
// http(s):// and cm:// references are fetched remotely. Anything else is
// first treated as a file path; when no such file exists the reference
// itself is parsed as document text. A file that exists but cannot be
// read fails with ErrCodeInputRead; text that does not parse fails with
// ErrCodeInputParse.
func (l *Loader) Load(ctx context.Context, ref string) (*document.Node, *Source, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "input reference is empty")
	}

	data, src, err := l.read(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	var n *document.Node
	switch src.Format {
	case DocumentTOML:
		n, err = document.ParseTOML(data)
	default:
		n, err = document.ParseYAML(data)
	}
	if err != nil {
		return nil, nil, apperrors.WrapWithContext(apperrors.ErrCodeInputParse,
			"input is not a well-formed document", err,
			map[string]any{"source": string(src.Kind), "format": string(src.Format)})
	}

	slog.Debug("document loaded",
		"source", src.Kind,
		"format", src.Format,
		"kind", n.Kind,
		"entries", n.Len())
	return n, src, nil
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, *Source, error) {
	switch {
	case strings.HasPrefix(ref, HTTPScheme), strings.HasPrefix(ref, HTTPSScheme):
		data, err := l.http.ReadWithContext(ctx, ref)
		if err != nil {
			return nil, nil, apperrors.WrapWithContext(apperrors.ErrCodeInputRead,
				"failed to fetch input", err, map[string]any{"url": ref})
		}
		name := ref
		if u, perr := url.Parse(ref); perr == nil {
			name = u.Path
		}
		return data, &Source{Ref: ref, Kind: SourceHTTP, Format: DocumentFormatFromName(name)}, nil

	case strings.HasPrefix(ref, ConfigMapURIScheme):
		data, key, err := l.cm.Read(ctx, ref)
		if err != nil {
			return nil, nil, err
		}
		return data, &Source{Ref: ref, Kind: SourceConfigMap, Format: DocumentFormatFromName(key)}, nil
	}

	data, err := l.readFile(ref)
	if err == nil {
		return data, &Source{Ref: ref, Kind: SourceFile, Format: DocumentFormatFromName(ref), Path: ref}, nil
	}
	if !isAbsent(err) {
		return nil, nil, apperrors.WrapWithContext(apperrors.ErrCodeInputRead,
			"input file exists but could not be read", err, map[string]any{"path": ref})
	}

	slog.Warn(fmt.Sprintf("%s: no file at input reference, parsing it as document text", apperrors.InfoLiteralFallback),
		"code", apperrors.InfoLiteralFallback)
	return []byte(ref), &Source{Ref: ref, Kind: SourceLiteral, Format: DocumentYAML}, nil
}

// isAbsent reports whether a read error means "no such file" rather than
// "file present but unreadable". Text that cannot be a path at all (too
// long, or with a non-directory component) counts as absent.
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENAMETOOLONG) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.EINVAL)
}
