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

package render

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"text/template"
	"time"

	"github.com/NVIDIA/irule-builder/pkg/document"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

// ErrTemplateNotFound is returned when a template name does not resolve in
// the template root.
var ErrTemplateNotFound = errors.New("template not found")

// PartialExt marks templates that are parsed alongside the requested one
// so it can include them with {{ template "name.tmpl" . }}.
const PartialExt = ".tmpl"

// Renderer executes named templates from a template root against a
// document.
type Renderer struct {
	fsys   fs.FS
	name   string
	funcs  template.FuncMap
	strict bool
}

// Option is a functional option for configuring Renderer instances.
type Option func(*Renderer)

// WithFuncs adds template functions, overriding built-ins of the same name.
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Renderer) {
		for k, v := range funcs {
			r.funcs[k] = v
		}
	}
}

// WithStrict controls whether referencing a missing key fails the render.
// Strict is the default.
func WithStrict(strict bool) Option {
	return func(r *Renderer) {
		r.strict = strict
	}
}

// New returns a Renderer reading templates from dir.
func New(dir string, opts ...Option) *Renderer {
	return NewFS(os.DirFS(dir), dir, opts...)
}

// NewFS returns a Renderer reading templates from fsys. name is used in
// messages.
func NewFS(fsys fs.FS, name string, opts ...Option) *Renderer {
	r := &Renderer{
		fsys:   fsys,
		name:   name,
		funcs:  FuncMap(),
		strict: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render executes the named template with the document as data and
// returns the output followed by a newline. Mappings are exposed as maps,
// so {{ .service.port }} reads the port of the service mapping.
func (r *Renderer) Render(name string, doc *document.Node) (string, error) {
	start := time.Now()
	defer func() {
		renderDuration.Observe(time.Since(start).Seconds())
	}()

	ctx := map[string]any{"template": name, "dir": r.name}
	tmpl, err := r.load(name)
	if err != nil {
		renderErrors.Inc()
		if errors.Is(err, ErrTemplateNotFound) {
			return "", apperrors.WrapWithContext(apperrors.ErrCodeTemplateNotFound,
				fmt.Sprintf("template %q not found", name), err, ctx)
		}
		return "", apperrors.WrapWithContext(apperrors.ErrCodeTemplateRender,
			fmt.Sprintf("failed to load template %q", name), err, ctx)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, doc.Interface()); err != nil {
		renderErrors.Inc()
		return "", apperrors.WrapWithContext(apperrors.ErrCodeTemplateRender,
			fmt.Sprintf("failed to render template %q", name), err, ctx)
	}
	buf.WriteByte('\n')

	slog.Debug("template rendered", "template", name, "bytes", buf.Len())
	return buf.String(), nil
}

// load parses the named template plus every other *.tmpl file in the
// root as a partial.
func (r *Renderer) load(name string) (*template.Template, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: invalid name %q", ErrTemplateNotFound, name)
	}
	content, err := fs.ReadFile(r.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path.Join(r.name, name))
	}
	if err != nil {
		return nil, err
	}

	tmpl := template.New(name).Funcs(r.funcs)
	if r.strict {
		tmpl = tmpl.Option("missingkey=error")
	}
	if _, err := tmpl.Parse(string(content)); err != nil {
		return nil, err
	}

	partials, err := fs.Glob(r.fsys, "*"+PartialExt)
	if err != nil {
		return nil, err
	}
	for _, p := range partials {
		if p == name {
			continue
		}
		data, err := fs.ReadFile(r.fsys, p)
		if err != nil {
			return nil, err
		}
		if _, err := tmpl.New(p).Parse(string(data)); err != nil {
			return nil, err
		}
	}
	return tmpl, nil
}

func validName(name string) bool {
	return name != "" && !strings.Contains(name, "..") && fs.ValidPath(name)
}
