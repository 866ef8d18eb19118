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
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/NVIDIA/irule-builder/pkg/defaults"
	"github.com/NVIDIA/irule-builder/pkg/document"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/header"
	"github.com/NVIDIA/irule-builder/pkg/k8s/client"
	"github.com/NVIDIA/irule-builder/pkg/render"
	"github.com/NVIDIA/irule-builder/pkg/schema"
	"github.com/NVIDIA/irule-builder/pkg/serializer"
	"github.com/NVIDIA/irule-builder/pkg/validator"
)

// Builder runs the load, validate, render and emit pipeline.
//
// A Builder holds no per-run state and may be used from several
// goroutines, provided its store and renderer allow it (the directory
// store and the renderer both do).
type Builder struct {
	loader       *serializer.Loader
	store        schema.Store
	renderer     *render.Renderer
	rootSchema   string
	templateName string
	maxDepth     int
	version      string
	kube         client.Getter
	plainHTTP    bool
	insecureTLS  bool
	echo         io.Writer
	stdout       io.Writer
}

// Option is a functional option for configuring Builder instances.
type Option func(*Builder)

// WithLoader sets the input loader.
func WithLoader(l *serializer.Loader) Option {
	return func(b *Builder) {
		b.loader = l
	}
}

// WithStore sets the schema store.
func WithStore(s schema.Store) Option {
	return func(b *Builder) {
		b.store = s
	}
}

// WithRenderer sets the template renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(b *Builder) {
		b.renderer = r
	}
}

// WithRootSchema sets the identifier the document root is validated with.
func WithRootSchema(id string) Option {
	return func(b *Builder) {
		if id != "" {
			b.rootSchema = id
		}
	}
}

// WithTemplate sets the template rendered for valid documents.
func WithTemplate(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.templateName = name
		}
	}
}

// WithMaxDepth bounds document nesting during validation and skeleton
// generation.
func WithMaxDepth(depth int) Option {
	return func(b *Builder) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}

// WithVersion stamps reports and artifacts with the tool version.
func WithVersion(version string) Option {
	return func(b *Builder) {
		b.version = version
	}
}

// WithKubeClient enables cm:// destinations.
func WithKubeClient(get client.Getter) Option {
	return func(b *Builder) {
		b.kube = get
	}
}

// WithRegistry configures the connection used for oci:// destinations.
func WithRegistry(plainHTTP, insecureTLS bool) Option {
	return func(b *Builder) {
		b.plainHTTP = plainHTTP
		b.insecureTLS = insecureTLS
	}
}

// WithEcho makes every loaded document echo to w as indented JSON before
// validation. Nil disables the echo.
func WithEcho(w io.Writer) Option {
	return func(b *Builder) {
		b.echo = w
	}
}

// WithStdout sets where output goes when no destination is given.
func WithStdout(w io.Writer) Option {
	return func(b *Builder) {
		if w != nil {
			b.stdout = w
		}
	}
}

// New creates a Builder reading schemas and templates from the default
// directories.
func New(opts ...Option) *Builder {
	b := &Builder{
		rootSchema:   defaults.RootSchemaID,
		templateName: defaults.TemplateName,
		maxDepth:     defaults.MaxDepth,
		stdout:       os.Stdout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.loader == nil {
		b.loader = serializer.NewLoader(serializer.WithKubeClient(b.kube))
	}
	if b.store == nil {
		b.store = schema.NewDirStore(defaults.SchemaDir)
	}
	if b.renderer == nil {
		b.renderer = render.New(defaults.TemplateDir)
	}
	return b
}

// BuildResult describes one completed pipeline run.
type BuildResult struct {
	header.Header `json:",inline" yaml:",inline"`

	RunID       string `json:"runID" yaml:"runID"`
	Source      string `json:"source" yaml:"source"`
	SourceKind  string `json:"sourceKind" yaml:"sourceKind"`
	Template    string `json:"template" yaml:"template"`
	Destination string `json:"destination" yaml:"destination"`

	// Bytes is the size of the rendered artifact.
	Bytes int `json:"bytes" yaml:"bytes"`

	// Digest is set for OCI destinations.
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`

	Validation validator.Summary `json:"validation" yaml:"validation"`
	Duration   time.Duration     `json:"duration" yaml:"duration"`
}

// Build loads input, validates it against the root schema, renders the
// template and writes the result to dest ("" for stdout).
//
// An invalid document returns the result together with an
// ErrCodeValidation error carrying every finding; nothing is rendered or
// written. Fatal errors return no result.
func (b *Builder) Build(ctx context.Context, input, dest string) (*BuildResult, error) {
	start := time.Now()
	res, err := b.build(ctx, input, dest)
	recordBuild(err, time.Since(start))
	if res != nil {
		res.Duration = time.Since(start)
	}
	return res, err
}

func (b *Builder) build(ctx context.Context, input, dest string) (*BuildResult, error) {
	out, src, doc, err := b.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	report := validator.NewReport(out, input, b.version)
	res := &BuildResult{
		RunID:       report.RunID,
		Source:      input,
		SourceKind:  string(src.Kind),
		Template:    b.templateName,
		Destination: destinationName(dest),
		Validation:  report.Summary,
	}
	res.Init(header.KindBuildResult, b.version)
	res.Set("runID", res.RunID)

	if !out.Result.IsValid() {
		slog.Debug("document failed validation",
			"run_id", res.RunID,
			"findings", len(out.Result.Findings))
		return res, out.Result.Err()
	}

	rendered, err := b.renderer.Render(b.templateName, doc)
	if err != nil {
		return nil, err
	}

	location, err := b.Emit(ctx, dest, Artifact{Name: ArtifactName, Content: []byte(rendered)})
	if err != nil {
		return nil, err
	}
	res.Bytes = len(rendered)
	res.Digest = location.Digest

	slog.Debug("build complete",
		"run_id", res.RunID,
		"template", b.templateName,
		"destination", res.Destination,
		"bytes", res.Bytes)
	return res, nil
}

// Check loads input and validates it, returning a report whether or not
// the document is valid. Only fatal conditions return an error.
func (b *Builder) Check(ctx context.Context, input string) (*validator.Report, error) {
	out, _, _, err := b.validate(ctx, input)
	if err != nil {
		return nil, err
	}
	return validator.NewReport(out, input, b.version), nil
}

func (b *Builder) validate(ctx context.Context, input string) (*validator.Outcome, *serializer.Source, *document.Node, error) {
	doc, src, err := b.loader.Load(ctx, input)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := b.echoDocument(src, doc); err != nil {
		return nil, nil, nil, err
	}

	v := validator.New(b.store, validator.WithMaxDepth(b.maxDepth))
	out, err := v.Walk(ctx, doc, b.rootSchema)
	if err != nil {
		return nil, nil, nil, err
	}
	return out, src, doc, nil
}

func (b *Builder) echoDocument(src *serializer.Source, doc *document.Node) error {
	if b.echo == nil {
		return nil
	}
	data, err := json.MarshalIndent(doc.Interface(), "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeUnknown, "failed to encode document for display", err)
	}
	fmt.Fprintf(b.echo, "Valid %s Found!\n%s\n", strings.ToUpper(string(src.Format)), data)
	return nil
}

// Generate writes a skeleton document for the root schema to dest as YAML.
func (b *Builder) Generate(ctx context.Context, dest string) error {
	skeleton, err := schema.Skeleton(b.store, b.rootSchema, b.maxDepth)
	if err != nil {
		return err
	}
	data, err := document.MarshalYAML(skeleton)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeGenerate, "failed to encode skeleton document", err)
	}
	_, err = b.Emit(ctx, dest, Artifact{Name: SkeletonName, Content: data})
	return err
}

func destinationName(dest string) string {
	if strings.TrimSpace(dest) == "" {
		return "stdout"
	}
	return dest
}
