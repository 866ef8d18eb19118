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

package cli

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/irule-builder/pkg/builder"
	"github.com/NVIDIA/irule-builder/pkg/defaults"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/k8s/client"
	"github.com/NVIDIA/irule-builder/pkg/render"
	"github.com/NVIDIA/irule-builder/pkg/schema"
	"github.com/NVIDIA/irule-builder/pkg/serializer"
)

func schemaDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "schema-dir",
		Usage:   "Directory holding <id>.json, <id>.yaml or <id>.yml schema resources",
		Sources: cli.EnvVars("IRULE_SCHEMA_DIR"),
		Value:   defaults.SchemaDir,
	}
}

func templateDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "template-dir",
		Usage:   "Directory holding templates and their partials",
		Sources: cli.EnvVars("IRULE_TEMPLATE_DIR"),
		Value:   defaults.TemplateDir,
	}
}

func rootSchemaFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "root-schema",
		Usage:   "Schema identifier applied to the document root",
		Sources: cli.EnvVars("IRULE_ROOT_SCHEMA"),
		Value:   defaults.RootSchemaID,
	}
}

func maxDepthFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "max-depth",
		Usage:   "Maximum document nesting depth",
		Sources: cli.EnvVars("IRULE_MAX_DEPTH"),
		Value:   defaults.MaxDepth,
	}
}

func kubeconfigFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig for cm:// inputs and outputs (default: $KUBECONFIG, then ~/.kube/config, then in-cluster)",
		Sources: cli.EnvVars("IRULE_KUBECONFIG"),
	}
}

func httpTimeoutFlag() *cli.DurationFlag {
	return &cli.DurationFlag{
		Name:    "http-timeout",
		Usage:   "Total timeout for fetching http:// and https:// inputs",
		Sources: cli.EnvVars("IRULE_HTTP_TIMEOUT"),
		Value:   serializer.HttpReaderDefaultTimeout,
	}
}

func httpMaxBytesFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "http-max-bytes",
		Usage:   "Largest http:// or https:// input accepted, in bytes",
		Sources: cli.EnvVars("IRULE_HTTP_MAX_BYTES"),
		Value:   int(serializer.HttpReaderDefaultMaxBytes),
	}
}

func insecureTLSFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "insecure-tls",
		Usage:   "Skip TLS certificate verification for https:// inputs and oci:// destinations",
		Sources: cli.EnvVars("IRULE_INSECURE_TLS"),
	}
}

func inputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage: `Input document: a file path, literal document text, an HTTP/HTTPS URL,
	or a ConfigMap URI (cm://namespace/name). May also be given as the first argument.`,
		Sources: cli.EnvVars("IRULE_INPUT"),
	}
}

func outputFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   usage,
		Sources: cli.EnvVars("IRULE_OUTPUT"),
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   fmt.Sprintf("Report format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		Sources: cli.EnvVars("IRULE_FORMAT"),
		Value:   string(serializer.FormatYAML),
	}
}

func failOnErrorFlag(usage string) *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "fail-on-error",
		Usage: usage,
	}
}

// parseOutputFormat returns --format, or the format implied by the
// --output extension when --format was not given.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if out := cmd.String("output"); !cmd.IsSet("format") && out != "" && !strings.Contains(out, "://") {
		f = serializer.FormatFromPath(out, f)
	}
	if f.IsUnknown() {
		return "", apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown output format: %q", f),
			map[string]any{"supported": serializer.SupportedFormats()})
	}
	return f, nil
}

// inputRef returns --input, or the first positional argument.
func inputRef(cmd *cli.Command) (string, error) {
	if in := cmd.String("input"); in != "" {
		return in, nil
	}
	if cmd.Args().Len() > 0 {
		return cmd.Args().First(), nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidRequest, "an input document is required (--input or first argument)")
}

func kubeGetter(cmd *cli.Command) client.Getter {
	return client.Lazy(cmd.String("kubeconfig"))
}

func (a *app) newBuilder(cmd *cli.Command, opts ...builder.Option) *builder.Builder {
	kube := kubeGetter(cmd)
	base := []builder.Option{
		builder.WithLoader(serializer.NewLoader(
			serializer.WithKubeClient(kube),
			serializer.WithHttpReader(serializer.NewHttpReader(
				serializer.WithUserAgent(name+"/"+version),
				serializer.WithTotalTimeout(cmd.Duration("http-timeout")),
				serializer.WithMaxBytes(int64(cmd.Int("http-max-bytes"))),
				serializer.WithInsecureSkipVerify(cmd.Bool("insecure-tls")),
			)),
		)),
		builder.WithStore(schema.NewDirStore(cmd.String("schema-dir"))),
		builder.WithRenderer(render.New(cmd.String("template-dir"),
			render.WithStrict(!cmd.Bool("allow-missing-keys")),
			render.WithFuncs(template.FuncMap{
				"generator": func() string { return name + " " + version },
			}),
		)),
		builder.WithRootSchema(cmd.String("root-schema")),
		builder.WithMaxDepth(cmd.Int("max-depth")),
		builder.WithVersion(version),
		builder.WithKubeClient(kube),
		builder.WithStdout(a.stdout),
	}
	if a.verbosity >= 1 {
		base = append(base, builder.WithEcho(a.stderr))
	}
	return builder.New(append(base, opts...)...)
}
