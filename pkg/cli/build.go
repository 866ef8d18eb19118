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
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/irule-builder/pkg/builder"
	"github.com/NVIDIA/irule-builder/pkg/defaults"
	"github.com/NVIDIA/irule-builder/pkg/server"
)

func (a *app) buildCmd() *cli.Command {
	return &cli.Command{
		Name:                   "build",
		EnableShellCompletion:  true,
		UseShortOptionHandling: true,
		Usage:                  "Validate a document and render it through a template",
		ArgsUsage:              "[input]",
		Description: `Load the input document, validate it against the schemas and render the
template when it is valid. An invalid document is reported with every
finding and nothing is written.

# Destinations

  (none)                  stdout
  path/to/irule.tcl       local file, replaced atomically
  cm://namespace/name     ConfigMap entry "irule.tcl" (server-side apply)
  oci://registry/repo:tag single-layer OCI artifact

# Examples

Render to stdout:
  irule build input.yaml

Render literal text:
  irule build 'service: {port: 80}'

Rebuild on every change to the input, schemas or templates:
  irule build input.yaml -o irule.tcl --watch --metrics-addr :9090`,
		Flags: []cli.Flag{
			inputFlag(),
			outputFlag("Destination for the rendered iRule: file path, cm://namespace/name or oci://registry/repository[:tag] (default: stdout)"),
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "Template name within the template directory",
				Sources: cli.EnvVars("IRULE_TEMPLATE"),
				Value:   defaults.TemplateName,
			},
			&cli.BoolFlag{
				Name:  "allow-missing-keys",
				Usage: "Render missing document keys as \"<no value>\" instead of failing",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Rebuild whenever the input file, schema directory or template directory changes",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period after a change before rebuilding in watch mode",
				Value: defaults.WatchDebounceInterval,
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve /metrics, /health, /ready and /status on this address in watch mode",
				Sources: cli.EnvVars("IRULE_METRICS_ADDR"),
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for oci:// destinations",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			input, err := inputRef(cmd)
			if err != nil {
				return err
			}
			b := a.newBuilder(cmd,
				builder.WithTemplate(cmd.String("template")),
				builder.WithRegistry(cmd.Bool("plain-http"), cmd.Bool("insecure-tls")),
			)
			output := cmd.String("output")

			if cmd.Bool("watch") {
				return a.watch(ctx, cmd, b, input, output)
			}

			res, err := b.Build(ctx, input, output)
			if err != nil {
				return err
			}
			slog.Info("build complete",
				"run_id", res.RunID,
				"destination", res.Destination,
				"bytes", res.Bytes,
				"digest", res.Digest,
				"duration", res.Duration)
			return nil
		},
	}
}

func (a *app) watch(ctx context.Context, cmd *cli.Command, b *builder.Builder, input, output string) error {
	var srv *server.Server
	if addr := cmd.String("metrics-addr"); addr != "" {
		srv = server.New(server.DefaultConfig(addr))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Watch(gctx, builder.WatchOptions{
			Input:    input,
			Output:   output,
			Dirs:     []string{cmd.String("schema-dir"), cmd.String("template-dir")},
			Debounce: cmd.Duration("debounce"),
			OnBuild: func(res *builder.BuildResult, err error) {
				if srv == nil {
					return
				}
				runID := ""
				if res != nil {
					runID = res.RunID
				}
				srv.RecordBuild(runID, err)
			},
		})
	})
	if srv != nil {
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}
	return g.Wait()
}
