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
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/schema"
	"github.com/NVIDIA/irule-builder/pkg/serializer"
)

func (a *app) schemaCmd() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Inspect schema resources",
		Commands: []*cli.Command{
			{
				Name:                   "lint",
				EnableShellCompletion:  true,
				UseShortOptionHandling: true,
				Usage:                  "Parse every schema resource and report malformed ones",
				Description: `Parse all resources in the schema directory concurrently. Malformed
resources are errors; dict fields without a key-named resource and resources
shadowed by a higher-priority extension are warnings.

# Examples

  irule schema lint
  irule schema lint --schema-dir ./schema --format table --fail-on-error`,
				Flags: []cli.Flag{
					outputFlag("Destination for the report: file path or cm://namespace/name (default: stdout)"),
					formatFlag(),
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Maximum resources parsed in parallel (0: number of CPUs)",
					},
					failOnErrorFlag("Exit with non-zero status when any resource is malformed"),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					outFormat, err := parseOutputFormat(cmd)
					if err != nil {
						return err
					}

					dir := cmd.String("schema-dir")
					report, err := schema.NewDirStore(dir).Lint(ctx, schema.LintOptions{
						Concurrency: cmd.Int("concurrency"),
						Version:     version,
					})
					if err != nil {
						return err
					}

					ser, err := serializer.NewReportWriter(outFormat, cmd.String("output"), a.stdout, kubeGetter(cmd))
					if err != nil {
						return err
					}
					if err := ser.Serialize(ctx, report); err != nil {
						return err
					}

					slog.Info("schema lint completed",
						"dir", dir,
						"total", report.Summary.Total,
						"malformed", report.Summary.Malformed,
						"warnings", report.Summary.Warnings)

					if cmd.Bool("fail-on-error") && !report.OK() {
						return apperrors.NewWithContext(apperrors.ErrCodeSchemaLoad,
							fmt.Sprintf("%d of %d schema resource(s) are malformed", report.Summary.Malformed, report.Summary.Total),
							map[string]any{"dir": dir})
					}
					return nil
				},
			},
		},
	}
}
