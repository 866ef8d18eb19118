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
	"github.com/NVIDIA/irule-builder/pkg/serializer"
	"github.com/NVIDIA/irule-builder/pkg/validator"
)

func (a *app) validateCmd() *cli.Command {
	return &cli.Command{
		Name:                   "validate",
		EnableShellCompletion:  true,
		UseShortOptionHandling: true,
		Usage:                  "Validate a document and report every finding",
		ArgsUsage:              "[input]",
		Description: `Validate the input document against the schemas without rendering and
write a report listing every finding with its path, schema and rule.

# Examples

Print a YAML report:
  irule validate input.yaml

Print findings as a table and fail when there are any (useful for CI/CD):
  irule validate input.yaml --format table --fail-on-error

Store the report in a ConfigMap:
  irule validate input.yaml -o cm://f5-system/irule-report`,
		Flags: []cli.Flag{
			inputFlag(),
			outputFlag("Destination for the report: file path or cm://namespace/name (default: stdout)"),
			formatFlag(),
			failOnErrorFlag("Exit with non-zero status when the document is invalid"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			input, err := inputRef(cmd)
			if err != nil {
				return err
			}

			report, err := a.newBuilder(cmd).Check(ctx, input)
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

			slog.Info("validation completed",
				"run_id", report.RunID,
				"status", report.Summary.Status,
				"findings", report.Summary.Findings,
				"schemas", report.Summary.Schemas,
				"duration", report.Summary.Duration)

			if cmd.Bool("fail-on-error") && report.Summary.Status == validator.StatusInvalid {
				return apperrors.NewWithContext(apperrors.ErrCodeValidation,
					fmt.Sprintf("document failed validation with %d finding(s)", report.Summary.Findings),
					map[string]any{"run_id": report.RunID})
			}
			return nil
		},
	}
}
