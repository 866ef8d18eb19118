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

	"github.com/urfave/cli/v3"
)

func (a *app) generateCmd() *cli.Command {
	return &cli.Command{
		Name:                   "generate",
		EnableShellCompletion:  true,
		UseShortOptionHandling: true,
		Usage:                  "Write a skeleton document for the root schema",
		Description: `Generate a YAML document with every field declared by the root schema,
expanded through the key-named schemas of nested mappings, and placeholder
values an author can fill in.

# Examples

  irule generate > input.yaml
  irule generate --root-schema pool -o pool.yaml`,
		Flags: []cli.Flag{
			outputFlag("Destination for the skeleton: file path or cm://namespace/name (default: stdout)"),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return a.newBuilder(cmd).Generate(ctx, cmd.String("output"))
		},
	}
}
