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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/logging"
)

const (
	name           = "irule"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

func init() {
	// -v is the verbosity counter, so the version flag keeps only its long name.
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

// app carries state shared by all commands of one invocation.
type app struct {
	verbosity int
	stdout    io.Writer
	stderr    io.Writer
}

// Execute runs the CLI with os.Args and exits with its status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Run executes the command line in args and returns the process exit
// status. Errors are printed to stderr as a single code-prefixed message;
// -v appends the cause and context.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	if err := a.command().Run(ctx, args); err != nil {
		var se *apperrors.StructuredError
		if !errors.As(err, &se) {
			err = apperrors.Wrap(apperrors.ErrCodeInvalidRequest, err.Error(), err)
		}
		fmt.Fprintln(stderr, apperrors.Format(err, a.verbosity))
		return 1
	}
	return 0
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:                   name,
		Usage:                  "Validate configuration documents and render F5 iRules",
		Version:                fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		EnableShellCompletion:  true,
		UseShortOptionHandling: true,
		Writer:                 a.stdout,
		ErrWriter:              a.stderr,
		Description: `irule validates a nested configuration document against per-key schemas
and, when the document is valid, renders it through a template.

Every mapping in the document is checked against the schema named after its
key; the document root is checked against the "irule" schema. A single
violation anywhere stops the build and all findings are reported together.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Increase diagnostic detail (-v adds error causes and echoes the input, -vv enables debug logging)",
				Config:  cli.BoolConfig{Count: &a.verbosity},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("IRULE_LOG_LEVEL", logging.EnvLogLevel),
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (json, text)",
				Sources: cli.EnvVars("IRULE_LOG_FORMAT"),
				Value:   string(logging.FormatText),
			},
			schemaDirFlag(),
			templateDirFlag(),
			rootSchemaFlag(),
			maxDepthFlag(),
			kubeconfigFlag(),
			httpTimeoutFlag(),
			httpMaxBytesFlag(),
			insecureTLSFlag(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			format := logging.Format(cmd.String("log-format"))
			if format != logging.FormatJSON && format != logging.FormatText {
				return ctx, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
					fmt.Sprintf("unknown log format: %q", format),
					map[string]any{"supported": []string{string(logging.FormatJSON), string(logging.FormatText)}})
			}
			level := logging.LevelForVerbosity(a.verbosity, cmd.String("log-level"))
			logging.SetDefaultLogger(a.stderr, format, name, version, level)
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"verbosity", a.verbosity)
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.buildCmd(),
			a.validateCmd(),
			a.generateCmd(),
			a.schemaCmd(),
		},
	}
}
