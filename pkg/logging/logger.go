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

package logging

import (
	"io"
	"log/slog"
	"strings"
)

const (
	// EnvLogLevel is the conventional environment variable for the level.
	EnvLogLevel = "LOG_LEVEL"
)

// Format selects the slog handler used for output.
type Format string

const (
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
	// FormatText writes logfmt-style key=value records.
	FormatText Format = "text"
)

// ParseLogLevel converts a level name into a slog.Level.
// Unknown or empty values fall back to INFO.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelForVerbosity maps the CLI -v count onto a level name. Verbosity
// two and above always means debug; otherwise the configured level wins.
func LevelForVerbosity(verbosity int, configured string) string {
	if verbosity >= 2 {
		return "debug"
	}
	return configured
}

// NewLogger builds a logger for the given writer and format with the
// module and version attached to every record.
func NewLogger(w io.Writer, format Format, module, version, level string) *slog.Logger {
	lvl := ParseLogLevel(level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	}

	var h slog.Handler
	if format == FormatText {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// SetDefaultLogger installs a logger writing to w as the slog default.
func SetDefaultLogger(w io.Writer, format Format, module, version, level string) {
	slog.SetDefault(NewLogger(w, format, module, version, level))
}
