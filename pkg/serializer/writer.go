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
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/k8s/client"
)

// Format represents the output format type
type Format string

const (
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
	// FormatTable outputs data in table format
	FormatTable Format = "table"
)

const defaultValueKey = "value"

func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// Extension returns the file extension conventionally used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTable:
		return "txt"
	default:
		return "json"
	}
}

// SupportedFormats returns a list of all supported output formats
// for serialization.
func SupportedFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTable),
	}
}

// FormatFromPath determines the report format from a file extension:
// .json, .yaml/.yml and .table/.txt. Unknown extensions yield fallback.
func FormatFromPath(filePath string, fallback Format) Format {
	lowerPath := strings.ToLower(filePath)
	switch {
	case strings.HasSuffix(lowerPath, ".json"):
		return FormatJSON
	case strings.HasSuffix(lowerPath, ".yaml"), strings.HasSuffix(lowerPath, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lowerPath, ".table"), strings.HasSuffix(lowerPath, ".txt"):
		return FormatTable
	default:
		return fallback
	}
}

// Writer serializes values to an io.Writer.
type Writer struct {
	format Format
	output io.Writer
}

// NewWriter creates a new Writer with the specified format and output destination.
// If output is nil, os.Stdout will be used.
// If format is unknown, defaults to JSON format.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &Writer{
		format: format,
		output: output,
	}
}

// Serialize writes v in the configured format.
func (w *Writer) Serialize(ctx context.Context, v any) error {
	content, err := Marshal(w.format, v)
	if err != nil {
		return err
	}
	if _, err := w.output.Write(content); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeOutputWrite, "failed to write output", err)
	}
	return nil
}

// NewReportWriter returns a Serializer for dest: stdout when dest is
// empty, a ConfigMap for cm://namespace/name, and a file otherwise. File
// writes are atomic. A nil stdout means os.Stdout.
func NewReportWriter(format Format, dest string, stdout io.Writer, kube client.Getter) (Serializer, error) {
	trimmed := strings.TrimSpace(dest)
	switch {
	case trimmed == "":
		return NewWriter(format, stdout), nil
	case strings.HasPrefix(trimmed, ConfigMapURIScheme):
		namespace, name, err := ParseConfigMapURI(trimmed)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid output destination", err)
		}
		return NewConfigMapWriter(kube, namespace, name, format), nil
	default:
		return &fileWriter{format: format, path: trimmed}, nil
	}
}

type fileWriter struct {
	format Format
	path   string
}

func (w *fileWriter) Serialize(ctx context.Context, v any) error {
	content, err := Marshal(w.format, v)
	if err != nil {
		return err
	}
	return WriteFileAtomic(w.path, content, 0o644)
}

// Marshal encodes v in format. Unknown formats fall back to JSON.
func Marshal(format Format, v any) ([]byte, error) {
	var content []byte
	var err error
	switch format {
	case FormatYAML:
		content, err = serializeYAML(v)
	case FormatTable:
		content, err = serializeTable(v)
	default:
		content, err = serializeJSON(v)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeOutputWrite, "failed to serialize output", err)
	}
	return content, nil
}

func serializeJSON(data any) ([]byte, error) {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	return append(content, '\n'), nil
}

func serializeYAML(data any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func serializeTable(data any) ([]byte, error) {
	var builder strings.Builder
	tw := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if tr, ok := data.(TableRenderer); ok {
		columns, rows := tr.TableRows()
		if len(rows) == 0 {
			return []byte("<empty>\n"), nil
		}
		fmt.Fprintln(tw, strings.Join(columns, "\t"))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	} else {
		flat := make(map[string]any)
		flattenValue(flat, reflect.ValueOf(data), "")
		if len(flat) == 0 {
			return []byte("<empty>\n"), nil
		}

		keys := make([]string, 0, len(flat))
		for k := range flat {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(tw, "FIELD\tVALUE")
		fmt.Fprintln(tw, "-----\t-----")
		for _, key := range keys {
			fmt.Fprintf(tw, "%s\t%v\n", key, flat[key])
		}
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush table: %w", err)
	}
	return []byte(builder.String()), nil
}

func flattenValue(out map[string]any, val reflect.Value, prefix string) {
	if !val.IsValid() {
		return
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			if prefix != "" {
				out[prefix] = nil
			}
			return
		}
		val = val.Elem()
	}

	//nolint:exhaustive // We handle the common cases explicitly; all others go to default
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if field.Anonymous {
				name = ""
			}
			flattenValue(out, val.Field(i), joinKey(prefix, name))
		}
	case reflect.Map:
		for _, mapKey := range val.MapKeys() {
			key := joinKey(prefix, fmt.Sprintf("%v", mapKey.Interface()))
			flattenValue(out, val.MapIndex(mapKey), key)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			key := joinKey(prefix, fmt.Sprintf("[%d]", i))
			flattenValue(out, val.Index(i), key)
		}
	default:
		if prefix == "" {
			prefix = defaultValueKey
		}
		out[prefix] = val.Interface()
	}
}

func joinKey(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "." + suffix
}
