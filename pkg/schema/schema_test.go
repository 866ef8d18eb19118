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

package schema

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/irule-builder/pkg/document"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

const serviceJSON = `{
  "port":     {"type": "int", "min": 1, "max": 65535},
  "enabled":  {"type": "bool"},
  "name":     {"type": "string", "regex": "[a-z]+", "maxlength": 5},
  "mode":     {"type": "string", "allowed": ["tcp", "udp"]},
  "note":     {"type": ["string", "integer"], "required": false, "nullable": true},
  "tags":     {"type": "list", "schema": {"type": "string"}},
  "tls":      {"type": "dict", "schema": {"cert": {"type": "string"}}}
}`

func mustParse(t *testing.T, id, ext, data string) *Definition {
	t.Helper()
	def, err := Parse(id, ext, []byte(data))
	require.NoError(t, err)
	return def
}

func TestParse(t *testing.T) {
	def := mustParse(t, "service", ".json", serviceJSON)

	assert.Equal(t, "service", def.ID)
	assert.False(t, def.AllowUnknown)
	assert.Equal(t, []string{"enabled", "mode", "name", "note", "port", "tags", "tls"}, def.Fields())

	port, ok := def.Rule("port")
	require.True(t, ok)
	assert.Equal(t, []string{TypeInteger}, port.Types)
	assert.True(t, port.Required)
	require.NotNil(t, port.Min)
	assert.Equal(t, 1.0, *port.Min)

	note, _ := def.Rule("note")
	assert.False(t, note.Required)
	assert.True(t, note.Nullable)
	assert.Equal(t, []string{TypeString, TypeInteger}, note.Types)

	tags, _ := def.Rule("tags")
	require.NotNil(t, tags.Items)
	assert.Nil(t, tags.Schema)
	assert.Equal(t, []string{TypeString}, tags.Items.Types)

	tls, _ := def.Rule("tls")
	require.NotNil(t, tls.Schema)
	assert.Nil(t, tls.Items)
	assert.Equal(t, []string{"cert"}, tls.Schema.Fields())
}

func TestParseYAML(t *testing.T) {
	def := mustParse(t, "pool", ".yaml", `
$allow_unknown: true
members:
  type: list
  minlength: 1
lb:
  type: string
  allowed: [round-robin, least-conn]
`)
	assert.True(t, def.AllowUnknown)
	assert.Equal(t, []string{"lb", "members"}, def.Fields())
	members, _ := def.Rule("members")
	require.NotNil(t, members.MinLength)
	assert.Equal(t, 1, *members.MinLength)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"invalid json", ".json", `{"port": `},
		{"json array", ".json", `[1, 2]`},
		{"null resource", ".json", `null`},
		{"rule not mapping", ".json", `{"port": "integer"}`},
		{"unknown rule", ".json", `{"port": {"type": "integer", "coerce": "int"}}`},
		{"unsupported type", ".json", `{"port": {"type": "datetime"}}`},
		{"bad type list", ".json", `{"port": {"type": [1]}}`},
		{"bad regex", ".json", `{"name": {"regex": "("}}`},
		{"regex not string", ".json", `{"name": {"regex": 1}}`},
		{"required not bool", ".json", `{"name": {"required": "no"}}`},
		{"negative length", ".json", `{"name": {"minlength": -1}}`},
		{"unknown directive", ".json", `{"$strict": true}`},
		{"allow_unknown not bool", ".json", `{"$allow_unknown": "yes"}`},
		{"invalid yaml", ".yaml", "a: [1,\n"},
		{"unsupported extension", ".xml", `<a/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x", tt.ext, []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaMalformed), "got %v", err)
		})
	}
}

func TestCheck(t *testing.T) {
	def := mustParse(t, "service", ".json", serviceJSON)

	valid := document.Mapping(
		document.F("port", document.Scalar(80)),
		document.F("enabled", document.Scalar(true)),
		document.F("name", document.Scalar("web")),
		document.F("mode", document.Scalar("tcp")),
		document.F("tags", document.Sequence(document.Scalar("a"))),
		document.F("tls", document.Mapping()),
	)

	type want struct {
		path string
		code string
	}
	tests := []struct {
		name  string
		patch func(n *document.Node) *document.Node
		want  []want
	}{
		{
			name:  "valid",
			patch: func(n *document.Node) *document.Node { return n },
		},
		{
			name:  "type mismatch",
			patch: replace("port", document.Scalar("80")),
			want:  []want{{"port", CodeType}},
		},
		{
			name:  "bool is not integer",
			patch: replace("port", document.Scalar(true)),
			want:  []want{{"port", CodeType}},
		},
		{
			name:  "below min",
			patch: replace("port", document.Scalar(0)),
			want:  []want{{"port", CodeMin}},
		},
		{
			name:  "above max",
			patch: replace("port", document.Scalar(70000)),
			want:  []want{{"port", CodeMax}},
		},
		{
			name:  "null not allowed",
			patch: replace("port", document.Null()),
			want:  []want{{"port", CodeNullable}},
		},
		{
			name:  "regex and length",
			patch: replace("name", document.Scalar("Web-Server")),
			want:  []want{{"name", CodeMaxLength}, {"name", CodeRegex}},
		},
		{
			name:  "unallowed value",
			patch: replace("mode", document.Scalar("sctp")),
			want:  []want{{"mode", CodeAllowed}},
		},
		{
			name:  "list item type",
			patch: replace("tags", document.Sequence(document.Scalar("a"), document.Scalar(2))),
			want:  []want{{"tags[1]", CodeType}},
		},
		{
			name: "optional field present and nullable",
			patch: func(n *document.Node) *document.Node {
				return document.Mapping(append(n.Fields, document.F("note", document.Null()))...)
			},
		},
		{
			name: "unknown field",
			patch: func(n *document.Node) *document.Node {
				return document.Mapping(append(n.Fields, document.F("extra", document.Scalar(1)))...)
			},
			want: []want{{"extra", CodeUnknown}},
		},
		{
			name:  "missing fields reported in declaration order",
			patch: func(*document.Node) *document.Node { return document.Mapping(document.F("port", document.Scalar("x"))) },
			want: []want{
				{"port", CodeType},
				{"enabled", CodeRequired},
				{"mode", CodeRequired},
				{"name", CodeRequired},
				{"tags", CodeRequired},
				{"tls", CodeRequired},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := def.Check(tt.patch(valid))
			var have []want
			for _, v := range got {
				have = append(have, want{v.Path.String(), v.Code})
			}
			assert.Equal(t, tt.want, have)
		})
	}
}

func replace(key string, value *document.Node) func(*document.Node) *document.Node {
	return func(n *document.Node) *document.Node {
		fields := make([]document.Field, len(n.Fields))
		copy(fields, n.Fields)
		out := document.Mapping(fields...)
		return document.Mapping(append(out.Fields, document.F(key, value))...)
	}
}

func TestCheckNumericAllowed(t *testing.T) {
	def := mustParse(t, "vs", ".json", `{"port": {"type": "integer", "allowed": [80, 443]}}`)
	assert.Empty(t, def.Check(document.Mapping(document.F("port", document.Scalar(443)))))
	assert.Len(t, def.Check(document.Mapping(document.F("port", document.Scalar(8080)))), 1)
}

func TestCheckFloatAcceptsInteger(t *testing.T) {
	def := mustParse(t, "lb", ".json", `{"ratio": {"type": "float"}, "weight": {"type": "number"}}`)
	n := document.Mapping(
		document.F("ratio", document.Scalar(1)),
		document.F("weight", document.Scalar(0.5)),
	)
	assert.Empty(t, def.Check(n))
}

func TestCheckNonMapping(t *testing.T) {
	def := mustParse(t, "x", ".json", `{"a": {"type": "string"}}`)
	assert.Nil(t, def.Check(document.Scalar("a")))
	assert.Nil(t, def.Check(nil))
}

func TestDirStoreResolve(t *testing.T) {
	fsys := fstest.MapFS{
		"irule.json":  {Data: []byte(`{"service": {"type": "dict"}}`)},
		"irule.yaml":  {Data: []byte("other:\n  type: string\n")},
		"service.yml": {Data: []byte("port:\n  type: integer\n")},
		"broken.json": {Data: []byte(`{"port": `)},
		"sub/x.json":  {Data: []byte(`{}`)},
		"README.md":   {Data: []byte("not a schema")},
		"empty.yaml":  {Data: []byte("")},
	}
	store := NewFSStore(fsys, "schema")

	t.Run("json wins over yaml", func(t *testing.T) {
		def, err := store.Resolve("irule")
		require.NoError(t, err)
		assert.Equal(t, []string{"service"}, def.Fields())
	})

	t.Run("yml", func(t *testing.T) {
		def, err := store.Resolve("service")
		require.NoError(t, err)
		assert.Equal(t, []string{"port"}, def.Fields())
	})

	notFound := []string{"missing", "", "..", "../irule", "sub/x", `sub\x`, "."}
	for _, id := range notFound {
		t.Run("not found "+id, func(t *testing.T) {
			_, err := store.Resolve(id)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaNotFound), "got %v", err)
			assert.Equal(t, apperrors.ErrCodeSchemaLoad, apperrors.CodeOf(err))
		})
	}

	for _, id := range []string{"broken", "empty"} {
		t.Run("malformed "+id, func(t *testing.T) {
			_, err := store.Resolve(id)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaMalformed), "got %v", err)
			assert.Equal(t, apperrors.ErrCodeSchemaLoad, apperrors.CodeOf(err))
		})
	}
}

func TestDirStoreCache(t *testing.T) {
	fsys := fstest.MapFS{
		"irule.json": {Data: []byte(`{"a": {"type": "string"}}`)},
	}
	store := NewFSStore(fsys, "schema")

	first, err := store.Resolve("irule")
	require.NoError(t, err)

	fsys["irule.json"] = &fstest.MapFile{Data: []byte(`{"b": {"type": "string"}}`)}
	second, err := store.Resolve("irule")
	require.NoError(t, err)
	assert.Same(t, first, second)

	store.Invalidate()
	third, err := store.Resolve("irule")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, third.Fields())
}

func TestDirStoreIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"irule.json":    {Data: []byte(`{}`)},
		"irule.yaml":    {Data: []byte(`{}`)},
		"pool.yml":      {Data: []byte(`{}`)},
		"notes.txt":     {Data: []byte(`x`)},
		"nested/a.json": {Data: []byte(`{}`)},
	}
	ids, err := NewFSStore(fsys, "schema").IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"irule", "pool"}, ids)
}

func TestNewDirStore(t *testing.T) {
	dir := t.TempDir()
	_, err := NewDirStore(dir).Resolve("irule")
	assert.True(t, errors.Is(err, ErrSchemaNotFound))
}

func TestMapStore(t *testing.T) {
	def, err := Parse("irule", ".json", []byte(`{"service": {"type": "dict"}}`))
	require.NoError(t, err)
	store := MapStore{"irule": def}

	got, err := store.Resolve("irule")
	require.NoError(t, err)
	assert.Same(t, def, got)

	_, err = store.Resolve("service")
	assert.True(t, errors.Is(err, ErrSchemaNotFound))
}

func TestLint(t *testing.T) {
	fsys := fstest.MapFS{
		"irule.json":   {Data: []byte(`{"service": {"type": "dict"}, "pools": {"type": "list", "schema": {"type": "dict"}}}`)},
		"irule.yaml":   {Data: []byte("service:\n  type: dict\n")},
		"service.json": {Data: []byte(`{"port": {"type": "integer"}}`)},
		"broken.json":  {Data: []byte(`{"port": {"type": "nope"}}`)},
	}
	report, err := NewFSStore(fsys, "schema").Lint(context.Background(), LintOptions{Concurrency: 2, Version: "v1.0.0"})
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, LintSummary{Total: 4, Malformed: 1, Warnings: 2}, report.Summary)
	assert.Equal(t, "v1.0.0", report.Metadata["version"])

	byFile := make(map[string]LintResult)
	for _, r := range report.Results {
		byFile[r.File] = r
	}
	assert.Contains(t, byFile["broken.json"].Error, "unsupported type")
	assert.Equal(t, 2, byFile["irule.json"].Fields)
	assert.Equal(t, []string{`field "pools" may hold a mapping but has no schema resource`}, byFile["irule.json"].Warnings)
	assert.Equal(t, []string{"shadowed by irule.json"}, byFile["irule.yaml"].Warnings)
	assert.Empty(t, byFile["service.json"].Warnings)
}

func TestLintCanceled(t *testing.T) {
	fsys := fstest.MapFS{"irule.json": {Data: []byte(`{}`)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFSStore(fsys, "schema").Lint(ctx, LintOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSkeleton(t *testing.T) {
	store := MapStore{
		"irule": mustParse(t, "irule", ".json", `{
			"service": {"type": "dict"},
			"pools":   {"type": "list"},
			"mode":    {"type": "string", "allowed": ["tcp", "udp"]},
			"tls":     {"type": "dict", "schema": {"cert": {"type": "string"}}},
			"ghost":   {"type": "dict"}
		}`),
		"service": mustParse(t, "service", ".json", `{"port": {"type": "integer", "min": 1}, "enabled": {"type": "boolean"}, "service": {"type": "dict"}}`),
		"pools":   mustParse(t, "pools", ".json", `{"name": {"type": "string"}, "ratio": {"type": "float"}}`),
	}

	got, err := Skeleton(store, "irule", 64)
	require.NoError(t, err)

	want := document.Mapping(
		document.F("ghost", document.Mapping()),
		document.F("mode", document.Scalar("tcp")),
		document.F("pools", document.Sequence(document.Mapping(
			document.F("name", document.Scalar("")),
			document.F("ratio", document.Scalar(0.0)),
		))),
		document.F("service", document.Mapping(
			document.F("enabled", document.Scalar(false)),
			document.F("port", document.Scalar(1)),
			document.F("service", document.Mapping()),
		)),
		document.F("tls", document.Mapping(document.F("cert", document.Scalar("")))),
	)
	assert.True(t, document.Equal(want, got), "got %#v", got.Interface())
}

func TestSkeletonDepthLimit(t *testing.T) {
	store := MapStore{
		"irule": mustParse(t, "irule", ".json", `{"a": {"type": "dict"}}`),
		"a":     mustParse(t, "a", ".json", `{"b": {"type": "dict"}}`),
		"b":     mustParse(t, "b", ".json", `{"c": {"type": "integer"}}`),
	}
	got, err := Skeleton(store, "irule", 1)
	require.NoError(t, err)
	want := document.Mapping(document.F("a", document.Mapping()))
	assert.True(t, document.Equal(want, got), "got %#v", got.Interface())
}

func TestSkeletonErrors(t *testing.T) {
	_, err := Skeleton(MapStore{}, "irule", 64)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeGenerate, apperrors.CodeOf(err))
	assert.True(t, errors.Is(err, ErrSchemaNotFound))
}
