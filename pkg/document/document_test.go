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

package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYAMLTypes(t *testing.T) {
	root, err := ParseYAML([]byte(`
service:
  port: 80
  enabled: true
  ratio: 0.5
  name: web
  note: ~
hosts:
  - a
  - b
`))
	require.NoError(t, err)
	require.Equal(t, KindMapping, root.Kind)
	assert.Equal(t, []string{"service", "hosts"}, root.Keys())

	svc, ok := root.Get("service")
	require.True(t, ok)
	assert.Equal(t, []string{"port", "enabled", "ratio", "name", "note"}, svc.Keys())

	tests := map[string]string{
		"port":    TypeInteger,
		"enabled": TypeBoolean,
		"ratio":   TypeFloat,
		"name":    TypeString,
		"note":    TypeNull,
	}
	for key, want := range tests {
		v, ok := svc.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, want, v.TypeName(), key)
	}

	port, _ := svc.Get("port")
	assert.Equal(t, int64(80), port.Value)
	assert.Equal(t, 3, port.Line)

	hosts, _ := root.Get("hosts")
	assert.Equal(t, TypeList, hosts.TypeName())
	assert.Equal(t, 2, hosts.Len())
}

func TestParseYAMLQuotedNumberIsString(t *testing.T) {
	root, err := ParseYAML([]byte(`port: "80"`))
	require.NoError(t, err)
	port, _ := root.Get("port")
	assert.Equal(t, TypeString, port.TypeName())
	assert.Equal(t, "80", port.Value)
}

func TestParseYAMLAcceptsJSON(t *testing.T) {
	root, err := ParseYAML([]byte(`{"b": 1, "a": [true, null]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, root.Keys())
}

func TestParseYAMLEmpty(t *testing.T) {
	root, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, KindScalar, root.Kind)
	assert.Equal(t, TypeNull, root.TypeName())
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"malformed", "a: [1, 2", nil},
		{"duplicate key", "a: 1\na: 2\n", ErrDuplicateKey},
		{"complex key", "? [1, 2]\n: x\n", ErrNonScalarKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestParseYAMLAliasAndMerge(t *testing.T) {
	root, err := ParseYAML([]byte(`
base: &base
  port: 80
  enabled: true
service:
  <<: *base
  port: 443
copy: *base
`))
	require.NoError(t, err)

	svc, _ := root.Get("service")
	assert.Equal(t, []string{"port", "enabled"}, svc.Keys())
	port, _ := svc.Get("port")
	assert.Equal(t, int64(443), port.Value)

	cp, _ := root.Get("copy")
	base, _ := root.Get("base")
	assert.True(t, Equal(cp, base))
}

func TestParseTOMLPreservesOrder(t *testing.T) {
	root, err := ParseTOML([]byte(`
name = "edge"

[service]
port = 80
enabled = true

[[pools]]
member = "10.0.0.1"

[[pools]]
member = "10.0.0.2"
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "service", "pools"}, root.Keys())

	svc, _ := root.Get("service")
	assert.Equal(t, []string{"port", "enabled"}, svc.Keys())
	port, _ := svc.Get("port")
	assert.Equal(t, TypeInteger, port.TypeName())

	pools, _ := root.Get("pools")
	require.Equal(t, KindSequence, pools.Kind)
	assert.Equal(t, 2, pools.Len())
}

func TestParseTOMLError(t *testing.T) {
	_, err := ParseTOML([]byte("name = "))
	require.Error(t, err)
}

func TestFromValueSortsKeys(t *testing.T) {
	n, err := fromValue(map[string]any{"z": 1, "a": []any{"x", 2.5}, "m": map[string]any{}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m", "z"}, n.Keys())

	a, _ := n.Get("a")
	assert.Equal(t, TypeString, a.Items[0].TypeName())
	assert.Equal(t, TypeFloat, a.Items[1].TypeName())
	z, _ := n.Get("z")
	assert.Equal(t, int64(1), z.Value)
}

func TestInterface(t *testing.T) {
	n := Mapping(
		F("service", Mapping(F("port", Scalar(80)))),
		F("hosts", Sequence(Scalar("a"))),
	)
	got := n.Interface().(map[string]any)
	assert.Equal(t, int64(80), got["service"].(map[string]any)["port"])
	assert.Equal(t, []any{"a"}, got["hosts"])
}

func TestMappingReplacesDuplicateKeys(t *testing.T) {
	n := Mapping(F("a", Scalar(1)), F("b", Scalar(2)), F("a", Scalar(3)))
	assert.Equal(t, []string{"a", "b"}, n.Keys())
	a, _ := n.Get("a")
	assert.Equal(t, int64(3), a.Value)
}

func TestMarshalYAMLRoundTripKeepsOrder(t *testing.T) {
	n := Mapping(
		F("zeta", Scalar("z")),
		F("alpha", Mapping(F("port", Scalar(80)), F("enabled", Scalar(false)))),
		F("list", Sequence(Scalar(1), Null())),
	)
	out, err := MarshalYAML(n)
	require.NoError(t, err)

	text := string(out)
	assert.Less(t, strings.Index(text, "zeta"), strings.Index(text, "alpha"))

	back, err := ParseYAML(out)
	require.NoError(t, err)
	assert.True(t, Equal(n, back), "round trip changed the tree:\n%s", text)
}

func TestLenAndContainer(t *testing.T) {
	var nilNode *Node
	assert.Equal(t, 0, nilNode.Len())
	assert.False(t, nilNode.IsContainer())
	assert.Equal(t, 0, Scalar("x").Len())
	assert.True(t, Sequence().IsContainer())
	assert.Equal(t, 0, Mapping().Len())
}
