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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

var (
	// ErrSchemaNotFound is returned when no resource matches an identifier.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrSchemaMalformed is returned when a resource exists but is not a
	// valid constraint document.
	ErrSchemaMalformed = errors.New("schema malformed")
)

// Extensions are tried in this order; the first existing resource wins.
var Extensions = []string{".json", ".yaml", ".yml"}

// Store resolves schema identifiers to parsed definitions.
type Store interface {
	Resolve(id string) (*Definition, error)
}

// DirStore loads schema resources named <id>.json, <id>.yaml or <id>.yml
// from a directory. Parsed definitions are cached until Invalidate.
type DirStore struct {
	fsys fs.FS
	name string

	mu    sync.RWMutex
	cache map[string]*Definition
}

// NewDirStore returns a store reading from dir on the local filesystem.
func NewDirStore(dir string) *DirStore {
	return NewFSStore(os.DirFS(dir), dir)
}

// NewFSStore returns a store reading from fsys. name is used in messages.
func NewFSStore(fsys fs.FS, name string) *DirStore {
	return &DirStore{
		fsys:  fsys,
		name:  name,
		cache: make(map[string]*Definition),
	}
}

// Resolve implements Store.
func (s *DirStore) Resolve(id string) (*Definition, error) {
	s.mu.RLock()
	def, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		schemaCacheHits.Inc()
		return def, nil
	}
	schemaCacheMisses.Inc()

	def, err := s.load(id)
	if err != nil {
		schemaLoadErrors.Inc()
		return nil, err
	}

	s.mu.Lock()
	s.cache[id] = def
	s.mu.Unlock()
	return def, nil
}

// Invalidate drops all cached definitions.
func (s *DirStore) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]*Definition)
	s.mu.Unlock()
	slog.Debug("schema cache invalidated", "dir", s.name)
}

// IDs lists the identifiers of all resources in the directory, sorted.
// An identifier present with several extensions is listed once.
func (s *DirStore) IDs() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeSchemaLoad,
			"failed to list schema directory", err, map[string]any{"dir": s.name})
	}
	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if !isSchemaExt(ext) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ext)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *DirStore) load(id string) (*Definition, error) {
	ctx := map[string]any{"schema": id, "dir": s.name}
	if !validID(id) {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeSchemaLoad,
			fmt.Sprintf("no schema resource for %q", id),
			fmt.Errorf("%w: invalid identifier %q", ErrSchemaNotFound, id), ctx)
	}

	for _, ext := range Extensions {
		file := id + ext
		data, err := fs.ReadFile(s.fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		ctx["file"] = file
		if err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeSchemaLoad,
				fmt.Sprintf("failed to read schema %q", id), err, ctx)
		}
		def, err := Parse(id, ext, data)
		if err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeSchemaLoad,
				fmt.Sprintf("schema %q is malformed", id), err, ctx)
		}
		slog.Debug("schema loaded", "schema", id, "file", file, "fields", def.Len())
		return def, nil
	}

	return nil, apperrors.WrapWithContext(apperrors.ErrCodeSchemaLoad,
		fmt.Sprintf("no schema resource for %q", id),
		fmt.Errorf("%w: %s{%s}", ErrSchemaNotFound, id, strings.Join(Extensions, ",")), ctx)
}

// Parse decodes a schema resource. ext selects the codec: ".json" uses
// JSON, ".yaml" and ".yml" use YAML. Failures wrap ErrSchemaMalformed.
func Parse(id, ext string, data []byte) (*Definition, error) {
	var raw map[string]any
	var err error
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrSchemaMalformed, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty resource", ErrSchemaMalformed)
	}
	def, err := Decode(id, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMalformed, err)
	}
	return def, nil
}

func validID(id string) bool {
	if id == "" || id == "." || strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return false
	}
	return fs.ValidPath(id + Extensions[0])
}

func isSchemaExt(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// MapStore serves definitions held in memory.
type MapStore map[string]*Definition

// Resolve implements Store.
func (m MapStore) Resolve(id string) (*Definition, error) {
	def, ok := m[id]
	if !ok || def == nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeSchemaLoad,
			fmt.Sprintf("no schema resource for %q", id),
			fmt.Errorf("%w: %s", ErrSchemaNotFound, id), map[string]any{"schema": id})
	}
	return def, nil
}
