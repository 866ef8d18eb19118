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

package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
)

type buildEvent struct {
	res *BuildResult
	err error
}

func waitBuild(t *testing.T, events <-chan buildEvent) buildEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for build")
		return buildEvent{}
	}
}

func TestWatchRebuildsOnChange(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "input.yaml", validInput)
	out := filepath.Join(w.root, "irule.tcl")

	events := make(chan buildEvent, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.builder().Watch(ctx, WatchOptions{
			Input:       input,
			Output:      out,
			Dirs:        []string{w.schemas, w.templates},
			Debounce:    50 * time.Millisecond,
			MinInterval: time.Millisecond,
			OnBuild: func(res *BuildResult, err error) {
				events <- buildEvent{res: res, err: err}
			},
		})
	}()

	first := waitBuild(t, events)
	require.NoError(t, first.err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "== 80")

	// An invalid edit fails the rebuild and leaves the last output alone.
	w.write(t, "input.yaml", invalidInput)
	second := waitBuild(t, events)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(second.err))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "== 80")

	// A template change is picked up on the next run.
	w.write(t, "input.yaml", validInput)
	require.NoError(t, waitBuild(t, events).err)
	w.write(t, "templates/irule.tmpl", "port {{ .service.port }}")
	require.NoError(t, waitBuild(t, events).err)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "port 80\n", string(data))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchNothingToWatch(t *testing.T) {
	w := newWorkspace(t)
	err := w.builder().Watch(context.Background(), WatchOptions{Input: validInput})
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))
}

func TestWatchFilter(t *testing.T) {
	w := newWorkspace(t)
	input := w.write(t, "input.yaml", validInput)
	out := filepath.Join(w.root, "irule.tcl")

	f, err := newWatchFilter(WatchOptions{Input: input, Output: out, Dirs: []string{w.schemas}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{w.root, w.schemas}, f.watchedDirs())

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"input write", fsnotify.Event{Name: input, Op: fsnotify.Write}, true},
		{"input chmod", fsnotify.Event{Name: input, Op: fsnotify.Chmod}, false},
		{"schema create", fsnotify.Event{Name: filepath.Join(w.schemas, "pool.json"), Op: fsnotify.Create}, true},
		{"schema remove", fsnotify.Event{Name: filepath.Join(w.schemas, "pool.json"), Op: fsnotify.Remove}, true},
		{"hidden temp file", fsnotify.Event{Name: filepath.Join(w.schemas, ".pool.json.tmp-1"), Op: fsnotify.Create}, false},
		{"output file", fsnotify.Event{Name: out, Op: fsnotify.Write}, false},
		{"sibling of input", fsnotify.Event{Name: filepath.Join(w.root, "notes.txt"), Op: fsnotify.Write}, false},
		{"unwatched dir", fsnotify.Event{Name: filepath.Join(w.templates, "irule.tmpl"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.relevant(tt.event))
		})
	}
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, "input.yaml", localPath(" input.yaml "))
	for _, ref := range []string{"", "http://x/y.yaml", "https://x/y.yaml", "cm://ns/name", "oci://ghcr.io/a/b:v1"} {
		assert.Empty(t, localPath(ref), ref)
	}
}
