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
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/irule-builder/pkg/defaults"
	apperrors "github.com/NVIDIA/irule-builder/pkg/errors"
	"github.com/NVIDIA/irule-builder/pkg/oci"
	"github.com/NVIDIA/irule-builder/pkg/serializer"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Input and Output are passed to Build on every run.
	Input  string
	Output string

	// Dirs are watched in addition to the input file, typically the
	// schema and template directories.
	Dirs []string

	// Debounce is the quiet period after the last change before a rebuild.
	Debounce time.Duration

	// MinInterval is the minimum time between two rebuilds.
	MinInterval time.Duration

	// OnBuild, when set, receives the outcome of every run.
	OnBuild func(*BuildResult, error)
}

// invalidator is implemented by stores that cache definitions.
type invalidator interface {
	Invalidate()
}

// Watch builds once, then rebuilds whenever the input file or a file in
// opts.Dirs changes, until ctx is done. Build failures are reported to
// OnBuild and logged; they do not stop the watch.
func (b *Builder) Watch(ctx context.Context, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = defaults.WatchDebounceInterval
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = defaults.WatchMinRebuildInterval
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeUnknown, "failed to create file watcher", err)
	}
	defer func() {
		if cerr := watcher.Close(); cerr != nil {
			slog.Warn("failed to close file watcher", "error", cerr)
		}
	}()

	filter, err := newWatchFilter(opts)
	if err != nil {
		return err
	}
	for _, dir := range filter.watchedDirs() {
		if err := watcher.Add(dir); err != nil {
			return apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest,
				"failed to watch directory", err, map[string]any{"path": dir})
		}
		slog.Debug("watching directory", "path", dir)
	}

	limiter := rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	rebuild := func(reason string) {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		if inv, ok := b.store.(invalidator); ok {
			inv.Invalidate()
		}
		res, err := b.Build(ctx, opts.Input, opts.Output)
		if err != nil {
			slog.Error("rebuild failed", "reason", reason, "code", apperrors.CodeOf(err), "error", err)
		} else {
			slog.Info("rebuilt", "reason", reason, "destination", res.Destination, "bytes", res.Bytes)
		}
		if opts.OnBuild != nil {
			opts.OnBuild(res, err)
		}
	}

	slog.Info("watch started",
		"input", opts.Input,
		"dirs", len(filter.dirs),
		"debounce_ms", opts.Debounce.Milliseconds())
	rebuild("initial")

	timer := time.NewTimer(opts.Debounce)
	timer.Stop()
	defer timer.Stop()
	var pending string

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return apperrors.New(apperrors.ErrCodeUnknown, "file watcher closed")
			}
			if !filter.relevant(event) {
				continue
			}
			slog.Debug("file change detected", "path", event.Name, "op", event.Op.String())
			pending = event.Name
			timer.Reset(opts.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return apperrors.New(apperrors.ErrCodeUnknown, "file watcher closed")
			}
			slog.Error("file watcher error", "error", err)

		case <-timer.C:
			watchRebuilds.Inc()
			rebuild(pending)
		}
	}
}

// watchFilter decides which file events trigger a rebuild.
type watchFilter struct {
	input  string
	output string
	dirs   map[string]struct{}
}

func newWatchFilter(opts WatchOptions) (*watchFilter, error) {
	f := &watchFilter{dirs: make(map[string]struct{})}

	for _, dir := range opts.Dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest,
				"failed to resolve watch directory", err, map[string]any{"path": dir})
		}
		f.dirs[abs] = struct{}{}
	}

	if path := localPath(opts.Input); path != "" {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil, apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest,
					"failed to resolve input path", err, map[string]any{"path": path})
			}
			f.input = abs
		}
	}
	if path := localPath(opts.Output); path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			f.output = abs
		}
	}

	if f.input == "" && len(f.dirs) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "nothing to watch: input is not a local file and no directories given")
	}
	return f, nil
}

// watchedDirs lists the directories to register, including the input's
// parent. Editors often replace files by rename, which a watch on the file
// itself would miss.
func (f *watchFilter) watchedDirs() []string {
	seen := make(map[string]struct{}, len(f.dirs)+1)
	var out []string
	add := func(dir string) {
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			out = append(out, dir)
		}
	}
	if f.input != "" {
		add(filepath.Dir(f.input))
	}
	for dir := range f.dirs {
		add(dir)
	}
	return out
}

func (f *watchFilter) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if strings.HasPrefix(filepath.Base(name), ".") || name == f.output {
		return false
	}
	if name == f.input {
		return true
	}
	_, ok := f.dirs[filepath.Dir(name)]
	return ok
}

// localPath returns ref when it refers to the local filesystem.
func localPath(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "",
		strings.HasPrefix(ref, serializer.HTTPScheme),
		strings.HasPrefix(ref, serializer.HTTPSScheme),
		strings.HasPrefix(ref, serializer.ConfigMapURIScheme),
		oci.IsReference(ref):
		return ""
	}
	return ref
}
